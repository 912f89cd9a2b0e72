package supplier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

// rateLimiter spaces calls at least interval apart.
type rateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

// Wait reserves the next free slot and sleeps until it comes up.
func (r *rateLimiter) Wait(ctx context.Context) error {
	if r.interval <= 0 {
		return nil
	}
	r.mu.Lock()
	now := time.Now()
	slot := r.next
	if slot.Before(now) {
		slot = now
	}
	r.next = slot.Add(r.interval)
	r.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type rateLimitedClient struct {
	client  Client
	limiter *rateLimiter
}

// NewRateLimitedClient spaces calls to c, price confirmations included, by interval.
func NewRateLimitedClient(c Client, interval time.Duration) Client {
	return &rateLimitedClient{
		client:  c,
		limiter: newRateLimiter(interval),
	}
}

func (r *rateLimitedClient) ID() entity.SupplierID {
	return r.client.ID()
}

func (r *rateLimitedClient) unwrap() Client {
	return r.client
}

func (r *rateLimitedClient) SearchSegment(ctx context.Context, q SegmentQuery) (RawResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSupplierUnavailable, err)
	}
	return r.client.SearchSegment(ctx, q)
}

func (r *rateLimitedClient) ConfirmPrice(ctx context.Context, q PriceQuery) (PriceQuote, error) {
	pc, ok := r.client.(PriceConfirmer)
	if !ok {
		return PriceQuote{}, errNoConfirmation(r.client.ID())
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return PriceQuote{}, fmt.Errorf("%w: %w", ErrUnpricedOffer, err)
	}
	return pc.ConfirmPrice(ctx, q)
}

func errNoConfirmation(id entity.SupplierID) error {
	return fmt.Errorf("%w: %s does not confirm prices", ErrUnpricedOffer, id)
}

// ConfirmerFor returns c as a PriceConfirmer, decorators included, or nil
// when the supplier behind c cannot confirm prices.
func ConfirmerFor(c Client) PriceConfirmer {
	inner := c
	for {
		d, ok := inner.(interface{ unwrap() Client })
		if !ok {
			break
		}
		inner = d.unwrap()
	}
	if _, ok := inner.(PriceConfirmer); !ok {
		return nil
	}
	pc, _ := c.(PriceConfirmer)
	return pc
}
