package supplier

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

const defaultRetryBackoff = 80 * time.Millisecond

type retryingClient struct {
	client     Client
	maxRetries int
	backoff    time.Duration
}

// NewRetryingClient retries calls to c that fail with ErrTemporary, doubling a
// jittered backoff between attempts.
func NewRetryingClient(c Client, maxRetries int, backoff time.Duration) Client {
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	return &retryingClient{
		client:     c,
		maxRetries: max(maxRetries, 0),
		backoff:    backoff,
	}
}

func (r *retryingClient) ID() entity.SupplierID {
	return r.client.ID()
}

func (r *retryingClient) unwrap() Client {
	return r.client
}

func (r *retryingClient) SearchSegment(ctx context.Context, q SegmentQuery) (RawResult, error) {
	var res RawResult
	err := r.do(ctx, func(ctx context.Context) error {
		var err error
		res, err = r.client.SearchSegment(ctx, q)
		return err
	})
	return res, err
}

func (r *retryingClient) ConfirmPrice(ctx context.Context, q PriceQuery) (PriceQuote, error) {
	pc, ok := r.client.(PriceConfirmer)
	if !ok {
		return PriceQuote{}, errNoConfirmation(r.client.ID())
	}
	var quote PriceQuote
	err := r.do(ctx, func(ctx context.Context) error {
		var err error
		quote, err = pc.ConfirmPrice(ctx, q)
		return err
	})
	return quote, err
}

func (r *retryingClient) do(ctx context.Context, call func(context.Context) error) error {
	backoff := r.backoff
	for attempt := 0; ; attempt++ {
		err := call(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrTemporary) || attempt == r.maxRetries {
			return err
		}
		wait := backoff + jitter(backoff/2)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
			backoff *= 2
		}
	}
}
