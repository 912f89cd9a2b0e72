package supplier

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/metrics"
)

type instrumentedClient struct {
	client Client
}

// NewInstrumentedClient records count, outcome and latency of every call to c.
func NewInstrumentedClient(c Client) Client {
	return &instrumentedClient{client: c}
}

func (i *instrumentedClient) ID() entity.SupplierID {
	return i.client.ID()
}

func (i *instrumentedClient) unwrap() Client {
	return i.client
}

func (i *instrumentedClient) SearchSegment(ctx context.Context, q SegmentQuery) (RawResult, error) {
	start := time.Now()
	res, err := i.client.SearchSegment(ctx, q)
	metrics.RecordSupplierCall(string(i.client.ID()), "search", outcome(err), time.Since(start))
	return res, err
}

func (i *instrumentedClient) ConfirmPrice(ctx context.Context, q PriceQuery) (PriceQuote, error) {
	pc, ok := i.client.(PriceConfirmer)
	if !ok {
		return PriceQuote{}, errNoConfirmation(i.client.ID())
	}
	start := time.Now()
	quote, err := pc.ConfirmPrice(ctx, q)
	metrics.RecordSupplierCall(string(i.client.ID()), "confirm_price", outcome(err), time.Since(start))
	return quote, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
