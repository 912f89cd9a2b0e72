package supplier

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

type stubResult struct{ key TaskKey }

func (s stubResult) Key() TaskKey                { return s.key }
func (s stubResult) Supplier() entity.SupplierID { return s.key.Supplier }

type flakyClient struct {
	failures int32
	err      error
	calls    atomic.Int32
}

func (f *flakyClient) ID() entity.SupplierID { return entity.SupplierAmadeus }

func (f *flakyClient) SearchSegment(_ context.Context, q SegmentQuery) (RawResult, error) {
	if n := f.calls.Add(1); n <= f.failures {
		return nil, f.err
	}
	return stubResult{key: q.Key}, nil
}

func TestRetryingClient(t *testing.T) {
	t.Parallel()

	temporary := fmt.Errorf("%w: %w", ErrSupplierUnavailable, ErrTemporary)
	permanent := fmt.Errorf("%w: status 400", ErrSupplierUnavailable)

	tests := []struct {
		name      string
		failures  int32
		err       error
		wantErr   bool
		wantCalls int32
	}{
		{"succeeds_after_temporary_failures", 2, temporary, false, 3},
		{"gives_up_after_max_retries", 5, temporary, true, 3},
		{"permanent_failure_is_not_retried", 1, permanent, true, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			inner := &flakyClient{failures: tc.failures, err: tc.err}
			client := NewRetryingClient(inner, 2, time.Millisecond)

			res, err := client.SearchSegment(context.Background(), SegmentQuery{Key: TaskKey{HopIndex: 1}})
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrSupplierUnavailable)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, res.Key().HopIndex)
			}
			assert.Equal(t, tc.wantCalls, inner.calls.Load())
			assert.Equal(t, entity.SupplierAmadeus, client.ID())
		})
	}
}

func TestRetryingClient_StopsOnCancel(t *testing.T) {
	t.Parallel()

	inner := &flakyClient{failures: 10, err: ErrTemporary}
	client := NewRetryingClient(inner, 5, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.SearchSegment(ctx, SegmentQuery{})
	require.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestRateLimiter_SpacesCalls(t *testing.T) {
	t.Parallel()

	limiter := newRateLimiter(20 * time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiter_HonoursContext(t *testing.T) {
	t.Parallel()

	limiter := newRateLimiter(time.Hour)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, limiter.Wait(ctx), context.Canceled)
}

func TestConfirmerFor(t *testing.T) {
	t.Parallel()

	kiu := NewKIUClient(KIUConfig{BaseURL: "http://kiu.invalid"})
	decorated := NewInstrumentedClient(NewRetryingClient(NewRateLimitedClient(kiu, 0), 1, 0))
	assert.NotNil(t, ConfirmerFor(decorated))
	assert.NotNil(t, ConfirmerFor(kiu))

	duffel := NewInstrumentedClient(NewDuffelClient(DuffelConfig{}))
	assert.Nil(t, ConfirmerFor(duffel))
}

func TestDecorators_ConfirmPriceWithoutConfirmer(t *testing.T) {
	t.Parallel()

	client := NewRateLimitedClient(&flakyClient{}, 0)
	pc, ok := client.(PriceConfirmer)
	require.True(t, ok)

	_, err := pc.ConfirmPrice(context.Background(), PriceQuery{})
	assert.True(t, errors.Is(err, ErrUnpricedOffer))
}

func TestNormalize_UnknownResult(t *testing.T) {
	t.Parallel()

	_, err := Normalize(context.Background(), stubResult{}, NormalizeInput{})
	assert.Error(t, err)
}
