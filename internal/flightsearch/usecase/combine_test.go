package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

func twoHopRoute() entity.CandidateRoute {
	return entity.CandidateRoute{
		Index: 1,
		Segments: []entity.RouteSegment{
			{Origin: entity.NewLocation("JFK"), Destination: entity.NewLocation("DUB")},
			{Origin: entity.NewLocation("DUB"), Destination: entity.NewLocation("LHR")},
		},
	}
}

func TestCombine_ConnectionWindow(t *testing.T) {
	t.Parallel()

	window := entity.SearchManagement{MinConnectionTime: 2 * time.Hour, MaxConnectionTime: 12 * time.Hour}
	first := makeOffer("a", "EI", "JFK", "DUB", day1.Add(3*time.Hour), 7*time.Hour, "300", "40")
	arrive := first.ArrivingAt()

	tests := []struct {
		name   string
		depart time.Time
		want   bool
	}{
		{name: "too_short", depart: arrive.Add(30 * time.Minute)},
		{name: "minimum_is_inclusive", depart: arrive.Add(2 * time.Hour), want: true},
		{name: "within", depart: arrive.Add(5 * time.Hour), want: true},
		{name: "maximum_is_inclusive", depart: arrive.Add(12 * time.Hour), want: true},
		{name: "too_long", depart: arrive.Add(13*time.Hour + 30*time.Minute)},
		{name: "departs_before_arrival", depart: arrive.Add(-time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			second := makeOffer("b", "EI", "DUB", "LHR", tt.depart, time.Hour, "80", "20")
			got := combine(twoHopRoute(), [][]entity.Offer{{first}, {second}}, window)
			if !tt.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			it := got[0]
			assert.Equal(t, 1, it.RouteIndex)
			assert.Equal(t, 1, it.Stops)
			assert.Equal(t, first.DepartingAt(), it.DepartingAt)
			assert.Equal(t, second.ArrivingAt(), it.ArrivingAt)
			assert.Equal(t, it.ArrivingAt.Sub(it.DepartingAt), it.Duration)
			assert.Equal(t, "440.00", it.TotalAmount.StringFixed(2))
		})
	}
}

func TestCombine_EveryCompatibleCombination(t *testing.T) {
	t.Parallel()

	window := entity.SearchManagement{MinConnectionTime: time.Hour, MaxConnectionTime: 10 * time.Hour}
	hop0 := []entity.Offer{
		makeOffer("a1", "EI", "JFK", "DUB", day1, 6*time.Hour, "100", "0"),
		makeOffer("a2", "EI", "JFK", "DUB", day1.Add(2*time.Hour), 6*time.Hour, "120", "0"),
	}
	hop1 := []entity.Offer{
		makeOffer("b1", "BA", "DUB", "LHR", day1.Add(9*time.Hour), time.Hour, "50", "0"),
		makeOffer("b2", "BA", "DUB", "LHR", day1.Add(16*time.Hour), time.Hour, "60", "0"),
	}

	got := combine(twoHopRoute(), [][]entity.Offer{hop0, hop1}, window)

	// a1 lands at 06:00, a2 at 08:00; b2 leaves 10h after a1 and 8h after a2.
	keys := make([]string, 0, len(got))
	for _, it := range got {
		keys = append(keys, it.Key())
	}
	assert.Equal(t, []string{"a1|b1", "a1|b2", "a2|b1", "a2|b2"}, keys)
}

func TestCombine_EmptyHopYieldsNothing(t *testing.T) {
	t.Parallel()

	hop0 := []entity.Offer{makeOffer("a1", "EI", "JFK", "DUB", day1, 6*time.Hour, "100", "0")}
	assert.Empty(t, combine(twoHopRoute(), [][]entity.Offer{hop0, nil}, routingWindow()))
	assert.Empty(t, combine(twoHopRoute(), nil, routingWindow()))
}

func TestCombine_SingleHopIgnoresWindow(t *testing.T) {
	t.Parallel()

	route := entity.CandidateRoute{Segments: []entity.RouteSegment{
		{Origin: entity.NewLocation("JFK"), Destination: entity.NewLocation("LHR")},
	}}
	offers := []entity.Offer{
		makeOffer("a", "BA", "JFK", "LHR", day1, 7*time.Hour, "400", "100"),
		makeOffer("b", "AA", "JFK", "LHR", day1.Add(time.Hour), 7*time.Hour, "500", "100"),
	}
	got := combine(route, [][]entity.Offer{offers}, entity.SearchManagement{})
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Stops)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestNewItinerary_UnpricedOfferMakesItineraryUnpriced(t *testing.T) {
	t.Parallel()

	priced := makeOffer("a", "EI", "JFK", "DUB", day1, 6*time.Hour, "100", "20")
	unpriced := unpricedOf(makeOffer("b", "BA", "DUB", "LHR", day1.Add(9*time.Hour), time.Hour, "0", "0"))

	it := newItinerary(0, []entity.Offer{priced, unpriced})
	assert.True(t, it.Unpriced)
	assert.True(t, it.TotalAmount.Equal(entity.SentinelTotal))
	assert.True(t, it.TaxAmount.IsZero())
	assert.Equal(t, "a|b", it.Key())
}

func routingWindow() entity.SearchManagement {
	return entity.SearchManagement{MinConnectionTime: 2 * time.Hour, MaxConnectionTime: 12 * time.Hour}
}
