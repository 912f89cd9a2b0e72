package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/supplier"
)

var (
	day1 = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	day3 = time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC)

	carrierNames = map[string]string{
		"BA": "British Airways",
		"AA": "American Airlines",
		"EI": "Aer Lingus",
		"FI": "Icelandair",
	}
)

func intPtr(v int) *int { return &v }
func boolPtr(v bool) *bool { return &v }
func floatPtr(v float64) *float64 { return &v }
func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func makeOffer(id, carrier, origin, destination string, depart time.Time, dur time.Duration, base, tax string) entity.Offer {
	c := entity.Carrier{IATACode: carrier, Name: carrierNames[carrier]}
	seg := entity.Segment{
		ID:               id + "-s0",
		Origin:           entity.NewLocation(origin),
		Destination:      entity.NewLocation(destination),
		DepartingAt:      depart,
		ArrivingAt:       depart.Add(dur),
		MarketingCarrier: c,
		OperatingCarrier: c,
		FlightNumber:     "100",
		CabinClass:       entity.CabinEconomy,
		FareClassCode:    "Y",
		CheckedBaggage:   1,
		CabinBaggage:     1,
	}
	b, t := decimal.RequireFromString(base), decimal.RequireFromString(tax)
	return entity.Offer{
		ID:    id,
		Owner: c,
		Slices: []entity.Slice{{
			Origin:      seg.Origin,
			Destination: seg.Destination,
			Duration:    dur,
			Segments:    []entity.Segment{seg},
		}},
		BaseAmount:       b,
		TaxAmount:        t,
		CommissionAmount: decimal.Zero,
		TotalAmount:      b.Add(t),
		Currency:         "USD",
	}
}

func unpricedOf(o entity.Offer) entity.Offer {
	o.Unpriced = true
	o.BaseAmount = entity.SentinelTotal
	o.TaxAmount = decimal.Zero
	o.TotalAmount = entity.SentinelTotal
	return o
}

type fakeRaw struct {
	key    supplier.TaskKey
	offers []entity.Offer
}

func (r *fakeRaw) Key() supplier.TaskKey { return r.key }
func (r *fakeRaw) Supplier() entity.SupplierID { return r.key.Supplier }

// fakeNormalize prefixes offer ids with the task key the way the real
// normalizers do.
func fakeNormalize(_ context.Context, raw supplier.RawResult, _ supplier.NormalizeInput) ([]entity.Offer, error) {
	r, ok := raw.(*fakeRaw)
	if !ok {
		return nil, fmt.Errorf("unexpected raw result %T", raw)
	}
	out := make([]entity.Offer, 0, len(r.offers))
	for _, o := range r.offers {
		o.ID = r.key.String() + ":" + o.ID
		o.SourceID = r.key.Supplier
		o.RouteID = r.key.RouteID()
		out = append(out, o)
	}
	return out, nil
}

type fakeClient struct {
	id      entity.SupplierID
	respond func(q supplier.SegmentQuery) ([]entity.Offer, error)

	mu      sync.Mutex
	queries []supplier.SegmentQuery
}

func (c *fakeClient) ID() entity.SupplierID { return c.id }

func (c *fakeClient) SearchSegment(_ context.Context, q supplier.SegmentQuery) (supplier.RawResult, error) {
	c.mu.Lock()
	c.queries = append(c.queries, q)
	c.mu.Unlock()

	offers, err := c.respond(q)
	if err != nil {
		return nil, err
	}
	return &fakeRaw{key: q.Key, offers: offers}, nil
}

func (c *fakeClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

// hopSchedule answers every hop with one offer departing hop*6h after the
// requested date and flying 3h, so consecutive hops leave a 3h layover.
func hopSchedule(carrier, base, tax string) func(q supplier.SegmentQuery) ([]entity.Offer, error) {
	return func(q supplier.SegmentQuery) ([]entity.Offer, error) {
		depart := q.DepartureDate.Add(time.Duration(q.Key.HopIndex) * 6 * time.Hour)
		return []entity.Offer{
			makeOffer("o1", carrier, q.Origin, q.Destination, depart, 3*time.Hour, base, tax),
		}, nil
	}
}

func failing(err error) func(q supplier.SegmentQuery) ([]entity.Offer, error) {
	return func(supplier.SegmentQuery) ([]entity.Offer, error) { return nil, err }
}

type fakeRules struct {
	firewall    []entity.FirewallRule
	commissions []entity.CommissionRule
	connections []entity.Connection
	err         error
}

func (r *fakeRules) ListFirewallRules(context.Context) ([]entity.FirewallRule, error) {
	return r.firewall, r.err
}

func (r *fakeRules) ListCommissionRules(context.Context) ([]entity.CommissionRule, error) {
	return r.commissions, r.err
}

func (r *fakeRules) ListConnections(context.Context) ([]entity.Connection, error) {
	return r.connections, r.err
}

type savedCall struct {
	itineraries []entity.Itinerary
	pax         entity.Passengers
	trip        entity.TripType
}

type fakeOffers struct {
	mu    sync.Mutex
	saves []savedCall
	err   error
}

func (s *fakeOffers) Save(_ context.Context, its []entity.Itinerary, pax entity.Passengers, trip entity.TripType) ([]entity.SavedHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.saves = append(s.saves, savedCall{itineraries: its, pax: pax, trip: trip})
	handles := make([]entity.SavedHandle, 0, len(its))
	for i, it := range its {
		handles = append(handles, entity.SavedHandle{
			ID:          fmt.Sprintf("handle-%d", i),
			ItineraryID: it.ID,
			TotalAmount: it.TotalAmount,
			Currency:    it.Currency,
		})
	}
	return handles, nil
}

type published struct {
	key   string
	value []byte
}

type fakeEvents struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (e *fakeEvents) Publish(_ context.Context, key string, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.messages = append(e.messages, published{key: key, value: value})
	return nil
}

var errBoom = errors.New("boom")

func newTestUsecase(rules *fakeRules, offers *fakeOffers, clients ...supplier.Client) *Usecase {
	return New(Dependency{
		Suppliers: clients,
		Rules:     rules,
		Offers:    offers,
		Normalize: fakeNormalize,
	})
}

func oneWay(origin, destination string) SearchInput {
	return SearchInput{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: day1,
		Passengers:    entity.Passengers{Adults: 1},
	}
}

func itineraryIDs(its []entity.Itinerary) []string {
	out := make([]string, 0, len(its))
	for _, it := range its {
		out = append(out, it.ID)
	}
	return out
}
