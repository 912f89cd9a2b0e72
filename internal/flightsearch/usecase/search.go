package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/metrics"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/routing"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgerror"
)

type SearchInput struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
	// ReturnDate turns the search into a round trip.
	ReturnDate          *time.Time
	Passengers          entity.Passengers
	CabinClass          entity.CabinClass
	MaxLayovers         *int
	SelfTransferAllowed *bool
	Filters             Filters
	Sort                SortOption
}

type SearchOutput struct {
	TripType        entity.TripType
	Itineraries     []entity.Itinerary
	FlightData      []entity.SavedHandle
	AirlinesDetails AirlinesDetails
	Metadata        SearchMetadata
}

type SearchMetadata struct {
	TotalResults  int
	RoutesPlanned int
	SupplierCalls int
	FailedCalls   []FailedCall
	SearchTimeMs  int64
	CacheHit      bool
}

// Search runs the single-route pipeline and persists its result. Suppliers
// that fail only show up in Metadata.FailedCalls; a search without any
// candidate route or offer returns an empty result.
func (u *Usecase) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	in = normalizeSearchInput(in)
	if err := validateSearch(in); err != nil {
		return nil, err
	}
	if in.ReturnDate != nil {
		return u.MultiCitySearch(ctx, roundTripInput(in))
	}

	start := time.Now()
	cacheKey := searchCacheKey(in)
	if out, ok := u.cached(cacheKey, start); ok {
		metrics.RecordSearch("single", true, len(out.Itineraries))
		return out, nil
	}

	rules, err := u.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := u.withSearchTimeout(ctx)
	leg := u.searchLeg(searchCtx, Leg{
		Origin:        in.Origin,
		Destination:   in.Destination,
		DepartureDate: in.DepartureDate,
	}, legOptions{
		Passengers:          in.Passengers,
		CabinClass:          in.CabinClass,
		MaxLayovers:         in.MaxLayovers,
		SelfTransferAllowed: in.SelfTransferAllowed,
		Filters:             in.Filters,
		Sort:                in.Sort,
	}, rules, SingleRouteCap)
	cancel()

	handles, err := u.save(ctx, leg.itineraries, in.Passengers, entity.TripOneWay)
	if err != nil {
		return nil, err
	}

	out := &SearchOutput{
		TripType:        entity.TripOneWay,
		Itineraries:     leg.itineraries,
		FlightData:      handles,
		AirlinesDetails: leg.airlines,
		Metadata: SearchMetadata{
			TotalResults:  len(leg.itineraries),
			RoutesPlanned: leg.routes,
			SupplierCalls: leg.calls,
			FailedCalls:   leg.failed,
			SearchTimeMs:  time.Since(start).Milliseconds(),
		},
	}

	u.publish(ctx, out, in.Origin+"-"+in.Destination)
	u.store(cacheKey, out)
	metrics.RecordSearch("single", false, len(out.Itineraries))
	return out, nil
}

type Leg struct {
	Origin        string
	Destination   string
	DepartureDate time.Time
}

type legOptions struct {
	Passengers          entity.Passengers
	CabinClass          entity.CabinClass
	MaxLayovers         *int
	SelfTransferAllowed *bool
	Filters             Filters
	Sort                SortOption
}

type legOutcome struct {
	itineraries []entity.Itinerary
	airlines    AirlinesDetails
	routes      int
	calls       int
	failed      []FailedCall
}

// searchLeg is the pipeline of one origin/destination pair without
// persistence: plan, fan out, combine, post-process, rank.
func (u *Usecase) searchLeg(ctx context.Context, leg Leg, opts legOptions, rules *ruleSet, limit int) legOutcome {
	maxLayovers := -1
	if opts.MaxLayovers != nil {
		maxLayovers = *opts.MaxLayovers
	}

	plan := u.planner.Plan(routing.PlanInput{
		Origin:              leg.Origin,
		Destination:         leg.Destination,
		MaxLayovers:         maxLayovers,
		SelfTransferAllowed: opts.SelfTransferAllowed,
		Firewall:            rules.firewall,
		Connections:         rules.connections,
	})
	if plan.Empty() {
		slog.InfoContext(ctx, "empty search", "origin", leg.Origin, "destination", leg.Destination, "error", routing.ErrNoRouteFound)
		return legOutcome{airlines: airlineDirectory(nil)}
	}

	qp := routing.BuildQueryPlan(plan.Routes, u.supplierIDs, rules.firewall)
	fo := u.fanOut(ctx, plan.Routes, qp, legRequest{
		DepartureDate: leg.DepartureDate,
		Passengers:    opts.Passengers,
		CabinClass:    opts.CabinClass,
	}, rules)

	var its []entity.Itinerary
	for _, route := range plan.Routes {
		its = append(its, combine(route, hopOffers(route, qp, fo.offers), plan.SearchManagement)...)
	}
	its = postProcess(its, rules)
	airlines := airlineDirectory(its)

	return legOutcome{
		itineraries: rank(its, opts.Filters, opts.Sort, u.ranking, limit),
		airlines:    airlines,
		routes:      len(plan.Routes),
		calls:       fo.calls,
		failed:      fo.failed,
	}
}

func (u *Usecase) withSearchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.searchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.searchTimeout)
}

func (u *Usecase) save(ctx context.Context, its []entity.Itinerary, pax entity.Passengers, trip entity.TripType) ([]entity.SavedHandle, error) {
	if len(its) == 0 || u.offers == nil {
		return []entity.SavedHandle{}, nil
	}
	handles, err := u.offers.Save(ctx, its, pax, trip)
	if err != nil {
		return nil, pkgerror.NewServer("failed to save search results", pkgerror.CodeInternal, fmt.Errorf("save itineraries: %w", err))
	}
	return handles, nil
}

func (u *Usecase) cached(key string, start time.Time) (*SearchOutput, bool) {
	if u.cache == nil {
		return nil, false
	}
	out, ok := u.cache.Get(key)
	if !ok {
		return nil, false
	}
	out.Metadata.CacheHit = true
	out.Metadata.SearchTimeMs = time.Since(start).Milliseconds()
	return out, true
}

// store caches out. Results missing the answer of a failed supplier call are
// not cached, so the next identical search asks the supplier again.
func (u *Usecase) store(key string, out *SearchOutput) {
	if u.cache == nil || len(out.Metadata.FailedCalls) > 0 {
		return
	}
	u.cache.Set(key, out, u.cacheTTL)
}

func normalizeSearchInput(in SearchInput) SearchInput {
	in.Origin = strings.ToUpper(strings.TrimSpace(in.Origin))
	in.Destination = strings.ToUpper(strings.TrimSpace(in.Destination))
	if in.CabinClass == "" {
		in.CabinClass = entity.CabinEconomy
	}
	if in.Sort == "" {
		in.Sort = SortBest
	}
	return in
}

func validateSearch(in SearchInput) error {
	if in.Origin == "" || in.Destination == "" {
		return pkgerror.NewBusiness("origin and destination are required", pkgerror.CodeInvalidInput)
	}
	if in.Origin == in.Destination {
		return pkgerror.NewBusiness("origin and destination must differ", pkgerror.CodeInvalidInput)
	}
	if in.DepartureDate.IsZero() {
		return pkgerror.NewBusiness("departure date is required", pkgerror.CodeInvalidInput)
	}
	if in.ReturnDate != nil && in.ReturnDate.Before(in.DepartureDate) {
		return pkgerror.NewBusiness("return date must not be before departure date", pkgerror.CodeInvalidInput)
	}
	return validatePassengers(in.Passengers)
}

func validatePassengers(p entity.Passengers) error {
	if p.Adults < 1 {
		return pkgerror.NewBusiness("at least one adult is required", pkgerror.CodeInvalidInput)
	}
	if p.Children < 0 || p.Infants < 0 {
		return pkgerror.NewBusiness("passenger counts must not be negative", pkgerror.CodeInvalidInput)
	}
	if p.Adults > MaxPassengers || p.Children > MaxPassengers || p.Infants > MaxPassengers || p.Total() > MaxPassengers {
		return pkgerror.NewBusiness(fmt.Sprintf("a party is limited to %d passengers", MaxPassengers), pkgerror.CodeInvalidInput)
	}
	if p.Infants > p.Adults {
		return pkgerror.NewBusiness("every infant must travel with an adult", pkgerror.CodeInvalidInput)
	}
	return nil
}

func roundTripInput(in SearchInput) MultiCityInput {
	return MultiCityInput{
		Legs: []Leg{
			{Origin: in.Origin, Destination: in.Destination, DepartureDate: in.DepartureDate},
			{Origin: in.Destination, Destination: in.Origin, DepartureDate: *in.ReturnDate},
		},
		Passengers:          in.Passengers,
		CabinClass:          in.CabinClass,
		MaxLayovers:         in.MaxLayovers,
		SelfTransferAllowed: in.SelfTransferAllowed,
		Filters:             in.Filters,
		Sort:                in.Sort,
		FlightWay:           entity.TripRoundTrip,
	}
}
