package usecase

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/metrics"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkguid"
)

const (
	MaxMultiCityLegs = 6
	// maxStitchCombinations bounds the cartesian product of leg candidates.
	maxStitchCombinations = 100000
)

type MultiCityInput struct {
	Legs                []Leg
	Passengers          entity.Passengers
	CabinClass          entity.CabinClass
	MaxLayovers         *int
	SelfTransferAllowed *bool
	Filters             Filters
	Sort                SortOption
	// FlightWay is the trip type persisted with the result, MULTIWAY when empty.
	FlightWay entity.TripType
}

// MultiCitySearch searches every leg concurrently with the single-route
// pipeline and stitches one itinerary per leg into journeys whose legs do not
// overlap in time. Nothing is persisted per leg; the stitched result is saved
// once.
func (u *Usecase) MultiCitySearch(ctx context.Context, in MultiCityInput) (*SearchOutput, error) {
	in = normalizeMultiCityInput(in)
	if err := validateMultiCity(in); err != nil {
		return nil, err
	}

	start := time.Now()
	kind := strings.ToLower(string(in.FlightWay))
	cacheKey := multiCityCacheKey(in)
	if out, ok := u.cached(cacheKey, start); ok {
		metrics.RecordSearch(kind, true, len(out.Itineraries))
		return out, nil
	}

	rules, err := u.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	opts := legOptions{
		Passengers:          in.Passengers,
		CabinClass:          in.CabinClass,
		MaxLayovers:         in.MaxLayovers,
		SelfTransferAllowed: in.SelfTransferAllowed,
		Filters:             in.Filters,
		Sort:                in.Sort,
	}

	searchCtx, cancel := u.withSearchTimeout(ctx)
	outcomes := make([]legOutcome, len(in.Legs))
	var g errgroup.Group
	for i, leg := range in.Legs {
		g.Go(func() error {
			outcomes[i] = u.searchLeg(searchCtx, leg, opts, rules, SingleRouteCap)
			return nil
		})
	}
	_ = g.Wait()
	cancel()

	candidates := make([][]entity.Itinerary, len(outcomes))
	dirs := make([]AirlinesDetails, len(outcomes))
	meta := SearchMetadata{}
	for i, o := range outcomes {
		candidates[i] = o.itineraries
		dirs[i] = o.airlines
		meta.RoutesPlanned += o.routes
		meta.SupplierCalls += o.calls
		meta.FailedCalls = append(meta.FailedCalls, o.failed...)
	}

	its := stitchLegs(candidates, legCandidateLimit(len(candidates)))
	its = rank(its, Filters{}, in.Sort, u.ranking, MultiCityCap)

	handles, err := u.save(ctx, its, in.Passengers, in.FlightWay)
	if err != nil {
		return nil, err
	}

	meta.TotalResults = len(its)
	meta.SearchTimeMs = time.Since(start).Milliseconds()
	out := &SearchOutput{
		TripType:        in.FlightWay,
		Itineraries:     its,
		FlightData:      handles,
		AirlinesDetails: mergeAirlines(dirs...),
		Metadata:        meta,
	}

	u.publish(ctx, out, legsKey(in.Legs))
	u.store(cacheKey, out)
	metrics.RecordSearch(kind, false, len(its))
	return out, nil
}

// legCandidateLimit is the number of ranked candidates kept per leg so the
// product over all legs stays within maxStitchCombinations.
func legCandidateLimit(legs int) int {
	if legs <= 1 {
		return SingleRouteCap
	}
	n := int(math.Floor(math.Pow(maxStitchCombinations, 1/float64(legs))))
	return max(1, min(n, SingleRouteCap))
}

// stitchLegs builds every combination of one candidate per leg in which each
// leg departs no earlier than the previous one arrives. Candidates are taken
// in their ranked order.
func stitchLegs(legs [][]entity.Itinerary, perLeg int) []entity.Itinerary {
	if len(legs) == 0 {
		return nil
	}
	trimmed := make([][]entity.Itinerary, len(legs))
	for i, leg := range legs {
		if len(leg) == 0 {
			return nil
		}
		trimmed[i] = leg[:min(len(leg), perLeg)]
	}

	var out []entity.Itinerary
	path := make([]entity.Itinerary, 0, len(trimmed))
	var walk func(i int, currency string)
	walk = func(i int, currency string) {
		if i == len(trimmed) {
			out = append(out, newMultiCityItinerary(path))
			return
		}
		for _, cand := range trimmed[i] {
			if i > 0 && cand.DepartingAt.Before(path[i-1].ArrivingAt) {
				continue
			}
			next, ok := joinCurrency(currency, itineraryCurrency(cand))
			if !ok {
				continue
			}
			path = append(path, cand)
			walk(i+1, next)
			path = path[:i]
		}
	}
	walk(0, "")
	return out
}

func itineraryCurrency(it entity.Itinerary) string {
	if it.Unpriced {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(it.Currency))
}

func newMultiCityItinerary(legs []entity.Itinerary) entity.Itinerary {
	it := entity.Itinerary{
		Legs:             slices.Clone(legs),
		BaseAmount:       decimal.Zero,
		TaxAmount:        decimal.Zero,
		CommissionAmount: decimal.Zero,
		TotalAmount:      decimal.Zero,
	}
	unpriced := false
	for _, leg := range legs {
		it.Offers = append(it.Offers, leg.Offers...)
		it.Duration += leg.Duration
		it.Stops += leg.Stops
		if leg.Unpriced {
			unpriced = true
			continue
		}
		it.BaseAmount = it.BaseAmount.Add(leg.BaseAmount)
		it.TaxAmount = it.TaxAmount.Add(leg.TaxAmount)
		it.CommissionAmount = it.CommissionAmount.Add(leg.CommissionAmount)
		it.TotalAmount = it.TotalAmount.Add(leg.TotalAmount)
		if it.Currency == "" {
			it.Currency = leg.Currency
		}
	}
	if len(legs) > 0 {
		it.DepartingAt = legs[0].DepartingAt
		it.ArrivingAt = legs[len(legs)-1].ArrivingAt
	}
	if unpriced {
		markUnpriced(&it)
	}
	it.ID = pkguid.Stable(it.Key())
	return it
}

func normalizeMultiCityInput(in MultiCityInput) MultiCityInput {
	legs := make([]Leg, len(in.Legs))
	for i, l := range in.Legs {
		l.Origin = strings.ToUpper(strings.TrimSpace(l.Origin))
		l.Destination = strings.ToUpper(strings.TrimSpace(l.Destination))
		legs[i] = l
	}
	in.Legs = legs
	if in.CabinClass == "" {
		in.CabinClass = entity.CabinEconomy
	}
	if in.Sort == "" {
		in.Sort = SortBest
	}
	if in.FlightWay == "" {
		in.FlightWay = entity.TripMultiWay
	}
	return in
}

func validateMultiCity(in MultiCityInput) error {
	if len(in.Legs) < 2 {
		return pkgerror.NewBusiness("a multi-city search needs at least two legs", pkgerror.CodeInvalidInput)
	}
	if len(in.Legs) > MaxMultiCityLegs {
		return pkgerror.NewBusiness("too many legs", pkgerror.CodeInvalidInput)
	}
	for i, l := range in.Legs {
		if l.Origin == "" || l.Destination == "" || l.Origin == l.Destination {
			return pkgerror.NewBusiness("every leg needs distinct origin and destination", pkgerror.CodeInvalidInput)
		}
		if l.DepartureDate.IsZero() {
			return pkgerror.NewBusiness("every leg needs a departure date", pkgerror.CodeInvalidInput)
		}
		if i > 0 && l.DepartureDate.Before(in.Legs[i-1].DepartureDate) {
			return pkgerror.NewBusiness("legs must be in chronological order", pkgerror.CodeInvalidInput)
		}
	}
	return validatePassengers(in.Passengers)
}

func legsKey(legs []Leg) string {
	parts := make([]string, 0, len(legs))
	for _, l := range legs {
		parts = append(parts, l.Origin+"-"+l.Destination)
	}
	return strings.Join(parts, ",")
}
