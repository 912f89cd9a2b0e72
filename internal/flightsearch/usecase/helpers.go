package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

const dateLayout = "2006-01-02"

func searchCacheKey(in SearchInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "single|%s|%s|%s", in.Origin, in.Destination, in.DepartureDate.Format(dateLayout))
	writeOptions(&b, in.Passengers, in.CabinClass, in.MaxLayovers, in.SelfTransferAllowed, in.Filters, in.Sort)
	return b.String()
}

func multiCityCacheKey(in MultiCityInput) string {
	var b strings.Builder
	b.WriteString(string(in.FlightWay))
	for _, l := range in.Legs {
		fmt.Fprintf(&b, "|%s-%s@%s", l.Origin, l.Destination, l.DepartureDate.Format(dateLayout))
	}
	writeOptions(&b, in.Passengers, in.CabinClass, in.MaxLayovers, in.SelfTransferAllowed, in.Filters, in.Sort)
	return b.String()
}

func writeOptions(b *strings.Builder, pax entity.Passengers, cabin entity.CabinClass, maxLayovers *int, selfTransfer *bool, f Filters, sort SortOption) {
	fmt.Fprintf(b, "|%d,%d,%d|%s|%s|%s|%s", pax.Adults, pax.Children, pax.Infants, cabin, sort, intKey(maxLayovers), boolKey(selfTransfer))

	parts := []string{
		decimalKey(f.MinPrice), decimalKey(f.MaxPrice),
		intKey(f.MaxDuration), intKey(f.MinOnwardDuration), intKey(f.MaxOnwardDuration), intKey(f.MaxStops),
		floatKey(f.MinDepartureTime), floatKey(f.MaxDepartureTime),
		floatKey(f.MinArrivalTime), floatKey(f.MaxArrivalTime),
		intKey(f.CabinBaggage), intKey(f.CheckedBaggage),
	}
	airlines := make([]string, 0, len(f.PreferredAirlines))
	for code := range normalizeSet(f.PreferredAirlines) {
		airlines = append(airlines, code)
	}
	slices.Sort(airlines)
	parts = append(parts, strings.Join(airlines, "+"))

	b.WriteString("|")
	b.WriteString(strings.Join(parts, ","))
}

func intKey(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func boolKey(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}

func floatKey(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func decimalKey(v *decimal.Decimal) string {
	if v == nil {
		return "-"
	}
	return v.String()
}

// CloneSearchOutput copies out deeply enough that callers of a cached result
// can modify it freely.
func CloneSearchOutput(out *SearchOutput) *SearchOutput {
	if out == nil {
		return nil
	}
	c := *out
	c.Itineraries = cloneItineraries(out.Itineraries)
	c.FlightData = slices.Clone(out.FlightData)
	c.AirlinesDetails = AirlinesDetails{
		Airlines:     slices.Clone(out.AirlinesDetails.Airlines),
		ExtendedData: slices.Clone(out.AirlinesDetails.ExtendedData),
	}
	c.Metadata.FailedCalls = slices.Clone(out.Metadata.FailedCalls)
	return &c
}

func cloneItineraries(its []entity.Itinerary) []entity.Itinerary {
	if its == nil {
		return nil
	}
	out := make([]entity.Itinerary, len(its))
	for i, it := range its {
		it.Offers = cloneOffers(it.Offers)
		it.Legs = cloneItineraries(it.Legs)
		out[i] = it
	}
	return out
}

func cloneOffers(offers []entity.Offer) []entity.Offer {
	if offers == nil {
		return nil
	}
	out := make([]entity.Offer, len(offers))
	for i, o := range offers {
		o.Slices = slices.Clone(o.Slices)
		for j := range o.Slices {
			o.Slices[j].Segments = slices.Clone(o.Slices[j].Segments)
		}
		out[i] = o
	}
	return out
}

type searchEvent struct {
	TripType     entity.TripType `json:"trip_type"`
	Route        string          `json:"route"`
	Results      int             `json:"results"`
	HandleIDs    []string        `json:"handle_ids"`
	Cheapest     string          `json:"cheapest,omitempty"`
	Currency     string          `json:"currency,omitempty"`
	FailedCalls  int             `json:"failed_calls"`
	SearchTimeMs int64           `json:"search_time_ms"`
	CompletedAt  time.Time       `json:"completed_at"`
}

// publish announces a completed search. Delivery is best effort: the search
// result never depends on it.
func (u *Usecase) publish(ctx context.Context, out *SearchOutput, route string) {
	if u.events == nil {
		return
	}

	ev := searchEvent{
		TripType:     out.TripType,
		Route:        route,
		Results:      len(out.Itineraries),
		HandleIDs:    make([]string, 0, len(out.FlightData)),
		FailedCalls:  len(out.Metadata.FailedCalls),
		SearchTimeMs: out.Metadata.SearchTimeMs,
		CompletedAt:  time.Now().UTC(),
	}
	for _, h := range out.FlightData {
		ev.HandleIDs = append(ev.HandleIDs, h.ID)
	}
	var cheapest *entity.Itinerary
	for i, it := range out.Itineraries {
		if it.Unpriced {
			continue
		}
		if cheapest == nil || it.TotalAmount.LessThan(cheapest.TotalAmount) {
			cheapest = &out.Itineraries[i]
		}
	}
	if cheapest != nil {
		ev.Cheapest = cheapest.TotalAmount.StringFixed(2)
		ev.Currency = cheapest.Currency
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode search event", "error", err)
		return
	}
	if err := u.events.Publish(ctx, route, payload); err != nil {
		slog.WarnContext(ctx, "failed to publish search event", "route", route, "error", err)
	}
}
