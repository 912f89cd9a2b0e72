package usecase

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkguid"
)

// combine stitches one offer per hop into itineraries. A partial path is only
// extended when the layover before the next hop fits the window, so
// single-hop routes never consult it.
func combine(route entity.CandidateRoute, hops [][]entity.Offer, window entity.SearchManagement) []entity.Itinerary {
	if len(hops) == 0 {
		return nil
	}
	for _, h := range hops {
		if len(h) == 0 {
			return nil
		}
	}

	var out []entity.Itinerary
	path := make([]entity.Offer, 0, len(hops))
	var walk func(i int, currency string)
	walk = func(i int, currency string) {
		if i == len(hops) {
			out = append(out, newItinerary(route.Index, path))
			return
		}
		for _, o := range hops[i] {
			if i > 0 && !window.Allows(o.DepartingAt().Sub(path[i-1].ArrivingAt())) {
				continue
			}
			next, ok := joinCurrency(currency, offerCurrency(o))
			if !ok {
				continue
			}
			path = append(path, o)
			walk(i+1, next)
			path = path[:i]
		}
	}
	walk(0, "")
	return out
}

// joinCurrency merges the currency of a partial combination with the one of
// the next part. Parts quoted in different currencies never combine; an empty
// currency matches anything.
func joinCurrency(current, next string) (string, bool) {
	switch {
	case current == "":
		return next, true
	case next == "" || strings.EqualFold(current, next):
		return current, true
	default:
		return "", false
	}
}

// offerCurrency is the currency o is priced in, empty for unpriced offers.
func offerCurrency(o entity.Offer) string {
	if o.Unpriced {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(o.Currency))
}

// newItinerary sums offers into an itinerary. One unpriced offer makes the
// whole itinerary unpriced.
func newItinerary(routeIndex int, offers []entity.Offer) entity.Itinerary {
	it := entity.Itinerary{
		RouteIndex: routeIndex,
		Offers:     append([]entity.Offer(nil), offers...),
	}
	it.ID = pkguid.Stable(it.Key())

	base, tax, commission := decimal.Zero, decimal.Zero, decimal.Zero
	for _, o := range offers {
		if o.Unpriced {
			it.Unpriced = true
		}
		base = base.Add(o.BaseAmount)
		tax = tax.Add(o.TaxAmount)
		commission = commission.Add(o.CommissionAmount)
		if it.Currency == "" {
			it.Currency = offerCurrency(o)
		}
	}
	if it.Currency == "" && len(offers) > 0 {
		it.Currency = offers[0].Currency
	}
	it.BaseAmount, it.TaxAmount, it.CommissionAmount = base, tax, commission
	it.TotalAmount = base.Add(tax).Add(commission)
	if it.Unpriced {
		markUnpriced(&it)
	}

	if len(offers) > 0 {
		it.DepartingAt = offers[0].DepartingAt()
		it.ArrivingAt = offers[len(offers)-1].ArrivingAt()
		it.Duration = durationOf(it.DepartingAt, it.ArrivingAt)
	}
	if n := len(it.Segments()); n > 0 {
		it.Stops = n - 1
	}
	return it
}

func markUnpriced(it *entity.Itinerary) {
	it.Unpriced = true
	it.BaseAmount = entity.SentinelTotal
	it.TaxAmount = decimal.Zero
	it.CommissionAmount = decimal.Zero
	it.TotalAmount = entity.SentinelTotal
}

func durationOf(depart, arrive time.Time) time.Duration {
	if depart.IsZero() || arrive.IsZero() || arrive.Before(depart) {
		return 0
	}
	return arrive.Sub(depart)
}
