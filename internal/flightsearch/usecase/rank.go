package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

type SortOption string

const (
	SortCheap SortOption = "CHEAP"
	SortFast  SortOption = "FAST"
	SortBest  SortOption = "BEST"
)

func ParseSortOption(v string) (SortOption, bool) {
	switch s := SortOption(strings.ToUpper(strings.TrimSpace(v))); s {
	case SortCheap, SortFast, SortBest:
		return s, true
	case "":
		return SortBest, true
	default:
		return "", false
	}
}

// Filters are combined with AND. Durations are in minutes, times of day in
// fractional hours (13.5 is 13:30). Price bounds ignore unpriced itineraries.
type Filters struct {
	MinPrice          *decimal.Decimal
	MaxPrice          *decimal.Decimal
	MaxDuration       *int
	MinOnwardDuration *int
	MaxOnwardDuration *int
	MaxStops          *int
	MinDepartureTime  *float64
	MaxDepartureTime  *float64
	MinArrivalTime    *float64
	MaxArrivalTime    *float64
	CabinBaggage      *int
	CheckedBaggage    *int
	PreferredAirlines []string
}

// RankConfig weights the BEST score. References are fixed so a score never
// depends on the other candidates.
type RankConfig struct {
	PriceWeight    float64
	DurationWeight float64
	PriceRef       float64
	DurationRef    time.Duration
	// Currency is ranked ahead of every other currency. Prices in different
	// currencies are never compared with each other.
	Currency string
}

func (c RankConfig) withDefaults() RankConfig {
	if c.PriceWeight <= 0 && c.DurationWeight <= 0 {
		c.PriceWeight, c.DurationWeight = 0.6, 0.4
	}
	if c.PriceRef <= 0 {
		c.PriceRef = 100
	}
	if c.DurationRef <= 0 {
		c.DurationRef = time.Hour
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	return c
}

func (c RankConfig) score(it entity.Itinerary) float64 {
	price := it.TotalAmount.InexactFloat64()
	return c.PriceWeight*price/c.PriceRef + c.DurationWeight*it.Duration.Minutes()/c.DurationRef.Minutes()
}

// rank deduplicates, filters, scores, sorts and caps itineraries.
func rank(its []entity.Itinerary, f Filters, by SortOption, cfg RankConfig, limit int) []entity.Itinerary {
	out := dedup(its)
	out = filterItineraries(out, f)
	out = sortItineraries(out, by, cfg)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dedup keeps the first itinerary of every offer sequence.
func dedup(its []entity.Itinerary) []entity.Itinerary {
	seen := make(map[string]struct{}, len(its))
	out := make([]entity.Itinerary, 0, len(its))
	for _, it := range its {
		key := it.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

func filterItineraries(its []entity.Itinerary, f Filters) []entity.Itinerary {
	airlines := normalizeSet(f.PreferredAirlines)
	out := make([]entity.Itinerary, 0, len(its))
	for _, it := range its {
		if f.match(it, airlines) {
			out = append(out, it)
		}
	}
	return out
}

func (f Filters) match(it entity.Itinerary, airlines map[string]struct{}) bool {
	if !f.matchPrice(it) {
		return false
	}
	if f.MaxDuration != nil && minutes(it.Duration) > *f.MaxDuration {
		return false
	}
	air := minutes(it.AirTime())
	if f.MinOnwardDuration != nil && air < *f.MinOnwardDuration {
		return false
	}
	if f.MaxOnwardDuration != nil && air > *f.MaxOnwardDuration {
		return false
	}
	if f.MaxStops != nil && it.Stops > *f.MaxStops {
		return false
	}
	if !inHourRange(it.DepartingAt, f.MinDepartureTime, f.MaxDepartureTime) {
		return false
	}
	if !inHourRange(it.ArrivingAt, f.MinArrivalTime, f.MaxArrivalTime) {
		return false
	}
	if !f.matchBaggage(it) {
		return false
	}
	return matchAirline(it, airlines)
}

func (f Filters) matchPrice(it entity.Itinerary) bool {
	if it.Unpriced {
		return true
	}
	if f.MinPrice != nil && it.TotalAmount.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && it.TotalAmount.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func (f Filters) matchBaggage(it entity.Itinerary) bool {
	if f.CabinBaggage == nil && f.CheckedBaggage == nil {
		return true
	}
	for _, s := range it.Segments() {
		if f.CabinBaggage != nil && s.CabinBaggage < *f.CabinBaggage {
			return false
		}
		if f.CheckedBaggage != nil && s.CheckedBaggage < *f.CheckedBaggage {
			return false
		}
	}
	return true
}

func matchAirline(it entity.Itinerary, airlines map[string]struct{}) bool {
	if len(airlines) == 0 {
		return true
	}
	for _, s := range it.Segments() {
		if _, ok := airlines[strings.ToLower(s.MarketingCarrier.IATACode)]; ok {
			return true
		}
	}
	return false
}

func inHourRange(t time.Time, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	if t.IsZero() {
		return false
	}
	h := float64(t.Hour()) + float64(t.Minute())/60
	if lo != nil && h < *lo {
		return false
	}
	if hi != nil && h > *hi {
		return false
	}
	return true
}

// sortItineraries orders unpriced itineraries last, then by the chosen key,
// then by total, duration and id so the order is total.
func sortItineraries(its []entity.Itinerary, by SortOption, cfg RankConfig) []entity.Itinerary {
	for i := range its {
		its[i].Score = cfg.score(its[i])
	}

	primary := func(a, b entity.Itinerary) int {
		switch by {
		case SortCheap:
			return a.TotalAmount.Cmp(b.TotalAmount)
		case SortFast:
			return compareDuration(a.Duration, b.Duration)
		default:
			return compareFloat(a.Score, b.Score)
		}
	}

	sort.SliceStable(its, func(i, j int) bool {
		a, b := its[i], its[j]
		if a.Unpriced != b.Unpriced {
			return !a.Unpriced
		}
		// Price keys only compare itineraries of one currency. FAST still
		// orders across currencies by duration first.
		cross := !a.Unpriced && !strings.EqualFold(a.Currency, b.Currency)
		if cross && by != SortFast {
			return currencyBefore(a.Currency, b.Currency, cfg.Currency)
		}
		if c := primary(a, b); c != 0 {
			return c < 0
		}
		if cross {
			return currencyBefore(a.Currency, b.Currency, cfg.Currency)
		}
		if c := a.TotalAmount.Cmp(b.TotalAmount); c != 0 {
			return c < 0
		}
		if c := compareDuration(a.Duration, b.Duration); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
	return its
}

// currencyBefore orders the preferred currency first, then by code.
func currencyBefore(a, b, preferred string) bool {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	if preferred != "" && (a == preferred) != (b == preferred) {
		return a == preferred
	}
	return a < b
}

func compareDuration(a, b time.Duration) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}

func normalizeSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		value := strings.ToLower(strings.TrimSpace(v))
		if value == "" {
			continue
		}
		set[value] = struct{}{}
	}
	return set
}
