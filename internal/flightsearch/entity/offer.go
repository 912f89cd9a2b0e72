package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SentinelTotal is the total of an offer or itinerary whose price could not be
// confirmed. It only exists so such results sort after every priced one.
var SentinelTotal = decimal.NewFromInt(999999)

type Carrier struct {
	IATACode string
	Name     string
	LogoURL  string
}

type Segment struct {
	ID               string
	Origin           Location
	Destination      Location
	DepartingAt      time.Time
	ArrivingAt       time.Time
	MarketingCarrier Carrier
	OperatingCarrier Carrier
	FlightNumber     string
	Aircraft         string
	CabinClass       CabinClass
	FareClassCode    string
	FareBasisCode    string
	CheckedBaggage   int
	CabinBaggage     int
	// Price is only set by suppliers that price per segment.
	Price   decimal.Decimal
	Invalid bool
}

func (s Segment) Duration() time.Duration {
	if s.DepartingAt.IsZero() || s.ArrivingAt.IsZero() {
		return 0
	}
	return s.ArrivingAt.Sub(s.DepartingAt)
}

type Slice struct {
	Origin        Location
	Destination   Location
	Duration      time.Duration
	FareBrandName string
	Segments      []Segment
}

type Offer struct {
	ID               string
	SourceID         SupplierID
	ResponseID       string
	RouteID          string
	Owner            Carrier
	Slices           []Slice
	BaseAmount       decimal.Decimal
	TaxAmount        decimal.Decimal
	CommissionAmount decimal.Decimal
	TotalAmount      decimal.Decimal
	Currency         string
	Unpriced         bool
	ExpiresAt        *time.Time
}

func (o Offer) Segments() []Segment {
	out := make([]Segment, 0, len(o.Slices))
	for _, sl := range o.Slices {
		out = append(out, sl.Segments...)
	}
	return out
}

func (o Offer) DepartingAt() time.Time {
	for _, sl := range o.Slices {
		if len(sl.Segments) > 0 {
			return sl.Segments[0].DepartingAt
		}
	}
	return time.Time{}
}

func (o Offer) ArrivingAt() time.Time {
	for i := len(o.Slices) - 1; i >= 0; i-- {
		segs := o.Slices[i].Segments
		if len(segs) > 0 {
			return segs[len(segs)-1].ArrivingAt
		}
	}
	return time.Time{}
}

// Itinerary is a complete journey stitched from one offer per hop. Multi-city
// itineraries additionally keep each leg in Legs.
type Itinerary struct {
	ID               string
	RouteIndex       int
	Offers           []Offer
	Legs             []Itinerary
	BaseAmount       decimal.Decimal
	TaxAmount        decimal.Decimal
	CommissionAmount decimal.Decimal
	TotalAmount      decimal.Decimal
	Currency         string
	Unpriced         bool
	DepartingAt      time.Time
	ArrivingAt       time.Time
	Duration         time.Duration
	Stops            int
	Score            float64
}

// Key identifies the itinerary by the sequence of offers it is built from.
func (it Itinerary) Key() string {
	ids := make([]string, 0, len(it.Offers))
	for _, o := range it.Offers {
		ids = append(ids, o.ID)
	}
	return strings.Join(ids, "|")
}

func (it Itinerary) Segments() []Segment {
	var out []Segment
	for _, o := range it.Offers {
		out = append(out, o.Segments()...)
	}
	return out
}

// AirTime is the time spent flying, connections excluded.
func (it Itinerary) AirTime() time.Duration {
	var d time.Duration
	for _, s := range it.Segments() {
		d += s.Duration()
	}
	return d
}
