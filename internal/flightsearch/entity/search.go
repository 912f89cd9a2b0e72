package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

func ParseCabinClass(v string) (CabinClass, bool) {
	switch c := CabinClass(strings.ToLower(strings.TrimSpace(v))); c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return c, true
	case "":
		return CabinEconomy, true
	default:
		return "", false
	}
}

type TripType string

const (
	TripOneWay    TripType = "ONEWAY"
	TripRoundTrip TripType = "ROUNDTRIP"
	TripMultiWay  TripType = "MULTIWAY"
)

type Passengers struct {
	Adults   int
	Children int
	Infants  int
}

func (p Passengers) Total() int {
	return p.Adults + p.Children + p.Infants
}

// AirlineProvider is an entry of the airline directory returned alongside
// search results.
type AirlineProvider struct {
	Code        string
	DisplayName string
	Logo        string
}

// SavedHandle is what the persistence collaborator hands back for a stored itinerary.
type SavedHandle struct {
	ID          string
	ItineraryID string
	TotalAmount decimal.Decimal
	Currency    string
	CreatedAt   time.Time
}
