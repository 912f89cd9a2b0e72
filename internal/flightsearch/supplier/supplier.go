// Package supplier holds the clients of the upstream flight suppliers and the
// normalizers mapping their native responses into entity.Offer.
package supplier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

var (
	// ErrSupplierUnavailable wraps network, timeout and non-2xx failures of a
	// single supplier call.
	ErrSupplierUnavailable = errors.New("supplier unavailable")
	// ErrUnpricedOffer is returned when availability exists but the price
	// confirmation failed.
	ErrUnpricedOffer = errors.New("offer price could not be confirmed")
	// ErrTemporary marks failures worth retrying.
	ErrTemporary = errors.New("temporary supplier error")
)

// TaskKey identifies one supplier call of a search: which supplier was asked
// about which hop of which candidate route.
type TaskKey struct {
	RouteIndex int
	HopIndex   int
	Supplier   entity.SupplierID
}

func (k TaskKey) String() string {
	return fmt.Sprintf("r%d-h%d-%s", k.RouteIndex, k.HopIndex, k.Supplier)
}

func (k TaskKey) RouteID() string {
	return fmt.Sprintf("route-%d-hop-%d", k.RouteIndex, k.HopIndex)
}

type SegmentQuery struct {
	Key           TaskKey
	Origin        string
	Destination   string
	DepartureDate time.Time
	Passengers    entity.Passengers
	CabinClass    entity.CabinClass
}

// RawResult is the supplier-native answer to one SegmentQuery. The concrete
// types are *DuffelResult, *AmadeusResult and *KIUResult.
type RawResult interface {
	Key() TaskKey
	Supplier() entity.SupplierID
}

type Client interface {
	ID() entity.SupplierID
	SearchSegment(ctx context.Context, q SegmentQuery) (RawResult, error)
}

// PriceConfirmer is implemented by suppliers whose availability answer carries
// no price.
type PriceConfirmer interface {
	ConfirmPrice(ctx context.Context, q PriceQuery) (PriceQuote, error)
}

type PriceQuery struct {
	Origin       string
	Destination  string
	DepartingAt  time.Time
	ArrivingAt   time.Time
	Carrier      string
	FlightNumber string
	BookingClass string
	Passengers   entity.Passengers
}

type PriceQuote struct {
	Base     decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Currency string
}
