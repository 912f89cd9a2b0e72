package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

type SupplierID string

const (
	SupplierAll     SupplierID = "ALL"
	SupplierDuffel  SupplierID = "DUFFEL"
	SupplierAmadeus SupplierID = "AMADEUS"
	SupplierKIU     SupplierID = "KIUSYS"
)

// FirewallRule excludes a supplier from a route. Without FareClassCode it
// blocks the (supplier, route) pair before any query is sent; with one it is
// resolved against the quoted fare class afterwards.
type FirewallRule struct {
	ID            string
	Title         string
	Supplier      SupplierID
	From          string
	To            string
	FareClassCode string
	FlightNumber  string
}

func (f FirewallRule) AppliesTo(s SupplierID) bool {
	return f.Supplier == s || f.Supplier == SupplierAll
}

// Pair is the From+To signature fragment, empty when the rule is not route bound.
func (f FirewallRule) Pair() string {
	return strings.ToUpper(strings.TrimSpace(f.From) + strings.TrimSpace(f.To))
}

func (f FirewallRule) FareScoped() bool {
	return strings.TrimSpace(f.FareClassCode) != ""
}

// BlocksSegment reports whether a fare-class scoped rule excludes seg.
func (f FirewallRule) BlocksSegment(seg Segment) bool {
	if !f.FareScoped() {
		return false
	}
	code := strings.TrimSpace(f.FareClassCode)
	if !strings.EqualFold(code, seg.FareClassCode) && !strings.EqualFold(code, seg.FareBasisCode) {
		return false
	}
	if f.From != "" && !strings.EqualFold(f.From, seg.Origin.IATACode) {
		return false
	}
	if f.To != "" && !strings.EqualFold(f.To, seg.Destination.IATACode) {
		return false
	}
	if f.FlightNumber != "" && !strings.EqualFold(f.FlightNumber, seg.FlightNumber) {
		return false
	}
	return true
}

type FeeType string

const (
	FeeTypeFixed   FeeType = "FIXED"
	FeeTypePercent FeeType = "PERCENT"
)

type CommissionRule struct {
	ID       string
	Supplier SupplierID
	FeeType  FeeType
	Amount   decimal.Decimal
}

// Apply returns the commission owed on base.
func (c CommissionRule) Apply(base decimal.Decimal) decimal.Decimal {
	switch c.FeeType {
	case FeeTypeFixed:
		return c.Amount
	case FeeTypePercent:
		return base.Mul(c.Amount).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
}
