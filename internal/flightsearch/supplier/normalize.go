package supplier

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

type NormalizeInput struct {
	// Firewall holds the rules of the result's supplier, ALL rules included.
	// Only fare-class scoped rules matter here.
	Firewall []entity.FirewallRule
	// Confirmer prices KIU availability. Without one every KIU offer is unpriced.
	Confirmer PriceConfirmer
}

// Normalize maps a supplier-native result into offers. Commission is never
// applied here, so every offer satisfies Total == Base + Tax.
func Normalize(ctx context.Context, raw RawResult, in NormalizeInput) ([]entity.Offer, error) {
	rules := fareRules(raw.Supplier(), in.Firewall)

	switch r := raw.(type) {
	case *DuffelResult:
		return excludeFareClasses(normalizeDuffel(r), rules), nil
	case *AmadeusResult:
		return excludeFareClasses(normalizeAmadeus(r), rules), nil
	case *KIUResult:
		return normalizeKIU(ctx, r, rules, in.Confirmer), nil
	default:
		return nil, fmt.Errorf("normalize: unknown raw result %T", raw)
	}
}

func fareRules(supplier entity.SupplierID, rules []entity.FirewallRule) []entity.FirewallRule {
	out := make([]entity.FirewallRule, 0, len(rules))
	for _, r := range rules {
		if r.AppliesTo(supplier) && r.FareScoped() {
			out = append(out, r)
		}
	}
	return out
}

// excludeFareClasses drops every offer with a segment sold in a fare class a
// rule blocks.
func excludeFareClasses(offers []entity.Offer, rules []entity.FirewallRule) []entity.Offer {
	if len(rules) == 0 {
		return offers
	}
	out := offers[:0]
	for _, o := range offers {
		if !segmentsBlocked(o.Segments(), rules) {
			out = append(out, o)
		}
	}
	return out
}

func segmentsBlocked(segments []entity.Segment, rules []entity.FirewallRule) bool {
	for _, seg := range segments {
		for _, rule := range rules {
			if rule.BlocksSegment(seg) {
				return true
			}
		}
	}
	return false
}

func offerID(key TaskKey, nativeID string) string {
	return key.String() + ":" + nativeID
}

func pricedOffer(o entity.Offer, base, tax, total decimal.Decimal) entity.Offer {
	switch {
	case base.IsZero() && !total.IsZero():
		base = total.Sub(tax)
	case tax.IsZero() && total.GreaterThan(base):
		tax = total.Sub(base)
	}
	o.BaseAmount = base
	o.TaxAmount = tax
	o.CommissionAmount = decimal.Zero
	o.TotalAmount = base.Add(tax)
	return o
}

func unpricedOffer(o entity.Offer) entity.Offer {
	o.Unpriced = true
	o.BaseAmount = entity.SentinelTotal
	o.TaxAmount = decimal.Zero
	o.CommissionAmount = decimal.Zero
	o.TotalAmount = entity.SentinelTotal
	return o
}

func cabinFromSupplier(v string) entity.CabinClass {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := entity.ParseCabinClass(v); ok {
		return c
	}
	if v == "premium" {
		return entity.CabinPremiumEconomy
	}
	return entity.CabinEconomy
}

func sliceOf(segments []entity.Segment, duration string, brand string) entity.Slice {
	sl := entity.Slice{FareBrandName: brand, Segments: segments}
	if len(segments) == 0 {
		return sl
	}
	first, last := segments[0], segments[len(segments)-1]
	sl.Origin = first.Origin
	sl.Destination = last.Destination
	sl.Duration = parseISODuration(duration)
	if sl.Duration == 0 {
		sl.Duration = durationBetween(first.DepartingAt, last.ArrivingAt, 0)
	}
	return sl
}
