package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

// commissionIndex keeps the first rule of every supplier.
func commissionIndex(rules []entity.CommissionRule) map[entity.SupplierID]entity.CommissionRule {
	idx := make(map[entity.SupplierID]entity.CommissionRule, len(rules))
	for _, r := range rules {
		if _, ok := idx[r.Supplier]; ok {
			continue
		}
		idx[r.Supplier] = r
	}
	return idx
}

// postProcess drops itineraries a fare-class rule excludes and applies
// commission to the rest.
func postProcess(its []entity.Itinerary, rules *ruleSet) []entity.Itinerary {
	out := make([]entity.Itinerary, 0, len(its))
	for _, it := range its {
		if fareBlocked(it, rules.firewall) {
			continue
		}
		out = append(out, applyCommission(it, rules.commissions))
	}
	return out
}

// applyCommission charges each supplier of the itinerary once: a FIXED rule
// adds its amount, a PERCENT rule adds a share of that supplier's base.
// Unpriced itineraries carry no commission.
func applyCommission(it entity.Itinerary, rules map[entity.SupplierID]entity.CommissionRule) entity.Itinerary {
	if it.Unpriced {
		return it
	}

	var order []entity.SupplierID
	bases := map[entity.SupplierID]decimal.Decimal{}
	for _, o := range it.Offers {
		if _, ok := bases[o.SourceID]; !ok {
			order = append(order, o.SourceID)
			bases[o.SourceID] = decimal.Zero
		}
		bases[o.SourceID] = bases[o.SourceID].Add(o.BaseAmount)
	}

	commission := decimal.Zero
	for _, id := range order {
		if rule, ok := rules[id]; ok {
			commission = commission.Add(rule.Apply(bases[id]).Round(2))
		}
	}

	it.CommissionAmount = commission
	it.TotalAmount = it.BaseAmount.Add(it.TaxAmount).Add(commission)
	return it
}

func fareBlocked(it entity.Itinerary, firewall []entity.FirewallRule) bool {
	for _, o := range it.Offers {
		for _, rule := range firewall {
			if !rule.FareScoped() || !rule.AppliesTo(o.SourceID) {
				continue
			}
			for _, seg := range o.Segments() {
				if rule.BlocksSegment(seg) {
					return true
				}
			}
		}
	}
	return false
}
