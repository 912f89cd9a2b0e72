package routing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

func route(index int, codes ...string) entity.CandidateRoute {
	r := entity.CandidateRoute{Index: index}
	for i := 0; i+1 < len(codes); i++ {
		r.Segments = append(r.Segments, entity.RouteSegment{
			Origin:      entity.NewLocation(codes[i]),
			Destination: entity.NewLocation(codes[i+1]),
		})
	}
	return r
}

func TestEligible(t *testing.T) {
	t.Parallel()

	rules := []entity.FirewallRule{
		{Supplier: entity.SupplierKIU, From: "JFK", To: "LHR"},
		{Supplier: entity.SupplierAll, From: "DUB", To: "LHR"},
		{Supplier: entity.SupplierAmadeus, From: "JFK", To: "LHR", FareClassCode: "Y"},
		{Supplier: entity.SupplierDuffel},
	}

	tests := []struct {
		name     string
		route    entity.CandidateRoute
		supplier entity.SupplierID
		want     bool
	}{
		{"supplier_rule_blocks", route(0, "JFK", "LHR"), entity.SupplierKIU, false},
		{"other_supplier_unaffected", route(0, "JFK", "LHR"), entity.SupplierDuffel, true},
		{"fare_scoped_rule_deferred", route(0, "JFK", "LHR"), entity.SupplierAmadeus, true},
		{"wildcard_blocks_every_supplier", route(1, "JFK", "DUB", "LHR"), entity.SupplierAmadeus, false},
		{"wildcard_blocks_kiu_too", route(1, "JFK", "DUB", "LHR"), entity.SupplierKIU, false},
		{"pair_not_in_signature", route(2, "JFK", "KEF", "LHR"), entity.SupplierKIU, true},
		{"empty_pair_never_blocks", route(2, "JFK", "KEF", "LHR"), entity.SupplierDuffel, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Eligible(tc.route, tc.supplier, rules))
		})
	}
}

func TestBuildQueryPlan(t *testing.T) {
	t.Parallel()

	routes := []entity.CandidateRoute{
		route(0, "JFK", "LHR"),
		route(1, "JFK", "DUB", "LHR"),
		route(2, "JFK", "KEF", "LHR"),
	}
	rules := []entity.FirewallRule{
		{Supplier: entity.SupplierKIU, From: "JFK", To: "LHR"},
		{Supplier: entity.SupplierAll, From: "KEF", To: "LHR"},
	}
	suppliers := []entity.SupplierID{entity.SupplierKIU, entity.SupplierDuffel, entity.SupplierAmadeus}

	plan := BuildQueryPlan(routes, suppliers, rules)

	assert.Equal(t, []int{1}, plan[entity.SupplierKIU])
	assert.Equal(t, []int{0, 1}, plan[entity.SupplierDuffel])
	assert.Equal(t, []int{0, 1}, plan[entity.SupplierAmadeus])
	assert.Equal(t, []entity.SupplierID{entity.SupplierAmadeus, entity.SupplierDuffel, entity.SupplierKIU}, plan.Suppliers())
	assert.True(t, plan.Allows(entity.SupplierKIU, 1))
	assert.False(t, plan.Allows(entity.SupplierKIU, 0))
}

// Wildcard-only rule sets never leave a supplier eligible for a route whose
// signature contains a blocked pair.
func TestEligible_WildcardRulesNeverLeak(t *testing.T) {
	t.Parallel()

	airports := []string{"JFK", "LHR", "DUB", "KEF", "CDG"}
	var routes []entity.CandidateRoute
	for _, a := range airports {
		for _, b := range airports {
			for _, c := range airports {
				if a == b || b == c || a == c {
					continue
				}
				routes = append(routes, route(len(routes), a, b, c))
			}
		}
	}

	for _, from := range airports {
		for _, to := range airports {
			if from == to {
				continue
			}
			rules := []entity.FirewallRule{{Supplier: entity.SupplierAll, From: from, To: to}}
			suppliers := []entity.SupplierID{entity.SupplierDuffel, entity.SupplierAmadeus, entity.SupplierKIU}
			plan := BuildQueryPlan(routes, suppliers, rules)
			for _, r := range routes {
				blocked := strings.Contains(r.Signature(), from+to)
				for _, s := range suppliers {
					msg := fmt.Sprintf("%s on %s with %s%s", s, r.Signature(), from, to)
					assert.Equal(t, !blocked, Eligible(r, s, rules), msg)
					assert.Equal(t, !blocked, plan.Allows(s, r.Index), msg)
				}
			}
		}
	}
}

func TestRulesFor(t *testing.T) {
	t.Parallel()

	rules := []entity.FirewallRule{
		{ID: "1", Supplier: entity.SupplierKIU},
		{ID: "2", Supplier: entity.SupplierAll},
		{ID: "3", Supplier: entity.SupplierDuffel},
	}
	got := RulesFor(entity.SupplierKIU, rules)
	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}
