package routing

import (
	"sort"
	"strings"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

// RulesFor returns the rules that bind supplier, wildcard rules included.
func RulesFor(supplier entity.SupplierID, rules []entity.FirewallRule) []entity.FirewallRule {
	out := make([]entity.FirewallRule, 0, len(rules))
	for _, r := range rules {
		if r.AppliesTo(supplier) {
			out = append(out, r)
		}
	}
	return out
}

// Eligible reports whether supplier may be queried for route. Fare-class
// scoped rules never make a route ineligible; they are applied to quoted fares.
func Eligible(route entity.CandidateRoute, supplier entity.SupplierID, rules []entity.FirewallRule) bool {
	return !containsAny(route.Signature(), blockingPairs(rules, supplier))
}

// QueryPlan lists, per supplier, the indices of the routes it may be asked about.
type QueryPlan map[entity.SupplierID][]int

func BuildQueryPlan(routes []entity.CandidateRoute, suppliers []entity.SupplierID, rules []entity.FirewallRule) QueryPlan {
	plan := make(QueryPlan, len(suppliers))
	for _, s := range suppliers {
		indices := make([]int, 0, len(routes))
		for _, r := range routes {
			if Eligible(r, s, rules) {
				indices = append(indices, r.Index)
			}
		}
		plan[s] = indices
	}
	return plan
}

// Suppliers returns the suppliers of the plan in a stable order.
func (q QueryPlan) Suppliers() []entity.SupplierID {
	out := make([]entity.SupplierID, 0, len(q))
	for s := range q {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Allows reports whether supplier was planned for the route at routeIndex.
func (q QueryPlan) Allows(supplier entity.SupplierID, routeIndex int) bool {
	for _, idx := range q[supplier] {
		if idx == routeIndex {
			return true
		}
	}
	return false
}

func blockingPairs(rules []entity.FirewallRule, supplier entity.SupplierID) []string {
	var out []string
	for _, r := range rules {
		if !r.AppliesTo(supplier) || r.FareScoped() {
			continue
		}
		if pair := r.Pair(); pair != "" {
			out = append(out, pair)
		}
	}
	return out
}

func containsAny(signature string, pairs []string) bool {
	for _, p := range pairs {
		if strings.Contains(signature, p) {
			return true
		}
	}
	return false
}
