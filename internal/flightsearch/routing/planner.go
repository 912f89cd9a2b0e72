// Package routing turns an origin/destination pair into candidate routes and
// decides which supplier may be asked about which route.
package routing

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

var ErrNoRouteFound = errors.New("no candidate route found")

// DefaultMaxLayovers bounds self-transfer paths when neither the planner nor
// the request sets a tighter limit.
const DefaultMaxLayovers = 4

// DefaultConnectionWindow is used for direct-only plans, where it is never
// consulted by the combiner, and when no window is configured.
var DefaultConnectionWindow = entity.SearchManagement{
	MinConnectionTime: 2 * time.Hour,
	MaxConnectionTime: 12 * time.Hour,
}

type Planner struct {
	maxLayovers int
	window      entity.SearchManagement
}

func NewPlanner(maxLayovers int, window entity.SearchManagement) *Planner {
	if maxLayovers <= 0 {
		maxLayovers = DefaultMaxLayovers
	}
	if window.MaxConnectionTime <= 0 || window.MinConnectionTime > window.MaxConnectionTime {
		window = DefaultConnectionWindow
	}
	return &Planner{maxLayovers: maxLayovers, window: window}
}

type PlanInput struct {
	Origin              string
	Destination         string
	MaxLayovers         int
	SelfTransferAllowed *bool
	Firewall            []entity.FirewallRule
	Connections         []entity.Connection
}

type Plan struct {
	Routes           []entity.CandidateRoute
	SearchManagement entity.SearchManagement
}

func (p Plan) Empty() bool {
	return len(p.Routes) == 0
}

// Plan enumerates candidate routes. Without self transfer only the direct
// route is returned. Otherwise every simple path through the connection graph
// with at most maxLayovers+1 hops is added, minus paths blocked for all
// suppliers. Routes are ordered by hop count, then by signature.
func (p *Planner) Plan(in PlanInput) Plan {
	origin := strings.ToUpper(strings.TrimSpace(in.Origin))
	destination := strings.ToUpper(strings.TrimSpace(in.Destination))
	if origin == "" || destination == "" || origin == destination {
		return Plan{SearchManagement: p.window}
	}

	direct := [][]string{{origin, destination}}
	if in.SelfTransferAllowed != nil && !*in.SelfTransferAllowed {
		return Plan{
			Routes:           buildRoutes(direct),
			SearchManagement: DefaultConnectionWindow,
		}
	}

	limit := p.maxLayovers
	if in.MaxLayovers >= 0 && in.MaxLayovers < limit {
		limit = in.MaxLayovers
	}

	paths := direct
	if limit > 0 {
		paths = append(paths, walk(newGraph(in.Connections), origin, destination, limit+1)...)
	}

	blocking := blockingPairs(in.Firewall, entity.SupplierAll)
	seen := make(map[string]struct{}, len(paths))
	kept := make([][]string, 0, len(paths))
	for _, path := range paths {
		sig := pathSignature(path)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		if containsAny(sig, blocking) {
			continue
		}
		kept = append(kept, path)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if len(kept[i]) != len(kept[j]) {
			return len(kept[i]) < len(kept[j])
		}
		return pathSignature(kept[i]) < pathSignature(kept[j])
	})

	return Plan{Routes: buildRoutes(kept), SearchManagement: p.window}
}

type graph map[string][]string

func newGraph(conns []entity.Connection) graph {
	g := graph{}
	seen := map[entity.Connection]struct{}{}
	for _, c := range conns {
		edge := entity.Connection{
			From: strings.ToUpper(strings.TrimSpace(c.From)),
			To:   strings.ToUpper(strings.TrimSpace(c.To)),
		}
		if edge.From == "" || edge.To == "" || edge.From == edge.To {
			continue
		}
		if _, ok := seen[edge]; ok {
			continue
		}
		seen[edge] = struct{}{}
		g[edge.From] = append(g[edge.From], edge.To)
	}
	for from := range g {
		sort.Strings(g[from])
	}
	return g
}

// walk returns every simple path from origin to destination with at most
// maxHops edges. A path stops extending once it reaches destination.
func walk(g graph, origin, destination string, maxHops int) [][]string {
	var out [][]string
	visited := map[string]bool{origin: true}
	path := []string{origin}

	var visit func(node string)
	visit = func(node string) {
		if len(path)-1 >= maxHops {
			return
		}
		for _, next := range g[node] {
			if visited[next] {
				continue
			}
			path = append(path, next)
			if next == destination {
				out = append(out, append([]string(nil), path...))
			} else {
				visited[next] = true
				visit(next)
				visited[next] = false
			}
			path = path[:len(path)-1]
		}
	}
	visit(origin)
	return out
}

func buildRoutes(paths [][]string) []entity.CandidateRoute {
	routes := make([]entity.CandidateRoute, 0, len(paths))
	for i, path := range paths {
		segs := make([]entity.RouteSegment, 0, len(path)-1)
		for j := 0; j+1 < len(path); j++ {
			segs = append(segs, entity.RouteSegment{
				Origin:      entity.NewLocation(path[j]),
				Destination: entity.NewLocation(path[j+1]),
			})
		}
		routes = append(routes, entity.CandidateRoute{Index: i, Segments: segs})
	}
	return routes
}

func pathSignature(path []string) string {
	var b strings.Builder
	for j := 0; j+1 < len(path); j++ {
		b.WriteString(path[j])
		b.WriteString(path[j+1])
		b.WriteString(",")
	}
	return b.String()
}
