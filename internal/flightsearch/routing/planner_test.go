package routing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

func signatures(routes []entity.CandidateRoute) []string {
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.Signature())
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

var testConnections = []entity.Connection{
	{From: "JFK", To: "DUB"},
	{From: "DUB", To: "LHR"},
	{From: "JFK", To: "BOS"},
	{From: "BOS", To: "KEF"},
	{From: "KEF", To: "LHR"},
	{From: "JFK", To: "KEF"},
	{From: "LHR", To: "JFK"},
}

func TestPlanner_Plan(t *testing.T) {
	t.Parallel()

	window := entity.SearchManagement{MinConnectionTime: time.Hour, MaxConnectionTime: 6 * time.Hour}

	tests := []struct {
		name   string
		in     PlanInput
		want   []string
		window entity.SearchManagement
	}{
		{
			name: "self_transfer_disallowed_returns_direct_only",
			in: PlanInput{
				Origin: "jfk", Destination: "lhr", MaxLayovers: 2,
				SelfTransferAllowed: boolPtr(false),
				Connections:         testConnections,
			},
			want:   []string{"JFKLHR,"},
			window: DefaultConnectionWindow,
		},
		{
			name: "enumerates_paths_fewer_hops_first_then_lexical",
			in: PlanInput{
				Origin: "JFK", Destination: "LHR", MaxLayovers: 2,
				Connections: testConnections,
			},
			want: []string{
				"JFKLHR,",
				"JFKDUB,DUBLHR,",
				"JFKKEF,KEFLHR,",
				"JFKBOS,BOSKEF,KEFLHR,",
			},
			window: window,
		},
		{
			name: "request_limit_prunes_long_paths",
			in: PlanInput{
				Origin: "JFK", Destination: "LHR", MaxLayovers: 1,
				Connections: testConnections,
			},
			want:   []string{"JFKLHR,", "JFKDUB,DUBLHR,", "JFKKEF,KEFLHR,"},
			window: window,
		},
		{
			name: "zero_layovers_is_direct_only",
			in: PlanInput{
				Origin: "JFK", Destination: "LHR", MaxLayovers: 0,
				Connections: testConnections,
			},
			want:   []string{"JFKLHR,"},
			window: window,
		},
		{
			name: "wildcard_firewall_prunes_paths",
			in: PlanInput{
				Origin: "JFK", Destination: "LHR", MaxLayovers: 2,
				Connections: testConnections,
				Firewall: []entity.FirewallRule{
					{Supplier: entity.SupplierAll, From: "KEF", To: "LHR"},
					{Supplier: entity.SupplierDuffel, From: "JFK", To: "DUB"},
					{Supplier: entity.SupplierAll, From: "JFK", To: "LHR", FareClassCode: "Y"},
				},
			},
			want:   []string{"JFKLHR,", "JFKDUB,DUBLHR,"},
			window: window,
		},
		{
			name:   "same_origin_and_destination_has_no_route",
			in:     PlanInput{Origin: "JFK", Destination: "jfk", Connections: testConnections},
			want:   []string{},
			window: window,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			plan := NewPlanner(DefaultMaxLayovers, window).Plan(tc.in)
			if diff := cmp.Diff(tc.want, signatures(plan.Routes)); diff != "" {
				t.Errorf("routes mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.window, plan.SearchManagement)
			for i, r := range plan.Routes {
				assert.Equal(t, i, r.Index)
			}
		})
	}
}

func TestPlanner_PlanIsDeterministic(t *testing.T) {
	t.Parallel()

	shuffled := []entity.Connection{
		testConnections[5], testConnections[2], testConnections[0],
		testConnections[4], testConnections[1], testConnections[3],
	}
	p := NewPlanner(3, DefaultConnectionWindow)
	in := PlanInput{Origin: "JFK", Destination: "LHR", MaxLayovers: 3}

	in.Connections = testConnections
	first := p.Plan(in)
	in.Connections = shuffled
	second := p.Plan(in)

	require.NotEmpty(t, first.Routes)
	assert.Equal(t, signatures(first.Routes), signatures(second.Routes))
}

func TestNewPlanner_Defaults(t *testing.T) {
	t.Parallel()

	p := NewPlanner(0, entity.SearchManagement{MinConnectionTime: 3 * time.Hour, MaxConnectionTime: time.Hour})
	assert.Equal(t, DefaultMaxLayovers, p.maxLayovers)
	assert.Equal(t, DefaultConnectionWindow, p.window)
}
