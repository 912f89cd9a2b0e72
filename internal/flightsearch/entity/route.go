package entity

import (
	"strings"
	"time"
)

type Location struct {
	IATACode    string
	CityName    string
	CountryCode string
}

func NewLocation(code string) Location {
	return Location{IATACode: strings.ToUpper(strings.TrimSpace(code))}
}

type RouteSegment struct {
	Origin      Location
	Destination Location
}

// CandidateRoute is one way of getting from the requested origin to the
// requested destination. Index is its position in the planner's stable order.
type CandidateRoute struct {
	Index    int
	Segments []RouteSegment
}

// Signature concatenates origin and destination codes of every hop, each hop
// terminated by a comma: JFK->LHR->CDG is "JFKLHR,LHRCDG,".
func (r CandidateRoute) Signature() string {
	var b strings.Builder
	for _, s := range r.Segments {
		b.WriteString(s.Origin.IATACode)
		b.WriteString(s.Destination.IATACode)
		b.WriteString(",")
	}
	return b.String()
}

func (r CandidateRoute) Hops() int {
	return len(r.Segments)
}

// SearchManagement holds the connection window applied between consecutive hops.
type SearchManagement struct {
	MinConnectionTime time.Duration
	MaxConnectionTime time.Duration
}

func (s SearchManagement) Allows(layover time.Duration) bool {
	return layover >= s.MinConnectionTime && layover <= s.MaxConnectionTime
}

// Connection is a directed edge of the connection graph used to build
// self-transfer routes.
type Connection struct {
	From string
	To   string
}
