// Package ports declares the collaborators the flight search usecase depends on.
package ports

import (
	"context"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

// RuleStore serves the configuration a search is evaluated against. The
// usecase reads one snapshot per request and shares it read-only.
type RuleStore interface {
	ListFirewallRules(ctx context.Context) ([]entity.FirewallRule, error)
	ListCommissionRules(ctx context.Context) ([]entity.CommissionRule, error)
	ListConnections(ctx context.Context) ([]entity.Connection, error)
}

// OfferStore persists the final itineraries of a search and hands back one
// handle per itinerary, in order.
type OfferStore interface {
	Save(ctx context.Context, itineraries []entity.Itinerary, pax entity.Passengers, trip entity.TripType) ([]entity.SavedHandle, error)
}

// EventPublisher announces finished searches.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
