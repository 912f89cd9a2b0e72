// Package memory holds in-process implementations of the search ports, used
// when no database is configured.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

// RuleStore serves a fixed rule set, typically read from the config file.
type RuleStore struct {
	mu          sync.RWMutex
	firewall    []entity.FirewallRule
	commissions []entity.CommissionRule
	connections []entity.Connection
}

func NewRuleStore(firewall []entity.FirewallRule, commissions []entity.CommissionRule, connections []entity.Connection) *RuleStore {
	s := &RuleStore{}
	s.Replace(firewall, commissions, connections)
	return s
}

// Replace swaps the whole rule set. Searches already running keep the
// snapshot they read.
func (s *RuleStore) Replace(firewall []entity.FirewallRule, commissions []entity.CommissionRule, connections []entity.Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firewall = slices.Clone(firewall)
	s.commissions = slices.Clone(commissions)
	s.connections = slices.Clone(connections)
}

func (s *RuleStore) ListFirewallRules(ctx context.Context) ([]entity.FirewallRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.firewall), nil
}

func (s *RuleStore) ListCommissionRules(ctx context.Context) ([]entity.CommissionRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.commissions), nil
}

func (s *RuleStore) ListConnections(ctx context.Context) ([]entity.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.connections), nil
}
