// Package usecase runs flight searches: it plans candidate routes, fans the
// hops out to the eligible suppliers, stitches and prices the answers, and
// ranks what is left.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/cache"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/ports"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/routing"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/supplier"
)

// ErrConfigurationMissing is returned when the rules a search is evaluated
// against cannot be loaded.
var ErrConfigurationMissing = errors.New("search configuration missing")

const (
	SingleRouteCap = 60
	MultiCityCap   = 30
	// MaxPassengers is the largest party, infants included, a supplier accepts
	// in one request.
	MaxPassengers = 9
)

// NormalizeFunc maps a raw supplier answer into offers.
type NormalizeFunc func(ctx context.Context, raw supplier.RawResult, in supplier.NormalizeInput) ([]entity.Offer, error)

type Dependency struct {
	Suppliers       []supplier.Client
	Rules           ports.RuleStore
	Offers          ports.OfferStore
	Events          ports.EventPublisher
	Planner         *routing.Planner
	Cache           *cache.Cache[*SearchOutput]
	CacheTTL        time.Duration
	SupplierTimeout time.Duration
	SearchTimeout   time.Duration
	MaxConcurrency  int
	// Stagger delays the n-th call to a supplier by n times its value.
	Stagger map[entity.SupplierID]time.Duration
	// Currency, when set, is the only currency offers are accepted in.
	Currency  string
	Ranking   RankConfig
	Normalize NormalizeFunc
}

type Usecase struct {
	suppliers       map[entity.SupplierID]supplier.Client
	confirmers      map[entity.SupplierID]supplier.PriceConfirmer
	supplierIDs     []entity.SupplierID
	rules           ports.RuleStore
	offers          ports.OfferStore
	events          ports.EventPublisher
	planner         *routing.Planner
	cache           *cache.Cache[*SearchOutput]
	cacheTTL        time.Duration
	supplierTimeout time.Duration
	searchTimeout   time.Duration
	maxConcurrency  int
	stagger         map[entity.SupplierID]time.Duration
	currency        string
	ranking         RankConfig
	normalize       NormalizeFunc
}

func New(dep Dependency) *Usecase {
	u := &Usecase{
		suppliers:       make(map[entity.SupplierID]supplier.Client, len(dep.Suppliers)),
		confirmers:      make(map[entity.SupplierID]supplier.PriceConfirmer, len(dep.Suppliers)),
		rules:           dep.Rules,
		offers:          dep.Offers,
		events:          dep.Events,
		planner:         dep.Planner,
		cache:           dep.Cache,
		cacheTTL:        dep.CacheTTL,
		supplierTimeout: dep.SupplierTimeout,
		searchTimeout:   dep.SearchTimeout,
		maxConcurrency:  dep.MaxConcurrency,
		stagger:         dep.Stagger,
		currency:        strings.ToUpper(strings.TrimSpace(dep.Currency)),
		normalize:       dep.Normalize,
	}
	for _, c := range dep.Suppliers {
		if _, dup := u.suppliers[c.ID()]; dup {
			continue
		}
		u.suppliers[c.ID()] = c
		u.supplierIDs = append(u.supplierIDs, c.ID())
		if pc := supplier.ConfirmerFor(c); pc != nil {
			u.confirmers[c.ID()] = pc
		}
	}
	if u.planner == nil {
		u.planner = routing.NewPlanner(routing.DefaultMaxLayovers, routing.DefaultConnectionWindow)
	}
	if u.supplierTimeout <= 0 {
		u.supplierTimeout = 10 * time.Second
	}
	if u.maxConcurrency <= 0 {
		u.maxConcurrency = 16
	}
	if u.normalize == nil {
		u.normalize = supplier.Normalize
	}
	ranking := dep.Ranking
	if ranking.Currency == "" {
		ranking.Currency = u.currency
	}
	u.ranking = ranking.withDefaults()
	return u
}

// ruleSet is the configuration snapshot of one request, shared read-only by
// every task of the request.
type ruleSet struct {
	firewall    []entity.FirewallRule
	commissions map[entity.SupplierID]entity.CommissionRule
	connections []entity.Connection
}

func (u *Usecase) loadRules(ctx context.Context) (*ruleSet, error) {
	if u.rules == nil {
		return nil, ErrConfigurationMissing
	}
	firewall, err := u.rules.ListFirewallRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigurationMissing, err)
	}
	commissions, err := u.rules.ListCommissionRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigurationMissing, err)
	}
	connections, err := u.rules.ListConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigurationMissing, err)
	}
	return &ruleSet{
		firewall:    firewall,
		commissions: commissionIndex(commissions),
		connections: connections,
	}, nil
}
