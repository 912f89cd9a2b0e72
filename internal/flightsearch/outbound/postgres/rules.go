package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

type RuleStore struct {
	db DB
}

func NewRuleStore(db DB) *RuleStore {
	return &RuleStore{db: db}
}

func (s *RuleStore) ListFirewallRules(ctx context.Context) ([]entity.FirewallRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, supplier, from_code, to_code, fare_class_code, flight_number
		FROM firewall_rules
		WHERE enabled
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query firewall rules: %w", err)
	}
	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.FirewallRule, error) {
		var r firewallRow
		err := row.Scan(&r.ID, &r.Title, &r.Supplier, &r.From, &r.To, &r.FareClassCode, &r.FlightNumber)
		return r.toEntity(), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan firewall rules: %w", err)
	}
	return rules, nil
}

// ListCommissionRules returns rules by ascending priority, so the first rule
// of a supplier is the one that applies.
func (s *RuleStore) ListCommissionRules(ctx context.Context) ([]entity.CommissionRule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, supplier, fee_type, amount::text
		FROM commission_rules
		WHERE enabled
		ORDER BY priority, created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query commission rules: %w", err)
	}
	rules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.CommissionRule, error) {
		var r commissionRow
		if err := row.Scan(&r.ID, &r.Supplier, &r.FeeType, &r.Amount); err != nil {
			return entity.CommissionRule{}, err
		}
		return r.toEntity()
	})
	if err != nil {
		return nil, fmt.Errorf("scan commission rules: %w", err)
	}
	return rules, nil
}

func (s *RuleStore) ListConnections(ctx context.Context) ([]entity.Connection, error) {
	rows, err := s.db.Query(ctx, `SELECT from_code, to_code FROM route_connections ORDER BY from_code, to_code`)
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}
	conns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Connection, error) {
		var c entity.Connection
		err := row.Scan(&c.From, &c.To)
		c.From, c.To = strings.ToUpper(c.From), strings.ToUpper(c.To)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan connections: %w", err)
	}
	return conns, nil
}

type firewallRow struct {
	ID            string
	Title         string
	Supplier      string
	From          string
	To            string
	FareClassCode string
	FlightNumber  string
}

func (r firewallRow) toEntity() entity.FirewallRule {
	return entity.FirewallRule{
		ID:            r.ID,
		Title:         r.Title,
		Supplier:      entity.SupplierID(strings.ToUpper(strings.TrimSpace(r.Supplier))),
		From:          strings.ToUpper(strings.TrimSpace(r.From)),
		To:            strings.ToUpper(strings.TrimSpace(r.To)),
		FareClassCode: strings.TrimSpace(r.FareClassCode),
		FlightNumber:  strings.TrimSpace(r.FlightNumber),
	}
}

type commissionRow struct {
	ID       string
	Supplier string
	FeeType  string
	Amount   string
}

func (r commissionRow) toEntity() (entity.CommissionRule, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return entity.CommissionRule{}, fmt.Errorf("commission rule %s amount %q: %w", r.ID, r.Amount, err)
	}
	return entity.CommissionRule{
		ID:       r.ID,
		Supplier: entity.SupplierID(strings.ToUpper(strings.TrimSpace(r.Supplier))),
		FeeType:  entity.FeeType(strings.ToUpper(strings.TrimSpace(r.FeeType))),
		Amount:   amount,
	}, nil
}
