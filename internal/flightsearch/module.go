package flightsearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/cache"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/inbound"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/outbound/kafka"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/outbound/memory"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/outbound/postgres"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/ports"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/routing"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/supplier"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/usecase"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgpostgres"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkguid"
)

const prefix = "modules.flight-search."

type Dependency struct {
	Config pkgconfig.Config
	Router *pkgrouter.Router
	UUID   pkguid.StringID
}

// Module owns the resources of the flight search module that must be
// released on shutdown.
type Module struct {
	pool      *pgxpool.Pool
	publisher *kafka.Publisher
	cache     *cache.Cache[*usecase.SearchOutput]
}

func New(ctx context.Context, dep Dependency) (*Module, error) {
	m := &Module{}
	cfg := dep.Config

	rules, offers, err := m.initStores(ctx, cfg, dep.UUID)
	if err != nil {
		return nil, multierr.Append(err, m.Close(ctx))
	}

	var events ports.EventPublisher
	if cfg.GetBool(prefix + "kafka.enabled") {
		m.publisher = kafka.NewPublisher(kafka.Config{
			Brokers:      cfg.GetStringSlice(prefix + "kafka.brokers"),
			Topic:        cfg.GetString(prefix + "kafka.topic"),
			WriteTimeout: cfg.GetDuration(prefix + "kafka.write_timeout"),
			BatchTimeout: cfg.GetDuration(prefix + "kafka.batch_timeout"),
		})
		events = m.publisher
	}

	cacheTTL := 60 * time.Second
	if ttl := cfg.GetDuration(prefix + "cache.ttl"); ttl > 0 {
		cacheTTL = ttl
	}
	m.cache = cache.New(usecase.CloneSearchOutput, uint64(max(cfg.GetInt(prefix+"cache.capacity"), 0)))
	m.cache.Start()

	clients, stagger := buildSuppliers(cfg)

	uc := usecase.New(usecase.Dependency{
		Suppliers: clients,
		Rules:     rules,
		Offers:    offers,
		Events:    events,
		Planner: routing.NewPlanner(cfg.GetInt(prefix+"planner.max_layovers"), entity.SearchManagement{
			MinConnectionTime: cfg.GetDuration(prefix + "planner.min_connection_time"),
			MaxConnectionTime: cfg.GetDuration(prefix + "planner.max_connection_time"),
		}),
		Cache:           m.cache,
		CacheTTL:        cacheTTL,
		SupplierTimeout: cfg.GetDuration(prefix + "search.supplier_timeout"),
		SearchTimeout:   cfg.GetDuration(prefix + "search.timeout"),
		MaxConcurrency:  cfg.GetInt(prefix + "search.max_concurrency"),
		Stagger:         stagger,
		Currency:        cfg.GetString(prefix + "search.currency"),
		Ranking: usecase.RankConfig{
			PriceWeight:    cfg.GetFloat64(prefix + "ranking.price_weight"),
			DurationWeight: cfg.GetFloat64(prefix + "ranking.duration_weight"),
			PriceRef:       cfg.GetFloat64(prefix + "ranking.price_ref"),
			DurationRef:    cfg.GetDuration(prefix + "ranking.duration_ref"),
		},
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return m, nil
}

func (m *Module) Close(context.Context) error {
	var err error
	if m.cache != nil {
		m.cache.Stop()
	}
	if m.publisher != nil {
		err = multierr.Append(err, m.publisher.Close())
	}
	if m.pool != nil {
		m.pool.Close()
	}
	return err
}

// Ping reports whether the database behind the module, if any, is reachable.
func (m *Module) Ping(ctx context.Context) error {
	if m.pool == nil {
		return nil
	}
	return m.pool.Ping(ctx)
}

func (m *Module) initStores(ctx context.Context, cfg pkgconfig.Config, uuid pkguid.StringID) (ports.RuleStore, ports.OfferStore, error) {
	if strings.ToLower(cfg.GetString(prefix+"store.driver")) != "postgres" {
		rules, err := staticRules(cfg)
		if err != nil {
			return nil, nil, err
		}
		return rules, memory.NewOfferStore(uuid), nil
	}

	pool, err := pkgpostgres.Connect(ctx, cfg.GetString(prefix+"store.postgres.dsn"), pkgpostgres.Options{
		MaxConns: int32(cfg.GetInt(prefix + "store.postgres.max_conns")),
	})
	if err != nil {
		return nil, nil, err
	}
	m.pool = pool

	if cfg.GetBool(prefix + "store.postgres.migrate") {
		if err := pkgpostgres.Migrate(ctx, pool, postgres.Migrations, postgres.MigrationsDir); err != nil {
			return nil, nil, err
		}
	}
	return postgres.NewRuleStore(pool), postgres.NewOfferStore(pool, uuid), nil
}

type supplierConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	Currency    string        `mapstructure:"currency"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	AgentSine   string        `mapstructure:"agent_sine"`
	TerminalID  string        `mapstructure:"terminal_id"`
	ISOCountry  string        `mapstructure:"iso_country"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   time.Duration `mapstructure:"rate_limit"`
	Stagger     time.Duration `mapstructure:"stagger"`
}

// buildSuppliers creates every enabled supplier client wrapped in rate
// limiting, metrics and retries, plus the per-supplier call stagger.
func buildSuppliers(cfg pkgconfig.Config) ([]supplier.Client, map[entity.SupplierID]time.Duration) {
	maxRetries := cfg.GetInt(prefix + "search.max_retries")
	backoff := cfg.GetDuration(prefix + "search.retry_backoff")

	var clients []supplier.Client
	stagger := map[entity.SupplierID]time.Duration{}
	add := func(c supplier.Client, sc supplierConfig) {
		wrapped := c
		if sc.RateLimit > 0 {
			wrapped = supplier.NewRateLimitedClient(wrapped, sc.RateLimit)
		}
		wrapped = supplier.NewInstrumentedClient(wrapped)
		wrapped = supplier.NewRetryingClient(wrapped, maxRetries, backoff)
		clients = append(clients, wrapped)
		if sc.Stagger > 0 {
			stagger[c.ID()] = sc.Stagger
		}
	}

	if sc := readSupplier(cfg, "duffel"); sc.Enabled {
		add(supplier.NewDuffelClient(supplier.DuffelConfig{
			BaseURL:     sc.BaseURL,
			AccessToken: sc.AccessToken,
			Timeout:     sc.Timeout,
		}), sc)
	}
	if sc := readSupplier(cfg, "amadeus"); sc.Enabled {
		if sc.Currency == "" {
			sc.Currency = cfg.GetString(prefix + "search.currency")
		}
		add(supplier.NewAmadeusClient(supplier.AmadeusConfig{
			BaseURL:     sc.BaseURL,
			AccessToken: sc.AccessToken,
			Currency:    sc.Currency,
			Timeout:     sc.Timeout,
		}), sc)
	}
	if sc := readSupplier(cfg, "kiu"); sc.Enabled {
		add(supplier.NewKIUClient(supplier.KIUConfig{
			BaseURL:    sc.BaseURL,
			User:       sc.User,
			Password:   sc.Password,
			AgentSine:  sc.AgentSine,
			TerminalID: sc.TerminalID,
			ISOCountry: sc.ISOCountry,
			Timeout:    sc.Timeout,
		}), sc)
	}
	return clients, stagger
}

func readSupplier(cfg pkgconfig.Config, name string) supplierConfig {
	key := prefix + "suppliers." + name + "."
	return supplierConfig{
		Enabled:     cfg.GetBool(key + "enabled"),
		BaseURL:     cfg.GetString(key + "base_url"),
		AccessToken: cfg.GetString(key + "access_token"),
		Currency:    cfg.GetString(key + "currency"),
		User:        cfg.GetString(key + "user"),
		Password:    cfg.GetString(key + "password"),
		AgentSine:   cfg.GetString(key + "agent_sine"),
		TerminalID:  cfg.GetString(key + "terminal_id"),
		ISOCountry:  cfg.GetString(key + "iso_country"),
		Timeout:     cfg.GetDuration(key + "timeout"),
		RateLimit:   cfg.GetDuration(key + "rate_limit"),
		Stagger:     cfg.GetDuration(key + "stagger"),
	}
}

type firewallConfig struct {
	ID            string `mapstructure:"id"`
	Title         string `mapstructure:"title"`
	Supplier      string `mapstructure:"supplier"`
	From          string `mapstructure:"from"`
	To            string `mapstructure:"to"`
	FareClassCode string `mapstructure:"fare_class_code"`
	FlightNumber  string `mapstructure:"flight_number"`
}

type commissionConfig struct {
	ID       string `mapstructure:"id"`
	Supplier string `mapstructure:"supplier"`
	FeeType  string `mapstructure:"fee_type"`
	Amount   string `mapstructure:"amount"`
}

type connectionConfig struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// staticRules reads the rule set of the memory store from the config file.
func staticRules(cfg pkgconfig.Config) (*memory.RuleStore, error) {
	var (
		firewallRaw    []firewallConfig
		commissionsRaw []commissionConfig
		connectionsRaw []connectionConfig
	)
	if err := cfg.UnmarshalKey(prefix+"rules.firewall", &firewallRaw); err != nil {
		return nil, fmt.Errorf("read firewall rules: %w", err)
	}
	if err := cfg.UnmarshalKey(prefix+"rules.commissions", &commissionsRaw); err != nil {
		return nil, fmt.Errorf("read commission rules: %w", err)
	}
	if err := cfg.UnmarshalKey(prefix+"rules.connections", &connectionsRaw); err != nil {
		return nil, fmt.Errorf("read connections: %w", err)
	}

	firewall := make([]entity.FirewallRule, 0, len(firewallRaw))
	for _, r := range firewallRaw {
		firewall = append(firewall, entity.FirewallRule{
			ID:            r.ID,
			Title:         r.Title,
			Supplier:      entity.SupplierID(strings.ToUpper(r.Supplier)),
			From:          strings.ToUpper(r.From),
			To:            strings.ToUpper(r.To),
			FareClassCode: r.FareClassCode,
			FlightNumber:  r.FlightNumber,
		})
	}

	commissions := make([]entity.CommissionRule, 0, len(commissionsRaw))
	for _, r := range commissionsRaw {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return nil, fmt.Errorf("commission rule %s amount %q: %w", r.ID, r.Amount, err)
		}
		commissions = append(commissions, entity.CommissionRule{
			ID:       r.ID,
			Supplier: entity.SupplierID(strings.ToUpper(r.Supplier)),
			FeeType:  entity.FeeType(strings.ToUpper(r.FeeType)),
			Amount:   amount,
		})
	}

	connections := make([]entity.Connection, 0, len(connectionsRaw))
	for _, c := range connectionsRaw {
		connections = append(connections, entity.Connection{From: strings.ToUpper(c.From), To: strings.ToUpper(c.To)})
	}

	return memory.NewRuleStore(firewall, commissions, connections), nil
}
