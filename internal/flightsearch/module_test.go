package flightsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkguid"
)

const moduleConfig = `
modules:
  flight-search:
    enabled: true
    store:
      driver: memory
    suppliers:
      duffel:
        enabled: %s
        base_url: http://duffel.local
        access_token: token
      amadeus:
        enabled: %s
        base_url: http://amadeus.local
        currency: EUR
        stagger: 50ms
      kiu:
        enabled: false
    rules:
      connections:
        - { from: jfk, to: dub }
        - { from: dub, to: lhr }
      firewall:
        - { id: fw-1, supplier: kiusys, from: jfk, to: lhr }
      commissions:
        - { id: cm-1, supplier: duffel, fee_type: fixed, amount: "%s" }
`

func loadConfig(t *testing.T, duffel, amadeus, amount string) pkgconfig.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(fmt.Sprintf(moduleConfig, duffel, amadeus, amount))
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := pkgconfig.NewViper(path)
	require.NoError(t, err)
	return cfg
}

func TestStaticRules(t *testing.T) {
	t.Parallel()

	rules, err := staticRules(loadConfig(t, "false", "false", "12.50"))
	require.NoError(t, err)

	ctx := context.Background()
	conns, err := rules.ListConnections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entity.Connection{{From: "JFK", To: "DUB"}, {From: "DUB", To: "LHR"}}, conns)

	firewall, err := rules.ListFirewallRules(ctx)
	require.NoError(t, err)
	require.Len(t, firewall, 1)
	assert.Equal(t, entity.SupplierKIU, firewall[0].Supplier)
	assert.Equal(t, "JFKLHR", firewall[0].Pair())

	commissions, err := rules.ListCommissionRules(ctx)
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	assert.Equal(t, entity.SupplierDuffel, commissions[0].Supplier)
	assert.Equal(t, entity.FeeTypeFixed, commissions[0].FeeType)
	assert.True(t, decimal.RequireFromString("12.5").Equal(commissions[0].Amount))
}

func TestStaticRules_BadAmount(t *testing.T) {
	t.Parallel()

	_, err := staticRules(loadConfig(t, "false", "false", "ten"))
	assert.ErrorContains(t, err, "cm-1")
}

func TestBuildSuppliers(t *testing.T) {
	t.Parallel()

	clients, stagger := buildSuppliers(loadConfig(t, "true", "true", "1"))
	require.Len(t, clients, 2)
	assert.Equal(t, entity.SupplierDuffel, clients[0].ID())
	assert.Equal(t, entity.SupplierAmadeus, clients[1].ID())
	assert.Equal(t, map[entity.SupplierID]time.Duration{entity.SupplierAmadeus: 50 * time.Millisecond}, stagger)

	clients, stagger = buildSuppliers(loadConfig(t, "false", "false", "1"))
	assert.Empty(t, clients)
	assert.Empty(t, stagger)
}

func TestNew_ServesFlights(t *testing.T) {
	t.Parallel()

	router := pkgrouter.NewRouter(pkguid.NewUUID())
	m, err := New(context.Background(), Dependency{
		Config: loadConfig(t, "false", "false", "1"),
		Router: router,
		UUID:   pkguid.NewUUID(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, m.Close(context.Background())) })
	assert.NoError(t, m.Ping(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/flights?origin=JFK&destination=LHR&departureDate=2030-01-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Metadata struct {
				TotalResults  int `json:"total_results"`
				SupplierCalls int `json:"supplier_calls"`
			} `json:"metadata"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Zero(t, body.Data.Metadata.TotalResults)
	assert.Zero(t, body.Data.Metadata.SupplierCalls)
}
