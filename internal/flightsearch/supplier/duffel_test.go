package supplier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

const duffelFixture = `{
  "data": {
    "id": "orq_1",
    "offers": [
      {
        "id": "off_1",
        "total_amount": "500.00",
        "base_amount": "420.00",
        "tax_amount": "80.00",
        "total_currency": "USD",
        "expires_at": "2025-03-01T10:00:00Z",
        "owner": {"iata_code": "BA", "name": "British Airways", "logo_symbol_url": "https://logo/BA.svg"},
        "slices": [{
          "origin": {"iata_code": "JFK", "city_name": "New York", "iata_country_code": "US"},
          "destination": {"iata_code": "LHR", "city_name": "London", "iata_country_code": "GB"},
          "duration": "PT7H",
          "fare_brand_name": "Basic",
          "segments": [{
            "id": "seg_1",
            "origin": {"iata_code": "JFK"},
            "destination": {"iata_code": "LHR"},
            "departing_at": "2025-03-10T18:00:00",
            "arriving_at": "2025-03-11T01:00:00",
            "marketing_carrier": {"iata_code": "BA", "name": "British Airways"},
            "operating_carrier": {"iata_code": "BA", "name": "British Airways"},
            "marketing_carrier_flight_number": "178",
            "aircraft": {"name": "Boeing 777"},
            "passengers": [{
              "cabin_class": "economy",
              "fare_basis_code": "YLOW",
              "baggages": [{"type": "checked", "quantity": 1}, {"type": "carry_on", "quantity": 1}]
            }]
          }]
        }]
      },
      {
        "id": "off_2",
        "total_amount": "620.00",
        "base_amount": "520.00",
        "tax_amount": "100.00",
        "total_currency": "USD",
        "owner": {"iata_code": "VS", "name": "Virgin Atlantic"},
        "slices": [{
          "segments": [{
            "id": "seg_2",
            "origin": {"iata_code": "JFK"},
            "destination": {"iata_code": "LHR"},
            "departing_at": "2025-03-10T20:00:00",
            "arriving_at": "2025-03-11T03:30:00",
            "marketing_carrier": {"iata_code": "VS", "name": "Virgin Atlantic"},
            "operating_carrier": {"iata_code": "VS", "name": "Virgin Atlantic"},
            "marketing_carrier_flight_number": "4",
            "passengers": [{"cabin_class": "economy", "fare_basis_code": "QSAVER"}]
          }]
        }]
      },
      {"id": "off_bad", "total_amount": "", "slices": []}
    ]
  }
}`

func TestDuffelClient_SearchSegment(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/air/offer_requests", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("return_offers"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, duffelVersion, r.Header.Get("Duffel-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(duffelFixture))
	}))
	defer srv.Close()

	client := NewDuffelClient(DuffelConfig{BaseURL: srv.URL, AccessToken: "secret"})
	key := TaskKey{RouteIndex: 0, HopIndex: 0, Supplier: entity.SupplierDuffel}
	raw, err := client.SearchSegment(context.Background(), SegmentQuery{
		Key:           key,
		Origin:        "JFK",
		Destination:   "LHR",
		DepartureDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Passengers:    entity.Passengers{Adults: 2, Infants: 1},
		CabinClass:    entity.CabinEconomy,
	})
	require.NoError(t, err)
	assert.Equal(t, key, raw.Key())

	data := gotBody["data"].(map[string]any)
	assert.Len(t, data["passengers"], 3)
	assert.Equal(t, "economy", data["cabin_class"])

	offers, err := Normalize(context.Background(), raw, NormalizeInput{})
	require.NoError(t, err)
	require.Len(t, offers, 2)

	first := offers[0]
	assert.Equal(t, "r0-h0-DUFFEL:off_1", first.ID)
	assert.Equal(t, "orq_1", first.ResponseID)
	assert.Equal(t, "route-0-hop-0", first.RouteID)
	assert.True(t, decimal.NewFromInt(500).Equal(first.TotalAmount))
	assert.True(t, decimal.NewFromInt(420).Equal(first.BaseAmount))
	assert.True(t, first.CommissionAmount.IsZero())
	assert.Equal(t, "https://logo/BA.svg", first.Owner.LogoURL)
	assert.Equal(t, 7*time.Hour, first.Slices[0].Duration)
	require.NotNil(t, first.ExpiresAt)

	seg := first.Segments()[0]
	assert.Equal(t, "Y", seg.FareClassCode)
	assert.Equal(t, 1, seg.CheckedBaggage)
	assert.Equal(t, 1, seg.CabinBaggage)
	assert.Equal(t, "Boeing 777", seg.Aircraft)
	assert.Equal(t, 7*time.Hour, seg.Duration())

	assert.Equal(t, 7*time.Hour+30*time.Minute, offers[1].Slices[0].Duration)
}

func TestDuffelClient_FareFirewall(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(duffelFixture))
	}))
	defer srv.Close()

	client := NewDuffelClient(DuffelConfig{BaseURL: srv.URL})
	raw, err := client.SearchSegment(context.Background(), SegmentQuery{Key: TaskKey{Supplier: entity.SupplierDuffel}})
	require.NoError(t, err)

	offers, err := Normalize(context.Background(), raw, NormalizeInput{Firewall: []entity.FirewallRule{
		{Supplier: entity.SupplierAll, FareClassCode: "Q"},
		{Supplier: entity.SupplierKIU, FareClassCode: "Y"},
	}})
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "r0-h0-DUFFEL:off_1", offers[0].ID)
}

func TestDuffelClient_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		temporary bool
	}{
		{"server_error_is_temporary", http.StatusBadGateway, true},
		{"rate_limited_is_temporary", http.StatusTooManyRequests, true},
		{"bad_request_is_permanent", http.StatusUnprocessableEntity, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := NewDuffelClient(DuffelConfig{BaseURL: srv.URL}).SearchSegment(context.Background(), SegmentQuery{})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSupplierUnavailable)
			assert.Equal(t, tc.temporary, errors.Is(err, ErrTemporary))
		})
	}
}

func TestDuffelPassengers(t *testing.T) {
	t.Parallel()

	got := duffelPassengers(entity.Passengers{Adults: 1, Children: 1, Infants: 1})
	assert.Equal(t, []map[string]string{
		{"type": "adult"}, {"type": "child"}, {"type": "infant_without_seat"},
	}, got)
}
