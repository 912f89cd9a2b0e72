package supplier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

const duffelVersion = "v2"

type DuffelConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type DuffelClient struct {
	baseURL string
	token   string
	hc      *http.Client
}

func NewDuffelClient(cfg DuffelConfig) *DuffelClient {
	return &DuffelClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		hc:      httpClient(cfg.HTTPClient, cfg.Timeout),
	}
}

func (d *DuffelClient) ID() entity.SupplierID {
	return entity.SupplierDuffel
}

type duffelPlace struct {
	IATACode        string `json:"iata_code"`
	CityName        string `json:"city_name"`
	IATACountryCode string `json:"iata_country_code"`
}

type duffelCarrier struct {
	IATACode      string `json:"iata_code"`
	Name          string `json:"name"`
	LogoSymbolURL string `json:"logo_symbol_url"`
}

type duffelBaggage struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

type duffelSegmentPassenger struct {
	CabinClass    string          `json:"cabin_class"`
	FareBasisCode string          `json:"fare_basis_code"`
	Baggages      []duffelBaggage `json:"baggages"`
}

type duffelSegment struct {
	ID                           string                   `json:"id"`
	Origin                       duffelPlace              `json:"origin"`
	Destination                  duffelPlace              `json:"destination"`
	DepartingAt                  string                   `json:"departing_at"`
	ArrivingAt                   string                   `json:"arriving_at"`
	Duration                     string                   `json:"duration"`
	MarketingCarrier             duffelCarrier            `json:"marketing_carrier"`
	OperatingCarrier             duffelCarrier            `json:"operating_carrier"`
	MarketingCarrierFlightNumber string                   `json:"marketing_carrier_flight_number"`
	OperatingCarrierFlightNumber string                   `json:"operating_carrier_flight_number"`
	Aircraft                     *duffelAircraft          `json:"aircraft"`
	Passengers                   []duffelSegmentPassenger `json:"passengers"`
}

type duffelAircraft struct {
	Name string `json:"name"`
}

type duffelSlice struct {
	Origin        duffelPlace     `json:"origin"`
	Destination   duffelPlace     `json:"destination"`
	Duration      string          `json:"duration"`
	FareBrandName string          `json:"fare_brand_name"`
	Segments      []duffelSegment `json:"segments"`
}

type duffelOffer struct {
	ID            string        `json:"id"`
	TotalAmount   string        `json:"total_amount"`
	TotalCurrency string        `json:"total_currency"`
	BaseAmount    string        `json:"base_amount"`
	TaxAmount     string        `json:"tax_amount"`
	ExpiresAt     string        `json:"expires_at"`
	Owner         duffelCarrier `json:"owner"`
	Slices        []duffelSlice `json:"slices"`
}

// DuffelResult is the offer request answer for one hop.
type DuffelResult struct {
	key        TaskKey
	ResponseID string
	Offers     []duffelOffer
}

func (r *DuffelResult) Key() TaskKey                { return r.key }
func (r *DuffelResult) Supplier() entity.SupplierID { return entity.SupplierDuffel }

func (d *DuffelClient) SearchSegment(ctx context.Context, q SegmentQuery) (RawResult, error) {
	req := map[string]any{
		"data": map[string]any{
			"slices": []map[string]string{{
				"origin":         q.Origin,
				"destination":    q.Destination,
				"departure_date": q.DepartureDate.Format("2006-01-02"),
			}},
			"passengers":      duffelPassengers(q.Passengers),
			"cabin_class":     string(q.CabinClass),
			"max_connections": 0,
		},
	}

	var resp struct {
		Data struct {
			ID     string        `json:"id"`
			Offers []duffelOffer `json:"offers"`
		} `json:"data"`
	}
	headers := map[string]string{
		"Authorization":  "Bearer " + d.token,
		"Duffel-Version": duffelVersion,
	}
	url := d.baseURL + "/air/offer_requests?return_offers=true"
	if err := postJSON(ctx, d.hc, url, headers, req, &resp); err != nil {
		return nil, fmt.Errorf("duffel offer request: %w", err)
	}

	return &DuffelResult{key: q.Key, ResponseID: resp.Data.ID, Offers: resp.Data.Offers}, nil
}

func duffelPassengers(p entity.Passengers) []map[string]string {
	out := make([]map[string]string, 0, p.Total())
	add := func(n int, typ string) {
		for i := 0; i < n; i++ {
			out = append(out, map[string]string{"type": typ})
		}
	}
	add(max(p.Adults, 1), "adult")
	add(p.Children, "child")
	add(p.Infants, "infant_without_seat")
	return out
}
