package supplier

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

const amadeusMaxOffers = 50

var amadeusCabins = map[entity.CabinClass]string{
	entity.CabinEconomy:        "ECONOMY",
	entity.CabinPremiumEconomy: "PREMIUM_ECONOMY",
	entity.CabinBusiness:       "BUSINESS",
	entity.CabinFirst:          "FIRST",
}

type AmadeusConfig struct {
	BaseURL     string
	AccessToken string
	Currency    string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type AmadeusClient struct {
	baseURL  string
	token    string
	currency string
	hc       *http.Client
}

func NewAmadeusClient(cfg AmadeusConfig) *AmadeusClient {
	currency := cfg.Currency
	if currency == "" {
		currency = "EUR"
	}
	return &AmadeusClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.AccessToken,
		currency: currency,
		hc:       httpClient(cfg.HTTPClient, cfg.Timeout),
	}
}

func (a *AmadeusClient) ID() entity.SupplierID {
	return entity.SupplierAmadeus
}

type amadeusEndpoint struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal"`
	At       string `json:"at"`
}

type amadeusSegment struct {
	ID          string          `json:"id"`
	Departure   amadeusEndpoint `json:"departure"`
	Arrival     amadeusEndpoint `json:"arrival"`
	CarrierCode string          `json:"carrierCode"`
	Number      string          `json:"number"`
	Aircraft    struct {
		Code string `json:"code"`
	} `json:"aircraft"`
	Operating *struct {
		CarrierCode string `json:"carrierCode"`
	} `json:"operating"`
	Duration string `json:"duration"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"`
	Segments []amadeusSegment `json:"segments"`
}

type amadeusBags struct {
	Quantity int `json:"quantity"`
}

type amadeusFareDetail struct {
	SegmentID           string       `json:"segmentId"`
	Cabin               string       `json:"cabin"`
	FareBasis           string       `json:"fareBasis"`
	BrandedFare         string       `json:"brandedFare"`
	Class               string       `json:"class"`
	IncludedCheckedBags *amadeusBags `json:"includedCheckedBags"`
	IncludedCabinBags   *amadeusBags `json:"includedCabinBags"`
}

type amadeusOffer struct {
	ID                     string             `json:"id"`
	LastTicketingDate      string             `json:"lastTicketingDate"`
	Itineraries            []amadeusItinerary `json:"itineraries"`
	ValidatingAirlineCodes []string           `json:"validatingAirlineCodes"`
	Price                  struct {
		Currency   string `json:"currency"`
		Total      string `json:"total"`
		Base       string `json:"base"`
		GrandTotal string `json:"grandTotal"`
	} `json:"price"`
	TravelerPricings []struct {
		TravelerType         string              `json:"travelerType"`
		FareDetailsBySegment []amadeusFareDetail `json:"fareDetailsBySegment"`
	} `json:"travelerPricings"`
}

type amadeusDictionaries struct {
	Carriers  map[string]string `json:"carriers"`
	Aircraft  map[string]string `json:"aircraft"`
	Locations map[string]struct {
		CityCode    string `json:"cityCode"`
		CountryCode string `json:"countryCode"`
	} `json:"locations"`
}

type amadeusDateRange struct {
	Date string `json:"date"`
}

type amadeusOriginDestination struct {
	ID                      string           `json:"id"`
	OriginLocationCode      string           `json:"originLocationCode"`
	DestinationLocationCode string           `json:"destinationLocationCode"`
	DepartureDateTimeRange  amadeusDateRange `json:"departureDateTimeRange"`
}

type amadeusCabinRestriction struct {
	Cabin                string   `json:"cabin"`
	Coverage             string   `json:"coverage"`
	OriginDestinationIDs []string `json:"originDestinationIds"`
}

type amadeusTraveler struct {
	ID                string   `json:"id"`
	TravelerType      string   `json:"travelerType"`
	AssociatedAdultID string   `json:"associatedAdultId,omitempty"`
	FareOptions       []string `json:"fareOptions"`
}

type amadeusSearchRequest struct {
	CurrencyCode       string                     `json:"currencyCode"`
	OriginDestinations []amadeusOriginDestination `json:"originDestinations"`
	Travelers          []amadeusTraveler          `json:"travelers"`
	Sources            []string                   `json:"sources"`
	SearchCriteria     struct {
		MaxFlightOffers int `json:"maxFlightOffers"`
		FlightFilters   struct {
			CabinRestrictions     []amadeusCabinRestriction `json:"cabinRestrictions"`
			ConnectionRestriction struct {
				MaxNumberOfConnections int `json:"maxNumberOfConnections"`
			} `json:"connectionRestriction"`
		} `json:"flightFilters"`
	} `json:"searchCriteria"`
}

// AmadeusResult is the flight-offers search answer for one hop, with the
// dictionaries needed to resolve carrier and aircraft codes.
type AmadeusResult struct {
	key          TaskKey
	Offers       []amadeusOffer
	Dictionaries amadeusDictionaries
}

func (r *AmadeusResult) Key() TaskKey                { return r.key }
func (r *AmadeusResult) Supplier() entity.SupplierID { return entity.SupplierAmadeus }

func (a *AmadeusClient) SearchSegment(ctx context.Context, q SegmentQuery) (RawResult, error) {
	cabin, ok := amadeusCabins[q.CabinClass]
	if !ok {
		cabin = amadeusCabins[entity.CabinEconomy]
	}

	date := q.DepartureDate.Format("2006-01-02")
	req := amadeusSearchRequest{
		CurrencyCode: a.currency,
		OriginDestinations: []amadeusOriginDestination{{
			ID:                      "1",
			OriginLocationCode:      q.Origin,
			DestinationLocationCode: q.Destination,
			DepartureDateTimeRange:  amadeusDateRange{Date: date},
		}},
		Travelers: amadeusTravelers(q.Passengers),
		Sources:   []string{"GDS"},
	}
	req.SearchCriteria.MaxFlightOffers = amadeusMaxOffers
	req.SearchCriteria.FlightFilters.CabinRestrictions = []amadeusCabinRestriction{{
		Cabin:                cabin,
		Coverage:             "MOST_SEGMENTS",
		OriginDestinationIDs: []string{"1"},
	}}
	// Connections are planned by routing; each hop is asked for non-stop flights.
	req.SearchCriteria.FlightFilters.ConnectionRestriction.MaxNumberOfConnections = 0

	var resp struct {
		Data         []amadeusOffer      `json:"data"`
		Dictionaries amadeusDictionaries `json:"dictionaries"`
	}
	headers := map[string]string{"Authorization": "Bearer " + a.token}
	if err := postJSON(ctx, a.hc, a.baseURL+"/v2/shopping/flight-offers", headers, req, &resp); err != nil {
		return nil, fmt.Errorf("amadeus flight offers: %w", err)
	}

	return &AmadeusResult{key: q.Key, Offers: resp.Data, Dictionaries: resp.Dictionaries}, nil
}

// amadeusTravelers numbers adults first so every held infant can point at an
// adult through associatedAdultId.
func amadeusTravelers(p entity.Passengers) []amadeusTraveler {
	adults := max(p.Adults, 1)
	out := make([]amadeusTraveler, 0, adults+p.Children+p.Infants)
	add := func(typ, adult string) {
		out = append(out, amadeusTraveler{
			ID:                strconv.Itoa(len(out) + 1),
			TravelerType:      typ,
			AssociatedAdultID: adult,
			FareOptions:       []string{"STANDARD"},
		})
	}
	for i := 0; i < adults; i++ {
		add("ADULT", "")
	}
	for i := 0; i < p.Children; i++ {
		add("CHILD", "")
	}
	for i := 0; i < p.Infants; i++ {
		add("HELD_INFANT", strconv.Itoa(i%adults+1))
	}
	return out
}
