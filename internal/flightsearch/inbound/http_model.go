package inbound

import "github.com/shopspring/decimal"

type SearchResponse struct {
	TripType        string                  `json:"trip_type"`
	FlightData      []SavedHandleResponse   `json:"flight_data"`
	Itineraries     []ItineraryResponse     `json:"itineraries"`
	AirlinesDetails AirlinesDetailsResponse `json:"airlines_details"`
	Metadata        MetadataResponse        `json:"metadata"`
}

type SavedHandleResponse struct {
	ID          string `json:"id"`
	ItineraryID string `json:"itinerary_id"`
	TotalAmount string `json:"total_amount"`
	Currency    string `json:"currency"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type AirlinesDetailsResponse struct {
	Airlines     []string          `json:"airlines"`
	ExtendedData []AirlineResponse `json:"extended_data"`
}

type MetadataResponse struct {
	TotalResults  int                  `json:"total_results"`
	RoutesPlanned int                  `json:"routes_planned"`
	SupplierCalls int                  `json:"supplier_calls"`
	FailedCalls   []FailedCallResponse `json:"failed_calls"`
	SearchTimeMs  int64                `json:"search_time_ms"`
	CacheHit      bool                 `json:"cache_hit"`
}

type FailedCallResponse struct {
	Supplier   string `json:"supplier"`
	RouteIndex int    `json:"route_index"`
	HopIndex   int    `json:"hop_index"`
	Reason     string `json:"reason"`
}

type ItineraryResponse struct {
	ID          string              `json:"id"`
	RouteIndex  int                 `json:"route_index"`
	Price       PriceResponse       `json:"price"`
	Unpriced    bool                `json:"unpriced"`
	DepartingAt string              `json:"departing_at"`
	ArrivingAt  string              `json:"arriving_at"`
	Duration    DurationResponse    `json:"duration"`
	Stops       int                 `json:"stops"`
	Score       float64             `json:"score"`
	Offers      []OfferResponse     `json:"offers"`
	Legs        []ItineraryResponse `json:"legs,omitempty"`
}

type PriceResponse struct {
	Base       string `json:"base"`
	Tax        string `json:"tax"`
	Commission string `json:"commission"`
	Total      string `json:"total"`
	Currency   string `json:"currency"`
	Formatted  string `json:"formatted"`
}

type OfferResponse struct {
	ID       string          `json:"id"`
	Supplier string          `json:"supplier"`
	Owner    AirlineResponse `json:"owner"`
	Total    string          `json:"total"`
	Currency string          `json:"currency"`
	Unpriced bool            `json:"unpriced"`
	Slices   []SliceResponse `json:"slices"`
}

type SliceResponse struct {
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	Duration      DurationResponse  `json:"duration"`
	FareBrandName string            `json:"fare_brand_name,omitempty"`
	Segments      []SegmentResponse `json:"segments"`
}

type SegmentResponse struct {
	ID               string          `json:"id"`
	Departure        FlightPoint     `json:"departure"`
	Arrival          FlightPoint     `json:"arrival"`
	MarketingCarrier AirlineResponse `json:"marketing_carrier"`
	OperatingCarrier AirlineResponse `json:"operating_carrier"`
	FlightNumber     string          `json:"flight_number"`
	Aircraft         string          `json:"aircraft,omitempty"`
	CabinClass       string          `json:"cabin_class"`
	FareClassCode    string          `json:"fare_class_code,omitempty"`
	Baggage          BaggageResponse `json:"baggage"`
	Invalid          bool            `json:"invalid,omitempty"`
}

type AirlineResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type FlightPoint struct {
	Airport   string `json:"airport"`
	City      string `json:"city,omitempty"`
	Datetime  string `json:"datetime"`
	Timestamp int64  `json:"timestamp"`
}

type DurationResponse struct {
	TotalMinutes int    `json:"total_minutes"`
	Formatted    string `json:"formatted"`
}

type BaggageResponse struct {
	CarryOn int `json:"carry_on"`
	Checked int `json:"checked"`
}

type MultiCityRequest struct {
	Legs                []LegRequest   `json:"legs"`
	Adults              *int           `json:"adults"`
	Children            int            `json:"children"`
	Infants             int            `json:"infants"`
	CabinClass          string         `json:"cabin_class"`
	MaxLayovers         *int           `json:"max_layovers"`
	SelfTransferAllowed *bool          `json:"self_transfer_allowed"`
	Sort                string         `json:"sort"`
	FlightWay           string         `json:"flight_way"`
	Filters             FiltersRequest `json:"filters"`
}

type LegRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

type FiltersRequest struct {
	MinPrice          *decimal.Decimal `json:"min_price"`
	MaxPrice          *decimal.Decimal `json:"max_price"`
	MaxDuration       *int             `json:"max_duration"`
	MinOnwardDuration *int             `json:"min_onward_duration"`
	MaxOnwardDuration *int             `json:"max_onward_duration"`
	MaxStops          *int             `json:"max_stops"`
	MinDepartureTime  *float64         `json:"min_departure_time"`
	MaxDepartureTime  *float64         `json:"max_departure_time"`
	MinArrivalTime    *float64         `json:"min_arrival_time"`
	MaxArrivalTime    *float64         `json:"max_arrival_time"`
	CabinBaggage      *int             `json:"cabin_baggage"`
	CheckedBaggage    *int             `json:"checked_baggage"`
	Airlines          []string         `json:"airlines"`
}
