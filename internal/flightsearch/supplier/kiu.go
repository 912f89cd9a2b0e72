package supplier

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

const kiuTimeLayout = "2006-01-02 15:04:05"

// kiuClasses lists, per cabin, the booking class codes KIU sells in it.
var kiuClasses = map[entity.CabinClass][]string{
	entity.CabinEconomy:        {"Y", "B", "M", "H", "K", "L", "Q", "T", "V", "X", "S", "N", "O"},
	entity.CabinPremiumEconomy: {"W", "E"},
	entity.CabinBusiness:       {"J", "C", "D", "I", "Z"},
	entity.CabinFirst:          {"F", "A", "P"},
}

var kiuCabinNames = map[entity.CabinClass]string{
	entity.CabinEconomy:        "Economy",
	entity.CabinPremiumEconomy: "Premium",
	entity.CabinBusiness:       "Business",
	entity.CabinFirst:          "First",
}

type KIUConfig struct {
	BaseURL    string
	User       string
	Password   string
	AgentSine  string
	TerminalID string
	ISOCountry string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type KIUClient struct {
	baseURL string
	cfg     KIUConfig
	hc      *http.Client
}

func NewKIUClient(cfg KIUConfig) *KIUClient {
	return &KIUClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		hc:      httpClient(cfg.HTTPClient, cfg.Timeout),
	}
}

func (k *KIUClient) ID() entity.SupplierID {
	return entity.SupplierKIU
}

type kiuPOS struct {
	Source struct {
		AgentSine  string `xml:"AgentSine,attr"`
		TerminalID string `xml:"TerminalID,attr"`
		ISOCountry string `xml:"ISOCountry,attr"`
	} `xml:"Source"`
}

type kiuLocation struct {
	LocationCode string `xml:"LocationCode,attr"`
}

type kiuPassengerQuantity struct {
	Code     string `xml:"Code,attr"`
	Quantity int    `xml:"Quantity,attr"`
}

type kiuTravelerSummary struct {
	Passengers []kiuPassengerQuantity `xml:"AirTravelerAvail>PassengerTypeQuantity"`
}

type kiuRequestHeader struct {
	EchoToken     string `xml:"EchoToken,attr"`
	TimeStamp     string `xml:"TimeStamp,attr"`
	Target        string `xml:"Target,attr"`
	Version       string `xml:"Version,attr"`
	SequenceNmbr  string `xml:"SequenceNmbr,attr"`
	PrimaryLangID string `xml:"PrimaryLangID,attr"`
}

type kiuAvailRequest struct {
	XMLName           xml.Name `xml:"KIU_AirAvailRQ"`
	kiuRequestHeader
	DirectFlightsOnly bool   `xml:"DirectFlightsOnly,attr"`
	MaxResponses      int    `xml:"MaxResponses,attr"`
	POS               kiuPOS `xml:"POS"`
	OriginDestination struct {
		DepartureDateTime   string      `xml:"DepartureDateTime"`
		OriginLocation      kiuLocation `xml:"OriginLocation"`
		DestinationLocation kiuLocation `xml:"DestinationLocation"`
	} `xml:"OriginDestinationInformation"`
	CabinPref struct {
		Cabin string `xml:"Cabin,attr"`
	} `xml:"TravelPreferences>CabinPref"`
	TravelerInfoSummary kiuTravelerSummary `xml:"TravelerInfoSummary"`
}

type kiuBookingClass struct {
	Code     string `xml:"ResBookDesigCode,attr"`
	Quantity string `xml:"ResBookDesigQuantity,attr"`
}

type kiuFlightSegment struct {
	DepartureDateTime string      `xml:"DepartureDateTime,attr"`
	ArrivalDateTime   string      `xml:"ArrivalDateTime,attr"`
	FlightNumber      string      `xml:"FlightNumber,attr"`
	JourneyDuration   string      `xml:"JourneyDuration,attr"`
	DepartureAirport  kiuLocation `xml:"DepartureAirport"`
	ArrivalAirport    kiuLocation `xml:"ArrivalAirport"`
	Equipment         struct {
		AirEquipType string `xml:"AirEquipType,attr"`
	} `xml:"Equipment"`
	MarketingAirline struct {
		CompanyShortName string `xml:"CompanyShortName,attr"`
	} `xml:"MarketingAirline"`
	BookingClasses []kiuBookingClass `xml:"BookingClassAvail"`
}

type kiuOption struct {
	Segments []kiuFlightSegment `xml:"FlightSegment"`
}

type kiuError struct {
	Code    string `xml:"ErrorCode"`
	Message string `xml:"ErrorMsg"`
}

type kiuAvailResponse struct {
	XMLName xml.Name    `xml:"KIU_AirAvailRS"`
	Options []kiuOption `xml:"OriginDestinationInformation>OriginDestinationOptions>OriginDestinationOption"`
	Error   *kiuError   `xml:"Error"`
}

// KIUResult is the availability answer for one hop. It carries no price:
// every option still has to be confirmed segment by segment.
type KIUResult struct {
	key     TaskKey
	Query   SegmentQuery
	Options []kiuOption
}

func (r *KIUResult) Key() TaskKey                { return r.key }
func (r *KIUResult) Supplier() entity.SupplierID { return entity.SupplierKIU }

func (k *KIUClient) SearchSegment(ctx context.Context, q SegmentQuery) (RawResult, error) {
	cabin, ok := kiuCabinNames[q.CabinClass]
	if !ok {
		cabin = kiuCabinNames[entity.CabinEconomy]
	}

	req := kiuAvailRequest{
		kiuRequestHeader:  k.header(),
		DirectFlightsOnly: true,
		MaxResponses:      50,
		POS:               k.pos(),
	}
	req.OriginDestination.DepartureDateTime = q.DepartureDate.Format("2006-01-02")
	req.OriginDestination.OriginLocation.LocationCode = q.Origin
	req.OriginDestination.DestinationLocation.LocationCode = q.Destination
	req.CabinPref.Cabin = cabin
	req.TravelerInfoSummary = kiuTravelers(q.Passengers)

	var resp kiuAvailResponse
	if err := k.post(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("kiu availability: %w", err)
	}
	if resp.Error != nil && resp.Error.Code != "" {
		return nil, fmt.Errorf("kiu availability: %w: %s %s", ErrSupplierUnavailable, resp.Error.Code, resp.Error.Message)
	}

	return &KIUResult{key: q.Key, Query: q, Options: resp.Options}, nil
}

type kiuPriceRequest struct {
	XMLName xml.Name `xml:"KIU_AirPriceRQ"`
	kiuRequestHeader
	POS     kiuPOS `xml:"POS"`
	Segment struct {
		DepartureDateTime string      `xml:"DepartureDateTime,attr"`
		ArrivalDateTime   string      `xml:"ArrivalDateTime,attr"`
		FlightNumber      string      `xml:"FlightNumber,attr"`
		ResBookDesigCode  string      `xml:"ResBookDesigCode,attr"`
		DepartureAirport  kiuLocation `xml:"DepartureAirport"`
		ArrivalAirport    kiuLocation `xml:"ArrivalAirport"`
		MarketingAirline  struct {
			Code string `xml:"Code,attr"`
		} `xml:"MarketingAirline"`
	} `xml:"AirItinerary>OriginDestinationOptions>OriginDestinationOption>FlightSegment"`
	TravelerInfoSummary kiuTravelerSummary `xml:"TravelerInfoSummary"`
}

type kiuAmount struct {
	Amount       string `xml:"Amount,attr"`
	CurrencyCode string `xml:"CurrencyCode,attr"`
}

type kiuPriceResponse struct {
	XMLName   xml.Name `xml:"KIU_AirPriceRS"`
	TotalFare *struct {
		BaseFare  kiuAmount   `xml:"BaseFare"`
		Taxes     []kiuAmount `xml:"Taxes>Tax"`
		TotalFare kiuAmount   `xml:"TotalFare"`
	} `xml:"PricedItineraries>PricedItinerary>AirItineraryPricingInfo>ItinTotalFare"`
	Error *kiuError `xml:"Error"`
}

// ConfirmPrice prices a single segment in one booking class.
func (k *KIUClient) ConfirmPrice(ctx context.Context, q PriceQuery) (PriceQuote, error) {
	req := kiuPriceRequest{
		kiuRequestHeader: k.header(),
		POS:              k.pos(),
	}
	req.Segment.DepartureDateTime = q.DepartingAt.Format(kiuTimeLayout)
	req.Segment.ArrivalDateTime = q.ArrivingAt.Format(kiuTimeLayout)
	req.Segment.FlightNumber = q.FlightNumber
	req.Segment.ResBookDesigCode = q.BookingClass
	req.Segment.DepartureAirport.LocationCode = q.Origin
	req.Segment.ArrivalAirport.LocationCode = q.Destination
	req.Segment.MarketingAirline.Code = q.Carrier
	req.TravelerInfoSummary = kiuTravelers(q.Passengers)

	var resp kiuPriceResponse
	if err := k.post(ctx, req, &resp); err != nil {
		return PriceQuote{}, fmt.Errorf("kiu price: %w", err)
	}
	if resp.Error != nil && resp.Error.Code != "" {
		return PriceQuote{}, fmt.Errorf("kiu price: %w: %s %s", ErrUnpricedOffer, resp.Error.Code, resp.Error.Message)
	}
	if resp.TotalFare == nil || resp.TotalFare.TotalFare.Amount == "" {
		return PriceQuote{}, fmt.Errorf("kiu price: %w: empty fare", ErrUnpricedOffer)
	}

	fare := resp.TotalFare
	quote := PriceQuote{
		Base:     parseAmount(fare.BaseFare.Amount),
		Total:    parseAmount(fare.TotalFare.Amount),
		Currency: fare.TotalFare.CurrencyCode,
	}
	for _, tax := range fare.Taxes {
		quote.Tax = quote.Tax.Add(parseAmount(tax.Amount))
	}
	if quote.Base.IsZero() {
		quote.Base = quote.Total.Sub(quote.Tax)
	}
	if quote.Currency == "" {
		quote.Currency = fare.BaseFare.CurrencyCode
	}
	return quote, nil
}

func (k *KIUClient) header() kiuRequestHeader {
	return kiuRequestHeader{
		EchoToken:     "1",
		TimeStamp:     time.Now().UTC().Format(time.RFC3339),
		Target:        "Production",
		Version:       "3.0",
		SequenceNmbr:  "1",
		PrimaryLangID: "en-us",
	}
}

func (k *KIUClient) pos() kiuPOS {
	var pos kiuPOS
	pos.Source.AgentSine = k.cfg.AgentSine
	pos.Source.TerminalID = k.cfg.TerminalID
	pos.Source.ISOCountry = k.cfg.ISOCountry
	return pos
}

// post sends the XML document as the form field "request", next to the
// credentials, the way the KIU web service expects it.
func (k *KIUClient) post(ctx context.Context, doc, out any) error {
	payload, err := xml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	form := url.Values{
		"user":     {k.cfg.User},
		"password": {k.cfg.Password},
		"request":  {xml.Header + string(payload)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doRequest(k.hc, req, func(r io.Reader) error {
		return xml.NewDecoder(r).Decode(out)
	})
}

func kiuTravelers(p entity.Passengers) kiuTravelerSummary {
	summary := kiuTravelerSummary{
		Passengers: []kiuPassengerQuantity{{Code: "ADT", Quantity: max(p.Adults, 1)}},
	}
	if p.Children > 0 {
		summary.Passengers = append(summary.Passengers, kiuPassengerQuantity{Code: "CNN", Quantity: p.Children})
	}
	if p.Infants > 0 {
		summary.Passengers = append(summary.Passengers, kiuPassengerQuantity{Code: "INF", Quantity: p.Infants})
	}
	return summary
}
