package inbound

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/usecase"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgerror"
)

const (
	dateLayout      = "2006-01-02"
	maxRequestBytes = 1 << 20
)

func parseSearchInput(r *http.Request) (usecase.SearchInput, error) {
	q := r.URL.Query()

	origin := strings.TrimSpace(q.Get("origin"))
	destination := strings.TrimSpace(q.Get("destination"))
	if origin == "" || destination == "" {
		return usecase.SearchInput{}, pkgerror.NewBusiness("origin and destination are required", pkgerror.CodeInvalidInput)
	}

	departureDateStr := strings.TrimSpace(firstNotEmpty(q.Get("departureDate"), q.Get("departure_date")))
	if departureDateStr == "" {
		return usecase.SearchInput{}, pkgerror.NewBusiness("departureDate is required", pkgerror.CodeInvalidInput)
	}
	departureDate, err := time.Parse(dateLayout, departureDateStr)
	if err != nil {
		return usecase.SearchInput{}, pkgerror.NewBusiness("invalid departureDate", pkgerror.CodeInvalidInput)
	}

	var returnDate *time.Time
	returnDateStr := strings.TrimSpace(firstNotEmpty(q.Get("returnDate"), q.Get("return_date")))
	if returnDateStr != "" {
		parsed, err := time.Parse(dateLayout, returnDateStr)
		if err != nil {
			return usecase.SearchInput{}, pkgerror.NewBusiness("invalid returnDate", pkgerror.CodeInvalidInput)
		}
		returnDate = &parsed
	}

	pax, err := parsePassengers(q)
	if err != nil {
		return usecase.SearchInput{}, err
	}

	cabin, ok := entity.ParseCabinClass(firstNotEmpty(q.Get("cabinClass"), q.Get("cabin_class")))
	if !ok {
		return usecase.SearchInput{}, pkgerror.NewBusiness("invalid cabinClass", pkgerror.CodeInvalidInput)
	}

	var maxLayovers *int
	if err := parseIntParam(q, "max_layovers", "maxLayovers", "invalid max_layovers", &maxLayovers); err != nil {
		return usecase.SearchInput{}, err
	}
	selfTransfer, err := parseBoolParam(q, "self_transfer_allowed", "selfTransferAllowed")
	if err != nil {
		return usecase.SearchInput{}, err
	}

	sortOpt, ok := usecase.ParseSortOption(q.Get("sort"))
	if !ok {
		return usecase.SearchInput{}, pkgerror.NewBusiness("invalid sort", pkgerror.CodeInvalidInput)
	}

	filters, err := parseSearchFilters(q)
	if err != nil {
		return usecase.SearchInput{}, err
	}

	return usecase.SearchInput{
		Origin:              origin,
		Destination:         destination,
		DepartureDate:       departureDate,
		ReturnDate:          returnDate,
		Passengers:          pax,
		CabinClass:          cabin,
		MaxLayovers:         maxLayovers,
		SelfTransferAllowed: selfTransfer,
		Filters:             filters,
		Sort:                sortOpt,
	}, nil
}

func parsePassengers(q url.Values) (entity.Passengers, error) {
	pax := entity.Passengers{Adults: 1}
	if value := strings.TrimSpace(firstNotEmpty(q.Get("adults"), q.Get("passengers"))); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return pax, pkgerror.NewBusiness("invalid adults", pkgerror.CodeInvalidInput)
		}
		pax.Adults = parsed
	}
	counts := []struct {
		key    string
		target *int
	}{
		{"children", &pax.Children},
		{"infants", &pax.Infants},
	}
	for _, c := range counts {
		key, target := c.key, c.target
		value := strings.TrimSpace(q.Get(key))
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			return pax, pkgerror.NewBusiness("invalid "+key, pkgerror.CodeInvalidInput)
		}
		*target = parsed
	}
	return pax, nil
}

func parseSearchFilters(q url.Values) (usecase.Filters, error) {
	filters := usecase.Filters{}
	if err := parseDecimalParam(q, "min_price", "minPrice", &filters.MinPrice); err != nil {
		return filters, err
	}
	if err := parseDecimalParam(q, "max_price", "maxPrice", &filters.MaxPrice); err != nil {
		return filters, err
	}
	ints := []struct {
		key, altKey string
		target      **int
	}{
		{"max_duration", "maxDuration", &filters.MaxDuration},
		{"min_onward_duration", "minOnwardDuration", &filters.MinOnwardDuration},
		{"max_onward_duration", "maxOnwardDuration", &filters.MaxOnwardDuration},
		{"max_stops", "maxStops", &filters.MaxStops},
		{"cabin_baggage", "cabinBaggage", &filters.CabinBaggage},
		{"checked_baggage", "checkedBaggage", &filters.CheckedBaggage},
	}
	for _, p := range ints {
		if err := parseIntParam(q, p.key, p.altKey, "invalid "+p.key, p.target); err != nil {
			return filters, err
		}
	}
	hours := []struct {
		key, altKey string
		target      **float64
	}{
		{"min_departure_time", "minDepartureTime", &filters.MinDepartureTime},
		{"max_departure_time", "maxDepartureTime", &filters.MaxDepartureTime},
		{"min_arrival_time", "minArrivalTime", &filters.MinArrivalTime},
		{"max_arrival_time", "maxArrivalTime", &filters.MaxArrivalTime},
	}
	for _, p := range hours {
		if err := parseHourParam(q, p.key, p.altKey, p.target); err != nil {
			return filters, err
		}
	}
	filters.PreferredAirlines = parseListParam(q, "airlines", "airline")
	return filters, nil
}

func parseMultiCityInput(r *http.Request) (usecase.MultiCityInput, error) {
	var req MultiCityRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return usecase.MultiCityInput{}, pkgerror.NewBusiness("invalid request body", pkgerror.CodeInvalidInput)
	}

	legs := make([]usecase.Leg, 0, len(req.Legs))
	for i, l := range req.Legs {
		date, err := time.Parse(dateLayout, strings.TrimSpace(l.DepartureDate))
		if err != nil {
			return usecase.MultiCityInput{}, pkgerror.NewBusiness(fmt.Sprintf("invalid departure_date of leg %d", i+1), pkgerror.CodeInvalidInput)
		}
		legs = append(legs, usecase.Leg{Origin: l.Origin, Destination: l.Destination, DepartureDate: date})
	}

	pax := entity.Passengers{Adults: 1, Children: req.Children, Infants: req.Infants}
	if req.Adults != nil {
		pax.Adults = *req.Adults
	}

	cabin, ok := entity.ParseCabinClass(req.CabinClass)
	if !ok {
		return usecase.MultiCityInput{}, pkgerror.NewBusiness("invalid cabin_class", pkgerror.CodeInvalidInput)
	}
	sortOpt, ok := usecase.ParseSortOption(req.Sort)
	if !ok {
		return usecase.MultiCityInput{}, pkgerror.NewBusiness("invalid sort", pkgerror.CodeInvalidInput)
	}
	flightWay, ok := parseFlightWay(req.FlightWay)
	if !ok {
		return usecase.MultiCityInput{}, pkgerror.NewBusiness("invalid flight_way", pkgerror.CodeInvalidInput)
	}

	f := req.Filters
	return usecase.MultiCityInput{
		Legs:                legs,
		Passengers:          pax,
		CabinClass:          cabin,
		MaxLayovers:         req.MaxLayovers,
		SelfTransferAllowed: req.SelfTransferAllowed,
		Sort:                sortOpt,
		FlightWay:           flightWay,
		Filters: usecase.Filters{
			MinPrice:          f.MinPrice,
			MaxPrice:          f.MaxPrice,
			MaxDuration:       f.MaxDuration,
			MinOnwardDuration: f.MinOnwardDuration,
			MaxOnwardDuration: f.MaxOnwardDuration,
			MaxStops:          f.MaxStops,
			MinDepartureTime:  f.MinDepartureTime,
			MaxDepartureTime:  f.MaxDepartureTime,
			MinArrivalTime:    f.MinArrivalTime,
			MaxArrivalTime:    f.MaxArrivalTime,
			CabinBaggage:      f.CabinBaggage,
			CheckedBaggage:    f.CheckedBaggage,
			PreferredAirlines: f.Airlines,
		},
	}, nil
}

func parseFlightWay(v string) (entity.TripType, bool) {
	switch t := entity.TripType(strings.ToUpper(strings.TrimSpace(v))); t {
	case "":
		return entity.TripMultiWay, true
	case entity.TripOneWay, entity.TripRoundTrip, entity.TripMultiWay:
		return t, true
	default:
		return "", false
	}
}

func parseIntParam(q url.Values, key, altKey, errMsg string, target **int) error {
	value := strings.TrimSpace(firstNotEmpty(q.Get(key), q.Get(altKey)))
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return pkgerror.NewBusiness(errMsg, pkgerror.CodeInvalidInput)
	}
	*target = &parsed
	return nil
}

func parseDecimalParam(q url.Values, key, altKey string, target **decimal.Decimal) error {
	value := strings.TrimSpace(firstNotEmpty(q.Get(key), q.Get(altKey)))
	if value == "" {
		return nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil || parsed.IsNegative() {
		return pkgerror.NewBusiness("invalid "+key, pkgerror.CodeInvalidInput)
	}
	*target = &parsed
	return nil
}

func parseBoolParam(q url.Values, key, altKey string) (*bool, error) {
	value := strings.TrimSpace(firstNotEmpty(q.Get(key), q.Get(altKey)))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, pkgerror.NewBusiness("invalid "+key, pkgerror.CodeInvalidInput)
	}
	return &parsed, nil
}

// parseHourParam accepts either "HH:MM" or fractional hours such as 13.5.
func parseHourParam(q url.Values, key, altKey string, target **float64) error {
	value := strings.TrimSpace(firstNotEmpty(q.Get(key), q.Get(altKey)))
	if value == "" {
		return nil
	}
	var hours float64
	if strings.Contains(value, ":") {
		parsed, err := time.Parse("15:04", value)
		if err != nil {
			return pkgerror.NewBusiness("invalid "+key, pkgerror.CodeInvalidInput)
		}
		hours = float64(parsed.Hour()) + float64(parsed.Minute())/60
	} else {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return pkgerror.NewBusiness("invalid "+key, pkgerror.CodeInvalidInput)
		}
		hours = parsed
	}
	if hours < 0 || hours > 24 {
		return pkgerror.NewBusiness("invalid "+key, pkgerror.CodeInvalidInput)
	}
	*target = &hours
	return nil
}

func parseListParam(q url.Values, key, altKey string) []string {
	value := strings.TrimSpace(firstNotEmpty(q.Get(key), q.Get(altKey)))
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func firstNotEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func mapFlightPoint(loc entity.Location, at time.Time) FlightPoint {
	return FlightPoint{
		Airport:   loc.IATACode,
		City:      loc.CityName,
		Datetime:  formatTime(at),
		Timestamp: at.Unix(),
	}
}

func mapCarrier(c entity.Carrier) AirlineResponse {
	name := c.Name
	if name == "" {
		name = c.IATACode
	}
	return AirlineResponse{Code: c.IATACode, Name: name, Logo: c.LogoURL}
}

func mapDuration(minutes int) DurationResponse {
	return DurationResponse{TotalMinutes: minutes, Formatted: formatDuration(minutes)}
}

func minutesOf(d time.Duration) int {
	return int(d / time.Minute)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatDuration(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

func formatPrice(it entity.Itinerary) string {
	if it.Unpriced {
		return "price on request"
	}
	if it.Currency == "" {
		return it.TotalAmount.StringFixed(2)
	}
	return it.Currency + " " + it.TotalAmount.StringFixed(2)
}
