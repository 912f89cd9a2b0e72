package inbound

import (
	"context"
	"errors"
	"net/http"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/usecase"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgerror"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Flights(ctx context.Context, r *http.Request) (any, error) {
	input, err := parseSearchInput(r)
	if err != nil {
		return nil, err
	}

	output, err := h.uc.Search(ctx, input)
	if err != nil {
		return nil, mapUsecaseError(err)
	}

	return mapSearchResponse(output), nil
}

func (h *HTTPEndpoint) MultiCity(ctx context.Context, r *http.Request) (any, error) {
	input, err := parseMultiCityInput(r)
	if err != nil {
		return nil, err
	}

	output, err := h.uc.MultiCitySearch(ctx, input)
	if err != nil {
		return nil, mapUsecaseError(err)
	}

	return mapSearchResponse(output), nil
}

func mapUsecaseError(err error) error {
	if errors.Is(err, usecase.ErrConfigurationMissing) {
		return pkgerror.NewServer("search configuration unavailable", pkgerror.CodeUnavailable, err)
	}
	return err
}

func mapSearchResponse(out *usecase.SearchOutput) SearchResponse {
	handles := make([]SavedHandleResponse, 0, len(out.FlightData))
	for _, h := range out.FlightData {
		handles = append(handles, SavedHandleResponse{
			ID:          h.ID,
			ItineraryID: h.ItineraryID,
			TotalAmount: h.TotalAmount.StringFixed(2),
			Currency:    h.Currency,
			CreatedAt:   formatTime(h.CreatedAt),
		})
	}

	airlines := make([]AirlineResponse, 0, len(out.AirlinesDetails.ExtendedData))
	for _, a := range out.AirlinesDetails.ExtendedData {
		airlines = append(airlines, AirlineResponse{Code: a.Code, Name: a.DisplayName, Logo: a.Logo})
	}

	failed := make([]FailedCallResponse, 0, len(out.Metadata.FailedCalls))
	for _, f := range out.Metadata.FailedCalls {
		failed = append(failed, FailedCallResponse{
			Supplier:   string(f.Supplier),
			RouteIndex: f.RouteIndex,
			HopIndex:   f.HopIndex,
			Reason:     f.Reason,
		})
	}

	return SearchResponse{
		TripType:    string(out.TripType),
		FlightData:  handles,
		Itineraries: mapItineraries(out.Itineraries),
		AirlinesDetails: AirlinesDetailsResponse{
			Airlines:     append([]string{}, out.AirlinesDetails.Airlines...),
			ExtendedData: airlines,
		},
		Metadata: MetadataResponse{
			TotalResults:  out.Metadata.TotalResults,
			RoutesPlanned: out.Metadata.RoutesPlanned,
			SupplierCalls: out.Metadata.SupplierCalls,
			FailedCalls:   failed,
			SearchTimeMs:  out.Metadata.SearchTimeMs,
			CacheHit:      out.Metadata.CacheHit,
		},
	}
}

func mapItineraries(its []entity.Itinerary) []ItineraryResponse {
	resp := make([]ItineraryResponse, 0, len(its))
	for _, it := range its {
		item := ItineraryResponse{
			ID:         it.ID,
			RouteIndex: it.RouteIndex,
			Price: PriceResponse{
				Base:       it.BaseAmount.StringFixed(2),
				Tax:        it.TaxAmount.StringFixed(2),
				Commission: it.CommissionAmount.StringFixed(2),
				Total:      it.TotalAmount.StringFixed(2),
				Currency:   it.Currency,
				Formatted:  formatPrice(it),
			},
			Unpriced:    it.Unpriced,
			DepartingAt: formatTime(it.DepartingAt),
			ArrivingAt:  formatTime(it.ArrivingAt),
			Duration:    mapDuration(minutesOf(it.Duration)),
			Stops:       it.Stops,
			Score:       it.Score,
			Offers:      mapOffers(it.Offers),
		}
		if len(it.Legs) > 0 {
			item.Legs = mapItineraries(it.Legs)
		}
		resp = append(resp, item)
	}
	return resp
}

func mapOffers(offers []entity.Offer) []OfferResponse {
	resp := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		slices := make([]SliceResponse, 0, len(o.Slices))
		for _, sl := range o.Slices {
			segments := make([]SegmentResponse, 0, len(sl.Segments))
			for _, s := range sl.Segments {
				segments = append(segments, SegmentResponse{
					ID:               s.ID,
					Departure:        mapFlightPoint(s.Origin, s.DepartingAt),
					Arrival:          mapFlightPoint(s.Destination, s.ArrivingAt),
					MarketingCarrier: mapCarrier(s.MarketingCarrier),
					OperatingCarrier: mapCarrier(s.OperatingCarrier),
					FlightNumber:     s.FlightNumber,
					Aircraft:         s.Aircraft,
					CabinClass:       string(s.CabinClass),
					FareClassCode:    s.FareClassCode,
					Baggage:          BaggageResponse{CarryOn: s.CabinBaggage, Checked: s.CheckedBaggage},
					Invalid:          s.Invalid,
				})
			}
			slices = append(slices, SliceResponse{
				Origin:        sl.Origin.IATACode,
				Destination:   sl.Destination.IATACode,
				Duration:      mapDuration(minutesOf(sl.Duration)),
				FareBrandName: sl.FareBrandName,
				Segments:      segments,
			})
		}
		resp = append(resp, OfferResponse{
			ID:       o.ID,
			Supplier: string(o.SourceID),
			Owner:    mapCarrier(o.Owner),
			Total:    o.TotalAmount.StringFixed(2),
			Currency: o.Currency,
			Unpriced: o.Unpriced,
			Slices:   slices,
		})
	}
	return resp
}
