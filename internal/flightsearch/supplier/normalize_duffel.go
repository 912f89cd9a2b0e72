package supplier

import (
	"strings"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

func normalizeDuffel(r *DuffelResult) []entity.Offer {
	offers := make([]entity.Offer, 0, len(r.Offers))
	for _, o := range r.Offers {
		offer, ok := duffelOfferToEntity(r, o)
		if !ok {
			continue
		}
		offers = append(offers, offer)
	}
	return offers
}

func duffelOfferToEntity(r *DuffelResult, o duffelOffer) (entity.Offer, bool) {
	if strings.TrimSpace(o.TotalAmount) == "" {
		return entity.Offer{}, false
	}

	slices := make([]entity.Slice, 0, len(o.Slices))
	for _, s := range o.Slices {
		segments := make([]entity.Segment, 0, len(s.Segments))
		for _, seg := range s.Segments {
			segment, err := duffelSegmentToEntity(seg)
			if err != nil {
				return entity.Offer{}, false
			}
			segments = append(segments, segment)
		}
		if len(segments) == 0 {
			return entity.Offer{}, false
		}
		slices = append(slices, sliceOf(segments, s.Duration, s.FareBrandName))
	}
	if len(slices) == 0 {
		return entity.Offer{}, false
	}

	offer := entity.Offer{
		ID:         offerID(r.key, o.ID),
		SourceID:   entity.SupplierDuffel,
		ResponseID: r.ResponseID,
		RouteID:    r.key.RouteID(),
		Owner:      duffelCarrierToEntity(o.Owner),
		Slices:     slices,
		Currency:   o.TotalCurrency,
	}
	if expires, err := time.Parse(time.RFC3339, o.ExpiresAt); err == nil {
		offer.ExpiresAt = &expires
	}

	return pricedOffer(offer, parseAmount(o.BaseAmount), parseAmount(o.TaxAmount), parseAmount(o.TotalAmount)), true
}

func duffelSegmentToEntity(seg duffelSegment) (entity.Segment, error) {
	departAt, err := parseSupplierTime(seg.DepartingAt)
	if err != nil {
		return entity.Segment{}, err
	}
	arriveAt, err := parseSupplierTime(seg.ArrivingAt)
	if err != nil {
		return entity.Segment{}, err
	}

	segment := entity.Segment{
		ID:               seg.ID,
		Origin:           duffelPlaceToEntity(seg.Origin),
		Destination:      duffelPlaceToEntity(seg.Destination),
		DepartingAt:      departAt,
		ArrivingAt:       arriveAt,
		MarketingCarrier: duffelCarrierToEntity(seg.MarketingCarrier),
		OperatingCarrier: duffelCarrierToEntity(seg.OperatingCarrier),
		FlightNumber:     seg.MarketingCarrierFlightNumber,
		CabinClass:       entity.CabinEconomy,
	}
	if segment.FlightNumber == "" {
		segment.FlightNumber = seg.OperatingCarrierFlightNumber
	}
	if seg.Aircraft != nil {
		segment.Aircraft = seg.Aircraft.Name
	}

	// Cabin, fare and baggage are per passenger; the first one is representative.
	if len(seg.Passengers) > 0 {
		p := seg.Passengers[0]
		segment.CabinClass = cabinFromSupplier(p.CabinClass)
		segment.FareBasisCode = p.FareBasisCode
		if p.FareBasisCode != "" {
			segment.FareClassCode = p.FareBasisCode[:1]
		}
		for _, b := range p.Baggages {
			switch b.Type {
			case "checked":
				segment.CheckedBaggage += b.Quantity
			case "carry_on":
				segment.CabinBaggage += b.Quantity
			}
		}
	}

	return segment, nil
}

func duffelPlaceToEntity(p duffelPlace) entity.Location {
	loc := entity.NewLocation(p.IATACode)
	loc.CityName = p.CityName
	loc.CountryCode = p.IATACountryCode
	return loc
}

func duffelCarrierToEntity(c duffelCarrier) entity.Carrier {
	return entity.Carrier{IATACode: c.IATACode, Name: c.Name, LogoURL: c.LogoSymbolURL}
}
