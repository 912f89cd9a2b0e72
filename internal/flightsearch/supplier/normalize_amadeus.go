package supplier

import (
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

func normalizeAmadeus(r *AmadeusResult) []entity.Offer {
	offers := make([]entity.Offer, 0, len(r.Offers))
	for _, o := range r.Offers {
		offer, ok := amadeusOfferToEntity(r, o)
		if !ok {
			continue
		}
		offers = append(offers, offer)
	}
	return offers
}

func amadeusOfferToEntity(r *AmadeusResult, o amadeusOffer) (entity.Offer, bool) {
	total := o.Price.GrandTotal
	if total == "" {
		total = o.Price.Total
	}
	if total == "" {
		return entity.Offer{}, false
	}

	fares := map[string]amadeusFareDetail{}
	if len(o.TravelerPricings) > 0 {
		for _, f := range o.TravelerPricings[0].FareDetailsBySegment {
			fares[f.SegmentID] = f
		}
	}

	slices := make([]entity.Slice, 0, len(o.Itineraries))
	for _, it := range o.Itineraries {
		var brand string
		segments := make([]entity.Segment, 0, len(it.Segments))
		for _, seg := range it.Segments {
			segment, err := r.segmentToEntity(seg, fares[seg.ID])
			if err != nil {
				return entity.Offer{}, false
			}
			if brand == "" {
				brand = fares[seg.ID].BrandedFare
			}
			segments = append(segments, segment)
		}
		if len(segments) == 0 {
			return entity.Offer{}, false
		}
		slices = append(slices, sliceOf(segments, it.Duration, brand))
	}
	if len(slices) == 0 {
		return entity.Offer{}, false
	}

	ownerCode := slices[0].Segments[0].MarketingCarrier.IATACode
	if len(o.ValidatingAirlineCodes) > 0 {
		ownerCode = o.ValidatingAirlineCodes[0]
	}

	offer := entity.Offer{
		ID:       offerID(r.key, o.ID),
		SourceID: entity.SupplierAmadeus,
		RouteID:  r.key.RouteID(),
		Owner:    r.carrier(ownerCode),
		Slices:   slices,
		Currency: o.Price.Currency,
	}
	if expires, err := time.Parse("2006-01-02", o.LastTicketingDate); err == nil {
		offer.ExpiresAt = &expires
	}

	grand := parseAmount(total)
	base := grand
	if o.Price.Base != "" {
		base = parseAmount(o.Price.Base)
	}
	return pricedOffer(offer, base, grand.Sub(base), grand), true
}

func (r *AmadeusResult) segmentToEntity(seg amadeusSegment, fare amadeusFareDetail) (entity.Segment, error) {
	departAt, err := parseSupplierTime(seg.Departure.At)
	if err != nil {
		return entity.Segment{}, err
	}
	arriveAt, err := parseSupplierTime(seg.Arrival.At)
	if err != nil {
		return entity.Segment{}, err
	}

	operating := seg.CarrierCode
	if seg.Operating != nil && seg.Operating.CarrierCode != "" {
		operating = seg.Operating.CarrierCode
	}

	segment := entity.Segment{
		ID:               seg.ID,
		Origin:           r.location(seg.Departure.IATACode),
		Destination:      r.location(seg.Arrival.IATACode),
		DepartingAt:      departAt,
		ArrivingAt:       arriveAt,
		MarketingCarrier: r.carrier(seg.CarrierCode),
		OperatingCarrier: r.carrier(operating),
		FlightNumber:     seg.Number,
		Aircraft:         r.Dictionaries.Aircraft[seg.Aircraft.Code],
		CabinClass:       cabinFromSupplier(fare.Cabin),
		FareClassCode:    fare.Class,
		FareBasisCode:    fare.FareBasis,
	}
	if segment.Aircraft == "" {
		segment.Aircraft = seg.Aircraft.Code
	}
	if fare.IncludedCheckedBags != nil {
		segment.CheckedBaggage = fare.IncludedCheckedBags.Quantity
	}
	if fare.IncludedCabinBags != nil {
		segment.CabinBaggage = fare.IncludedCabinBags.Quantity
	}
	return segment, nil
}

func (r *AmadeusResult) carrier(code string) entity.Carrier {
	return entity.Carrier{IATACode: code, Name: r.Dictionaries.Carriers[code]}
}

func (r *AmadeusResult) location(code string) entity.Location {
	loc := entity.NewLocation(code)
	if d, ok := r.Dictionaries.Locations[code]; ok {
		loc.CountryCode = d.CountryCode
	}
	return loc
}
