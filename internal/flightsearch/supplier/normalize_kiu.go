package supplier

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
)

const kiuConfirmConcurrency = 8

type kiuCandidate struct {
	offer   entity.Offer
	quotes  []PriceQuote
	confirm []bool
}

func normalizeKIU(ctx context.Context, r *KIUResult, rules []entity.FirewallRule, confirmer PriceConfirmer) []entity.Offer {
	cabin := r.Query.CabinClass
	if _, ok := kiuClasses[cabin]; !ok {
		cabin = entity.CabinEconomy
	}

	candidates := make([]*kiuCandidate, 0, len(r.Options))
	for i, opt := range r.Options {
		segments, ok := kiuSegmentsToEntity(opt, cabin, i)
		if !ok {
			continue
		}
		// Fare-class rules are resolved before paying for price confirmation.
		if segmentsBlocked(segments, rules) {
			continue
		}
		slice := sliceOf(segments, "", "")
		if len(opt.Segments) == 1 {
			if d := kiuJourneyDuration(opt.Segments[0].JourneyDuration); d > 0 {
				slice.Duration = d
			}
		}
		candidates = append(candidates, &kiuCandidate{
			offer: entity.Offer{
				ID:       offerID(r.key, fmt.Sprintf("opt%d", i)),
				SourceID: entity.SupplierKIU,
				RouteID:  r.key.RouteID(),
				Owner:    segments[0].MarketingCarrier,
				Slices:   []entity.Slice{slice},
			},
			quotes:  make([]PriceQuote, len(segments)),
			confirm: make([]bool, len(segments)),
		})
	}

	if confirmer != nil {
		confirmKIUPrices(ctx, candidates, r.Query.Passengers, confirmer)
	}

	offers := make([]entity.Offer, 0, len(candidates))
	for _, c := range candidates {
		offers = append(offers, c.priced())
	}
	return offers
}

// confirmKIUPrices prices every segment of every candidate concurrently. Each
// task writes only its own quote slot; a failed confirmation leaves the slot
// unconfirmed and never cancels the others.
func confirmKIUPrices(ctx context.Context, candidates []*kiuCandidate, pax entity.Passengers, confirmer PriceConfirmer) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(kiuConfirmConcurrency)

	for _, c := range candidates {
		segments := c.offer.Slices[0].Segments
		for i := range segments {
			seg := segments[i]
			g.Go(func() error {
				quote, err := confirmer.ConfirmPrice(gctx, PriceQuery{
					Origin:       seg.Origin.IATACode,
					Destination:  seg.Destination.IATACode,
					DepartingAt:  seg.DepartingAt,
					ArrivingAt:   seg.ArrivingAt,
					Carrier:      seg.MarketingCarrier.IATACode,
					FlightNumber: seg.FlightNumber,
					BookingClass: seg.FareClassCode,
					Passengers:   pax,
				})
				if err != nil || quote.Total.IsZero() {
					return nil
				}
				c.quotes[i] = quote
				c.confirm[i] = true
				return nil
			})
		}
	}
	_ = g.Wait()
}

func (c *kiuCandidate) priced() entity.Offer {
	offer := c.offer
	segments := slices.Clone(offer.Slices[0].Segments)

	base, tax := decimal.Zero, decimal.Zero
	confirmed := 0
	for i := range segments {
		if !c.confirm[i] {
			segments[i].Invalid = true
			continue
		}
		q := c.quotes[i]
		segments[i].Price = q.Total
		base = base.Add(q.Base)
		tax = tax.Add(q.Tax)
		if offer.Currency == "" {
			offer.Currency = q.Currency
		}
		confirmed++
	}
	offer.Slices = []entity.Slice{offer.Slices[0]}
	offer.Slices[0].Segments = segments

	if confirmed == 0 {
		return unpricedOffer(offer)
	}
	return pricedOffer(offer, base, tax, base.Add(tax))
}

func kiuSegmentsToEntity(opt kiuOption, cabin entity.CabinClass, optIndex int) ([]entity.Segment, bool) {
	if len(opt.Segments) == 0 {
		return nil, false
	}
	segments := make([]entity.Segment, 0, len(opt.Segments))
	for i, fs := range opt.Segments {
		class, ok := kiuBookingClassFor(fs.BookingClasses, cabin)
		if !ok {
			return nil, false
		}
		departAt, err := parseSupplierTime(fs.DepartureDateTime, kiuTimeLayout)
		if err != nil {
			return nil, false
		}
		arriveAt, err := parseSupplierTime(fs.ArrivalDateTime, kiuTimeLayout)
		if err != nil {
			return nil, false
		}
		carrier := entity.Carrier{IATACode: fs.MarketingAirline.CompanyShortName}
		segments = append(segments, entity.Segment{
			ID:               fmt.Sprintf("opt%d-seg%d", optIndex, i),
			Origin:           entity.NewLocation(fs.DepartureAirport.LocationCode),
			Destination:      entity.NewLocation(fs.ArrivalAirport.LocationCode),
			DepartingAt:      departAt,
			ArrivingAt:       arriveAt,
			MarketingCarrier: carrier,
			OperatingCarrier: carrier,
			FlightNumber:     fs.FlightNumber,
			Aircraft:         fs.Equipment.AirEquipType,
			CabinClass:       cabin,
			FareClassCode:    class,
		})
	}
	return segments, true
}

// kiuBookingClassFor picks the last advertised class with seats left that
// belongs to cabin. KIU lists classes from the most to the least expensive.
func kiuBookingClassFor(avail []kiuBookingClass, cabin entity.CabinClass) (string, bool) {
	allowed := kiuClasses[cabin]
	for i := len(avail) - 1; i >= 0; i-- {
		code := strings.ToUpper(strings.TrimSpace(avail[i].Code))
		if strings.TrimSpace(avail[i].Quantity) == "0" {
			continue
		}
		if slices.Contains(allowed, code) {
			return code, true
		}
	}
	return "", false
}

// kiuJourneyDuration reads KIU's hh:mm journey duration.
func kiuJourneyDuration(v string) time.Duration {
	h, m, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return 0
	}
	d, err := time.ParseDuration(h + "h" + m + "m")
	if err != nil {
		return 0
	}
	return d
}
