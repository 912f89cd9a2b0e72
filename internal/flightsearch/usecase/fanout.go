package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/routing"
	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/supplier"
)

// FailedCall records a supplier call that produced no offers because it failed.
type FailedCall struct {
	Supplier   entity.SupplierID
	RouteIndex int
	HopIndex   int
	Reason     string
}

type legRequest struct {
	DepartureDate time.Time
	Passengers    entity.Passengers
	CabinClass    entity.CabinClass
}

type fanOutResult struct {
	offers map[supplier.TaskKey][]entity.Offer
	failed []FailedCall
	calls  int
}

type taskSlot struct {
	key    supplier.TaskKey
	offers []entity.Offer
	err    error
}

// fanOut queries every eligible (route, hop, supplier) triple concurrently and
// normalizes each answer inside its task. Every task owns one slot; slots are
// read only after the join. A failed task yields no offers and never cancels
// its siblings.
func (u *Usecase) fanOut(ctx context.Context, routes []entity.CandidateRoute, qp routing.QueryPlan, req legRequest, rules *ruleSet) fanOutResult {
	type task struct {
		key   supplier.TaskKey
		query supplier.SegmentQuery
		delay time.Duration
	}

	var tasks []task
	for _, id := range qp.Suppliers() {
		calls := 0
		for _, idx := range qp[id] {
			route := routes[idx]
			for hop, seg := range route.Segments {
				key := supplier.TaskKey{RouteIndex: route.Index, HopIndex: hop, Supplier: id}
				tasks = append(tasks, task{
					key: key,
					query: supplier.SegmentQuery{
						Key:           key,
						Origin:        seg.Origin.IATACode,
						Destination:   seg.Destination.IATACode,
						DepartureDate: req.DepartureDate,
						Passengers:    req.Passengers,
						CabinClass:    req.CabinClass,
					},
					delay: time.Duration(calls) * u.stagger[id],
				})
				calls++
			}
		}
	}

	slots := make([]taskSlot, len(tasks))
	var g errgroup.Group
	g.SetLimit(u.maxConcurrency)
	for i, t := range tasks {
		g.Go(func() error {
			offers, err := u.runTask(ctx, t.query, t.delay, rules)
			slots[i] = taskSlot{key: t.key, offers: offers, err: err}
			return nil
		})
	}
	_ = g.Wait()

	res := fanOutResult{offers: make(map[supplier.TaskKey][]entity.Offer, len(slots)), calls: len(slots)}
	for _, s := range slots {
		if s.err != nil {
			slog.WarnContext(ctx, "supplier call failed",
				"supplier", s.key.Supplier,
				"route", s.key.RouteIndex,
				"hop", s.key.HopIndex,
				"error", s.err,
			)
			res.failed = append(res.failed, FailedCall{
				Supplier:   s.key.Supplier,
				RouteIndex: s.key.RouteIndex,
				HopIndex:   s.key.HopIndex,
				Reason:     s.err.Error(),
			})
			continue
		}
		res.offers[s.key] = s.offers
	}
	return res
}

func (u *Usecase) runTask(ctx context.Context, q supplier.SegmentQuery, delay time.Duration, rules *ruleSet) ([]entity.Offer, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, u.supplierTimeout)
	defer cancel()

	client := u.suppliers[q.Key.Supplier]
	raw, err := client.SearchSegment(callCtx, q)
	if err != nil {
		return nil, err
	}
	offers, err := u.normalize(callCtx, raw, supplier.NormalizeInput{
		Firewall:  routing.RulesFor(q.Key.Supplier, rules.firewall),
		Confirmer: u.confirmers[q.Key.Supplier],
	})
	if err != nil {
		return nil, err
	}
	return u.inCurrency(ctx, q.Key, offers), nil
}

// inCurrency drops the priced offers quoted in another currency than the one
// the usecase is configured for.
func (u *Usecase) inCurrency(ctx context.Context, key supplier.TaskKey, offers []entity.Offer) []entity.Offer {
	if u.currency == "" {
		return offers
	}
	out := offers[:0]
	dropped := 0
	for _, o := range offers {
		if c := offerCurrency(o); c != "" && c != u.currency {
			dropped++
			continue
		}
		out = append(out, o)
	}
	if dropped > 0 {
		slog.WarnContext(ctx, "offers dropped for currency",
			"supplier", key.Supplier,
			"route", key.RouteIndex,
			"hop", key.HopIndex,
			"currency", u.currency,
			"dropped", dropped,
		)
	}
	return out
}

// hopOffers is the union, per hop of route, of the offers of every supplier in
// the stable supplier order of the plan.
func hopOffers(route entity.CandidateRoute, qp routing.QueryPlan, offers map[supplier.TaskKey][]entity.Offer) [][]entity.Offer {
	hops := make([][]entity.Offer, route.Hops())
	for hop := range hops {
		for _, id := range qp.Suppliers() {
			if !qp.Allows(id, route.Index) {
				continue
			}
			hops[hop] = append(hops[hop], offers[supplier.TaskKey{RouteIndex: route.Index, HopIndex: hop, Supplier: id}]...)
		}
	}
	return hops
}
