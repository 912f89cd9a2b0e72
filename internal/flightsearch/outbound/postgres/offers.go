package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkguid"
)

type OfferStore struct {
	db   DB
	uuid pkguid.StringID
}

func NewOfferStore(db DB, uuid pkguid.StringID) *OfferStore {
	return &OfferStore{db: db, uuid: uuid}
}

// Save inserts every itinerary in one batch and returns the handles in input
// order.
func (s *OfferStore) Save(ctx context.Context, its []entity.Itinerary, pax entity.Passengers, trip entity.TripType) ([]entity.SavedHandle, error) {
	if len(its) == 0 {
		return []entity.SavedHandle{}, nil
	}

	batch := &pgx.Batch{}
	handles := make([]entity.SavedHandle, 0, len(its))
	for _, it := range its {
		payload, err := json.Marshal(it)
		if err != nil {
			return nil, fmt.Errorf("encode itinerary %s: %w", it.ID, err)
		}
		h := entity.SavedHandle{
			ID:          s.uuid.Generate(),
			ItineraryID: it.ID,
			TotalAmount: it.TotalAmount,
			Currency:    it.Currency,
		}
		batch.Queue(`
			INSERT INTO saved_itineraries
				(id, itinerary_id, trip_type, adults, children, infants, total_amount, currency, unpriced, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)
			RETURNING created_at
		`, h.ID, it.ID, string(trip), pax.Adults, pax.Children, pax.Infants,
			it.TotalAmount.StringFixed(2), it.Currency, it.Unpriced, payload)
		handles = append(handles, h)
	}

	br := s.db.SendBatch(ctx, batch)
	for i := range handles {
		var created time.Time
		if err := br.QueryRow().Scan(&created); err != nil {
			_ = br.Close()
			return nil, fmt.Errorf("insert itinerary %s: %w", handles[i].ItineraryID, err)
		}
		handles[i].CreatedAt = created.UTC()
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("close batch: %w", err)
	}
	return handles, nil
}
