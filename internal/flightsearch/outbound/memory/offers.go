package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/entity"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkguid"
)

type SavedItinerary struct {
	Handle     entity.SavedHandle
	Itinerary  entity.Itinerary
	Passengers entity.Passengers
	TripType   entity.TripType
}

type OfferStore struct {
	uuid pkguid.StringID
	now  func() time.Time

	mu    sync.RWMutex
	saved map[string]SavedItinerary
}

func NewOfferStore(uuid pkguid.StringID) *OfferStore {
	return &OfferStore{
		uuid:  uuid,
		now:   time.Now,
		saved: make(map[string]SavedItinerary),
	}
}

func (s *OfferStore) Save(ctx context.Context, its []entity.Itinerary, pax entity.Passengers, trip entity.TripType) ([]entity.SavedHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	handles := make([]entity.SavedHandle, 0, len(its))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range its {
		h := entity.SavedHandle{
			ID:          s.uuid.Generate(),
			ItineraryID: it.ID,
			TotalAmount: it.TotalAmount,
			Currency:    it.Currency,
			CreatedAt:   now,
		}
		s.saved[h.ID] = SavedItinerary{Handle: h, Itinerary: it, Passengers: pax, TripType: trip}
		handles = append(handles, h)
	}
	return handles, nil
}

func (s *OfferStore) Get(id string) (SavedItinerary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.saved[id]
	return v, ok
}

func (s *OfferStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.saved)
}
