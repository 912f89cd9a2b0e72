package inbound

import (
	"context"

	"github.com/shandysiswandi/goflightmesh/internal/flightsearch/usecase"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgrouter"
)

type uc interface {
	Search(ctx context.Context, in usecase.SearchInput) (*usecase.SearchOutput, error)
	MultiCitySearch(ctx context.Context, in usecase.MultiCityInput) (*usecase.SearchOutput, error)
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/flights", end.Flights)
	r.POST("/flights/multi-city", end.MultiCity)
}
