package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkglog"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkguid"
)

const headerRequestID = "X-Request-Id"

// Handler is the endpoint shape every module registers. A non-nil error is
// rendered through pkgerror, anything else is encoded as the data field.
type Handler func(ctx context.Context, r *http.Request) (any, error)

type Router struct {
	mux  *chi.Mux
	uuid pkguid.StringID
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func NewRouter(uuid pkguid.StringID) *Router {
	r := &Router{mux: chi.NewRouter(), uuid: uuid}
	r.mux.Use(r.requestID)
	r.mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		r.write(req.Context(), w, http.StatusNotFound, envelope{Message: "route not found"})
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		r.write(req.Context(), w, http.StatusMethodNotAllowed, envelope{Message: "method not allowed"})
	})
	return r
}

func (r *Router) GET(path string, h Handler) {
	r.mux.Get(path, r.serve(h))
}

func (r *Router) POST(path string, h Handler) {
	r.mux.Post(path, r.serve(h))
}

// Handle mounts a plain http.Handler, e.g. the metrics exporter.
func (r *Router) Handle(path string, h http.Handler) {
	r.mux.Handle(path, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(headerRequestID)
		if id == "" {
			id = r.uuid.Generate()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, req.WithContext(pkglog.WithRequestID(req.Context(), id)))
	})
}

func (r *Router) serve(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		data, err := h(ctx, req)
		if err != nil {
			r.writeError(ctx, w, err)
			return
		}
		r.write(ctx, w, http.StatusOK, envelope{Success: true, Data: data})
	}
}

func (r *Router) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := pkgerror.HTTPStatus(err)
	msg := "internal server error"
	var e *pkgerror.Error
	if errors.As(err, &e) && status != http.StatusInternalServerError {
		msg = e.Message()
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "error", err)
	}
	r.write(ctx, w, status, envelope{Message: msg})
}

func (r *Router) write(ctx context.Context, w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
