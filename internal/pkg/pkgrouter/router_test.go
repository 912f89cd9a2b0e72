package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkgerror"
	"github.com/shandysiswandi/goflightmesh/internal/pkg/pkglog"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func do(t *testing.T, r *Router, method, target string, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestRouter_Success(t *testing.T) {
	t.Parallel()

	r := NewRouter(fixedID("req-1"))
	var seen string
	r.GET("/ping", func(ctx context.Context, _ *http.Request) (any, error) {
		seen = pkglog.RequestID(ctx)
		return map[string]string{"pong": "ok"}, nil
	})

	rec, body := do(t, r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))
	assert.Equal(t, "req-1", seen)
	assert.True(t, body.Success)
	assert.Equal(t, map[string]any{"pong": "ok"}, body.Data)
}

func TestRouter_KeepsIncomingRequestID(t *testing.T) {
	t.Parallel()

	r := NewRouter(fixedID("generated"))
	r.GET("/ping", func(context.Context, *http.Request) (any, error) { return nil, nil })

	rec, _ := do(t, r, http.MethodGet, "/ping", http.Header{headerRequestID: {"from-client"}})
	assert.Equal(t, "from-client", rec.Header().Get(headerRequestID))
}

func TestRouter_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{name: "business", err: pkgerror.NewBusiness("origin is required", pkgerror.CodeInvalidInput), status: http.StatusBadRequest, msg: "origin is required"},
		{name: "unavailable", err: pkgerror.NewServer("down", pkgerror.CodeUnavailable, errors.New("db")), status: http.StatusServiceUnavailable, msg: "down"},
		{name: "internal_hides_message", err: pkgerror.NewServer("secret detail", pkgerror.CodeInternal, errors.New("db")), status: http.StatusInternalServerError, msg: "internal server error"},
		{name: "plain_error", err: errors.New("boom"), status: http.StatusInternalServerError, msg: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRouter(fixedID("id"))
			r.POST("/x", func(context.Context, *http.Request) (any, error) { return nil, tt.err })

			rec, body := do(t, r, http.MethodPost, "/x", nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, body.Success)
			assert.Equal(t, tt.msg, body.Message)
		})
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	t.Parallel()

	r := NewRouter(fixedID("id"))
	r.GET("/only-get", func(context.Context, *http.Request) (any, error) { return nil, nil })

	rec, body := do(t, r, http.MethodGet, "/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "route not found", body.Message)

	rec, body = do(t, r, http.MethodPost, "/only-get", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method not allowed", body.Message)
}

func TestRouter_Handle(t *testing.T) {
	t.Parallel()

	r := NewRouter(fixedID("id"))
	r.Handle("/raw", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"raw"}`))
	}))

	rec, body := do(t, r, http.MethodGet, "/raw", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "raw", body.Message)
	assert.Equal(t, "id", rec.Header().Get(headerRequestID))
}
