package servers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopstr/greenlight-backend/api"
	"github.com/shopstr/greenlight-backend/api/handlers"
	"github.com/shopstr/greenlight-backend/interfaces"
	"github.com/shopstr/greenlight-backend/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOffers struct {
	offer string
	err   error
}

func (s *stubOffers) CreateOffer(context.Context, *uint32) (string, error) { return s.offer, s.err }
func (s *stubOffers) Network() interfaces.Network                          { return interfaces.NetworkSignet }
func (s *stubOffers) SeedMode() seed.Mode                                  { return seed.ModeProcess }

type stubCreds bool

func (s stubCreds) Available(context.Context) bool { return bool(s) }

func newTestServer(t *testing.T, cfg *api.HTTPServerConfig) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg.Log = logger
	h := handlers.NewHandler(&stubOffers{offer: "lno1xyz"}, stubCreds(true), nil, logger)
	srv, err := New(cfg, h)
	require.NoError(t, err)
	return srv
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, &api.HTTPServerConfig{})

	w := get(srv, "/api/create-offer")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"BOLT 12 offer created successfully","data":{"offer":"lno1xyz"}}`, w.Body.String())

	w = get(srv, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"network":"signet"`)

	assert.Equal(t, http.StatusOK, get(srv, "/").Code)
	assert.Equal(t, http.StatusNotFound, get(srv, "/debug/pprof/").Code)
}

func TestProbesAndDrain(t *testing.T) {
	srv := newTestServer(t, &api.HTTPServerConfig{})

	assert.JSONEq(t, `{"status":"alive"}`, get(srv, "/livez").Body.String())
	assert.Equal(t, http.StatusOK, get(srv, "/readyz").Code)

	assert.JSONEq(t, `{"status":"draining"}`, get(srv, "/drain").Body.String())
	assert.JSONEq(t, `{"status":"already draining"}`, get(srv, "/drain").Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, get(srv, "/readyz").Code)

	assert.JSONEq(t, `{"status":"ready"}`, get(srv, "/undrain").Body.String())
	assert.JSONEq(t, `{"status":"already ready"}`, get(srv, "/undrain").Body.String())
	assert.Equal(t, http.StatusOK, get(srv, "/readyz").Code)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, &api.HTTPServerConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/create-offer", nil)
	req.Header.Set("Origin", "https://shopstr.store")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "X-Custom")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Headers"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.org")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPprofEnabled(t *testing.T) {
	srv := newTestServer(t, &api.HTTPServerConfig{EnablePprof: true})
	assert.Equal(t, http.StatusOK, get(srv, "/debug/pprof/").Code)
}
