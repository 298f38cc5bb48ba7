package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/problem-bank/internal/config"
	"github.com/gokatarajesh/problem-bank/internal/logging"
)

func testConfig() *config.App {
	return &config.App{
		HTTPAddr: "127.0.0.1:0",
		CORS: config.CORS{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           600,
		},
	}
}

type routesFunc func(mux *http.ServeMux, guard func(http.Handler) http.Handler)

func (f routesFunc) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	f(mux, guard)
}

func TestHealthz(t *testing.T) {
	h := NewHandler(testConfig(), zerolog.Nop(), Options{Gatherer: prometheus.NewRegistry()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestPingReportsFailingDependency(t *testing.T) {
	ok := Dependency{Name: "postgres", Ping: func(context.Context) error { return nil }}
	down := Dependency{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	h := NewHandler(testConfig(), zerolog.Nop(), Options{Deps: []Dependency{ok}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHandler(testConfig(), zerolog.Nop(), Options{Deps: []Dependency{ok, down}})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"upstream_error","message":"Upstream dependency unavailable"}`, rec.Body.String())
}

func TestPingDependenciesNamesFailure(t *testing.T) {
	boom := errors.New("timeout")
	err := pingDependencies(context.Background(), []Dependency{{Name: "redis", Ping: func(context.Context) error { return boom }}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "redis: timeout", err.Error())
}

func TestRequestLoggerReachesRoutes(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	routes := routesFunc(func(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
		mux.HandleFunc("GET /v1/problems", func(w http.ResponseWriter, r *http.Request) {
			l := logging.FromContext(r.Context())
			l.Info().Msg("inside handler")
			w.WriteHeader(http.StatusTeapot)
		})
	})

	h := NewHandler(testConfig(), logger, Options{Problems: routes})
	req := httptest.NewRequest(http.MethodGet, "/v1/problems", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
	assert.Contains(t, buf.String(), `"message":"inside handler"`)
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"status":418`)
}

func TestCORSPreflight(t *testing.T) {
	h := NewHandler(testConfig(), zerolog.Nop(), Options{})

	req := httptest.NewRequest(http.MethodOptions, "/v1/problems", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	h := NewHandler(testConfig(), zerolog.Nop(), Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
