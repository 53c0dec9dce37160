package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/freightwatch-systems/risk-engine/internal/handlers"
	"github.com/freightwatch-systems/risk-engine/internal/logging"
)

func newTestRouter() http.Handler {
	h := handlers.NewHandler(nil, nil, logging.New(logging.ParseLevel("error"), "text"))
	return NewRouter(h)
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		expected int
	}{
		{name: "healthz", method: "GET", path: "/healthz", expected: 200},
		{name: "metrics", method: "GET", path: "/metrics", expected: 200},
		{name: "list without store", method: "GET", path: "/api/v1/assessments", expected: 503},
		{name: "list wrong method", method: "POST", path: "/api/v1/assessments", expected: 405},
		{name: "latest without store", method: "GET", path: "/api/v1/assessments/SHIP1/latest", expected: 503},
		{name: "latest wrong suffix", method: "GET", path: "/api/v1/assessments/SHIP1", expected: 404},
		{name: "dlq stats", method: "GET", path: "/api/v1/dlq/stats", expected: 200},
		{name: "dlq stats wrong method", method: "DELETE", path: "/api/v1/dlq/stats", expected: 405},
		{name: "dlq events wrong method", method: "POST", path: "/api/v1/dlq/events", expected: 405},
		{name: "unknown path", method: "GET", path: "/api/v1/unknown", expected: 404},
	}

	router := newTestRouter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}
