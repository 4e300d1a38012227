package admin_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klaxonwire/goircd/internal/admin"
	"github.com/klaxonwire/goircd/internal/metrics"
)

func TestHealthzReportsOkUntilMarkedUnhealthy(t *testing.T) {
	s := admin.New(metrics.NewPrometheus())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.MarkUnhealthy()

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpointExposesGauges(t *testing.T) {
	rec := metrics.NewPrometheus()
	rec.SetUsers(7)
	s := admin.New(rec)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "goircd_connected_users 7")
}
