package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler(reg))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestObserveBackend(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBackend("get_lead", time.Now(), nil)
	m.ObserveBackend("get_lead", time.Now(), errors.New("boom"))
	m.ObserveBackend("get_lead", time.Now(), nil)

	body := scrape(t, reg)
	assert.Contains(t, body, `leadintake_backend_requests_total{operation="get_lead",outcome="ok"} 2`)
	assert.Contains(t, body, `leadintake_backend_requests_total{operation="get_lead",outcome="error"} 1`)
	assert.Contains(t, body, `leadintake_backend_request_seconds_count{operation="get_lead"} 3`)

	var nilMetrics *Metrics
	nilMetrics.ObserveBackend("noop", time.Now(), nil)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Submissions.WithLabelValues("create", "ok").Inc()

	assert.Contains(t, scrape(t, reg), `leadintake_submissions_total{mode="create",outcome="ok"} 1`)
}
