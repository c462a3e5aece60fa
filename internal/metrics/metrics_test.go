package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Counts(t *testing.T) {
	r := NewRegistry()
	r.CountAnalysis("ok")
	r.CountAnalysis("ok")
	r.CountAnalysis("no_data_found")
	r.ObserveHTTP("/api/v1/volatility/{ticker}", "200", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Analyses.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Analyses.WithLabelValues("no_data_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.HTTPRequests.WithLabelValues("/api/v1/volatility/{ticker}", "200")))
}

func TestRegistry_NilIsSafe(t *testing.T) {
	var r *Registry
	r.CountAnalysis("ok")
	r.ObserveFetch("yahoo", "ok", time.Second)
	r.ObserveHTTP("/", "200", time.Second)
	r.CountSnapshot("ok")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveFetch("yahoo", "ok", 120*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "volscope_fetch_duration_seconds")
}
