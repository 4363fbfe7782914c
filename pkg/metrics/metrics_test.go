package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	m.Observe("get_address", 200, 20*time.Millisecond)
	m.Observe("get_address", 200, 30*time.Millisecond)
	m.Observe("search_flights", 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.invocations.WithLabelValues("get_address", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("search_flights", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestObserve_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Observe("x", 500, time.Second) })
}

func TestHandler(t *testing.T) {
	m := New()
	m.Observe("get_weather", 404, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `skills_invocations_total{function="get_weather",status="404"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
