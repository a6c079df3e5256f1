package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OpinionGraph/internal/testutil"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, testutil.NewMockLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessAndGoMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableGoMetrics: true, EnableProcessMetrics: true}, nil)
	require.NoError(t, err)
	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "go_goroutines")
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("runs_total", "runs", "status")
	vec.WithLabelValues("ok").Inc()
	vec.WithLabelValues("ok").Add(2)

	assert.Contains(t, scrapeMetrics(t, c), `test_runs_total{status="ok"} 3`)
}

func TestRegisterCounter_SameNameReturnsExisting(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("runs_total", "runs", "status").WithLabelValues("ok").Inc()
	c.RegisterCounter("runs_total", "runs", "status").WithLabelValues("ok").Inc()

	assert.Contains(t, scrapeMetrics(t, c), `test_runs_total{status="ok"} 2`)
}

func TestRegister_TypeMismatchFallsBackToNoop(t *testing.T) {
	logger := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, logger)
	require.NoError(t, err)

	c.RegisterCounter("things", "things", "k")
	g := c.RegisterGauge("things", "things", "k")
	assert.NotPanics(t, func() { g.WithLabelValues("v").Set(4) })
	assert.True(t, logger.HasMessage("warn", "metric type mismatch"))
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)
	g := c.RegisterGauge("depth", "depth", "queue")
	g.WithLabelValues("submit").Set(3)
	g.WithLabelValues("submit").Inc()
	g.WithLabelValues("submit").Dec()

	h := c.RegisterHistogram("latency_seconds", "latency", []float64{0.1, 1}, "op")
	h.WithLabelValues("match").Observe(0.5)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_depth{queue="submit"} 3`)
	assert.Contains(t, out, `test_latency_seconds_bucket{op="match",le="1"} 1`)
	assert.Contains(t, out, `test_latency_seconds_count{op="match"} 1`)
}

func TestTimer(t *testing.T) {
	c := newTestCollector(t)
	h := c.RegisterHistogram("timed_seconds", "timed", nil, "op")

	timer := NewTimer(h.WithLabelValues("x"))
	time.Sleep(time.Millisecond)
	assert.Greater(t, timer.ObserveDuration(), time.Duration(0))
	assert.Contains(t, scrapeMetrics(t, c), `test_timed_seconds_count{op="x"} 1`)

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

//Personal.AI order the ending
