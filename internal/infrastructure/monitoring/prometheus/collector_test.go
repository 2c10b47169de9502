package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{Subsystem: "unit"}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", EnableProcessMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "process_cpu_seconds_total")
}

func TestRegisterCounter(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("docs_total", "docs", "status")
	vec.WithLabelValues("ok").Inc()
	vec.WithLabelValues("ok").Add(2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_docs_total{status="ok"} 3`)
}

func TestRegisterCounter_DuplicateSharesSeries(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("dup_total", "dup").WithLabelValues().Inc()
	c.RegisterCounter("dup_total", "dup").WithLabelValues().Inc()

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_dup_total 2")
}

func TestRegister_TypeMismatchIsNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("mixed", "mixed")
	g := c.RegisterGauge("mixed", "mixed")
	assert.IsType(t, noopGaugeVec{}, g)
	assert.NotPanics(t, func() { g.WithLabelValues().Set(1) })
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterGauge("ocr", "ocr").WithLabelValues().Set(1)
	c.RegisterHistogram("latency_seconds", "latency", nil, "op").WithLabelValues("convert").Observe(0.2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "test_unit_ocr 1")
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="convert"} 1`)
}

func TestMustRegister(t *testing.T) {
	c := newTestCollector(t)
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "raw_gauge", Help: "raw"})
	c.MustRegister(g)
	g.Set(4)
	assert.Contains(t, scrapeMetrics(t, c), "raw_gauge 4")
}

func TestTimer_NilHistogram(t *testing.T) {
	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}

//Personal.AI order the ending
