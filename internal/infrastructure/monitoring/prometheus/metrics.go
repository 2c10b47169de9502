package prometheus

import (
	"strconv"
	"time"
)

// Metrics holds the application metric vectors.
type Metrics struct {
	// Conversion pipeline
	ConversionsTotal    CounterVec
	ConversionDuration  HistogramVec
	ChunksProduced      HistogramVec
	ClaimsParsed        HistogramVec
	AcquisitionsTotal   CounterVec
	OCRAvailability     GaugeVec
	CitationAttribution CounterVec

	// Transports
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	GRPCRequestsTotal   CounterVec
	GRPCRequestDuration HistogramVec

	// Sinks and cache
	SinkWritesTotal  CounterVec
	SinkDuration     HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// Worker
	MessagesTotal     CounterVec
	ActiveWorkers     GaugeVec
	MessageRetries    CounterVec
	DeadLetteredTotal CounterVec
	BatchFilesTotal   CounterVec
}

var (
	DefaultHTTPDurationBuckets       = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultConversionDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120}
	DefaultCountBuckets              = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000}
	DefaultSinkDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewMetrics registers every vector on collector.
func NewMetrics(collector MetricsCollector) *Metrics {
	m := &Metrics{}

	m.ConversionsTotal = collector.RegisterCounter("conversions_total", "Documents converted", "format", "status")
	m.ConversionDuration = collector.RegisterHistogram("conversion_duration_seconds", "Conversion duration", DefaultConversionDurationBuckets, "format")
	m.ChunksProduced = collector.RegisterHistogram("chunks_per_document", "Chunks emitted per document", DefaultCountBuckets)
	m.ClaimsParsed = collector.RegisterHistogram("claims_per_document", "Claims parsed per document", DefaultCountBuckets)
	m.AcquisitionsTotal = collector.RegisterCounter("acquisitions_total", "Text acquisitions by method", "method")
	m.OCRAvailability = collector.RegisterGauge("ocr_available", "OCR engine availability (1=available)")
	m.CitationAttribution = collector.RegisterCounter("citation_attributions_total", "Chunks by citation outcome", "outcome")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.GRPCRequestsTotal = collector.RegisterCounter("grpc_requests_total", "Total gRPC requests", "method", "code")
	m.GRPCRequestDuration = collector.RegisterHistogram("grpc_request_duration_seconds", "gRPC request duration", DefaultHTTPDurationBuckets, "method")

	m.SinkWritesTotal = collector.RegisterCounter("sink_writes_total", "Sink writes", "sink", "status")
	m.SinkDuration = collector.RegisterHistogram("sink_duration_seconds", "Sink write duration", DefaultSinkDurationBuckets, "sink")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.MessagesTotal = collector.RegisterCounter("worker_messages_total", "Ingest messages handled", "status")
	m.ActiveWorkers = collector.RegisterGauge("worker_active", "Ingest handlers in flight")
	m.MessageRetries = collector.RegisterCounter("worker_retries_total", "Ingest handler retries")
	m.DeadLetteredTotal = collector.RegisterCounter("worker_dead_lettered_total", "Ingest messages sent to the dead-letter topic")
	m.BatchFilesTotal = collector.RegisterCounter("batch_files_total", "Batch files processed", "status")

	return m
}

// RecordConversion records one conversion outcome.
func RecordConversion(m *Metrics, format string, err error, d time.Duration, claims, chunks int) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.ConversionsTotal.WithLabelValues(format, status).Inc()
	m.ConversionDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		m.ClaimsParsed.WithLabelValues().Observe(float64(claims))
		m.ChunksProduced.WithLabelValues().Observe(float64(chunks))
	}
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *Metrics, method, path string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordGRPCRequest records one unary call.
func RecordGRPCRequest(m *Metrics, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordSinkWrite records one sink write.
func RecordSinkWrite(m *Metrics, sink string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.SinkWritesTotal.WithLabelValues(sink, status).Inc()
	m.SinkDuration.WithLabelValues(sink).Observe(d.Seconds())
}

// RecordCacheAccess records a cache hit or miss.
func RecordCacheAccess(m *Metrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordMessage records the final outcome of one ingest message.
func RecordMessage(m *Metrics, status string) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(status).Inc()
	if status == "dead_lettered" {
		m.DeadLetteredTotal.WithLabelValues().Inc()
	}
}

// RecordRetry records one handler retry.
func RecordRetry(m *Metrics) {
	if m == nil {
		return
	}
	m.MessageRetries.WithLabelValues().Inc()
}

// TrackActive adjusts the in-flight handler gauge by delta.
func TrackActive(m *Metrics, delta int) {
	if m == nil {
		return
	}
	g := m.ActiveWorkers.WithLabelValues()
	for ; delta > 0; delta-- {
		g.Inc()
	}
	for ; delta < 0; delta++ {
		g.Dec()
	}
}

//Personal.AI order the ending
