package prometheus

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMetrics_RegistersAll(t *testing.T) {
	c := newTestCollector(t)
	m := NewMetrics(c)

	RecordConversion(m, "pdf", nil, 150*time.Millisecond, 3, 12)
	RecordConversion(m, "pdf", errors.New("boom"), time.Millisecond, 0, 0)
	RecordHTTPRequest(m, http.MethodPost, "/api/v1/convert", http.StatusOK, 10*time.Millisecond)
	RecordGRPCRequest(m, "/patent2rag.v1.Converter/Convert", "OK", 5*time.Millisecond)
	RecordSinkWrite(m, "minio", time.Millisecond, nil)
	RecordCacheAccess(m, "conversion", true)
	RecordCacheAccess(m, "conversion", false)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_conversions_total{format="pdf",status="success"} 1`)
	assert.Contains(t, out, `test_unit_conversions_total{format="pdf",status="failure"} 1`)
	assert.Contains(t, out, "test_unit_chunks_per_document_count 1")
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/convert",status_code="200"} 1`)
	assert.Contains(t, out, `test_unit_grpc_requests_total{code="OK",method="/patent2rag.v1.Converter/Convert"} 1`)
	assert.Contains(t, out, `test_unit_sink_writes_total{sink="minio",status="success"} 1`)
	assert.Contains(t, out, `test_unit_cache_hits_total{cache="conversion"} 1`)
	assert.Contains(t, out, `test_unit_cache_misses_total{cache="conversion"} 1`)
}

func TestRecord_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordConversion(nil, "pdf", nil, 0, 0, 0)
		RecordHTTPRequest(nil, "GET", "/", 200, 0)
		RecordGRPCRequest(nil, "/m", "OK", 0)
		RecordSinkWrite(nil, "s", 0, nil)
		RecordCacheAccess(nil, "c", true)
		RecordMessage(nil, "processed")
		RecordRetry(nil)
		TrackActive(nil, 1)
	})
}

func TestRecordMessage_Worker(t *testing.T) {
	c := newTestCollector(t)
	m := NewMetrics(c)

	RecordMessage(m, "processed")
	RecordMessage(m, "dead_lettered")
	RecordRetry(m)
	RecordRetry(m)
	TrackActive(m, 3)
	TrackActive(m, -1)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_worker_messages_total{status="processed"} 1`)
	assert.Contains(t, out, `test_unit_worker_messages_total{status="dead_lettered"} 1`)
	assert.Contains(t, out, "test_unit_worker_dead_lettered_total 1")
	assert.Contains(t, out, "test_unit_worker_retries_total 2")
	assert.Contains(t, out, "test_unit_worker_active 2")
}

//Personal.AI order the ending
