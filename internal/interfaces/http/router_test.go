package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/internal/application/conversion"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent2rag/internal/interfaces/http/handlers"
	"github.com/turtacn/patent2rag/internal/interfaces/http/middleware"
)

const samplePatentText = `【요약】
리튬 이차전지용 분리막에 관한 것이다.
【청구범위】
청구항 1. 다공성 기재를 포함하는 분리막.
청구항 2. 제1항에 있어서, 두께가 10 내지 20 ㎛인 분리막.
【발명의 설명】
본 발명은 이차전지용 분리막에 관한 것이다.
`

func newTestRouter(t *testing.T, limiter middleware.RateLimiter) (http.Handler, prometheus.MetricsCollector) {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test", Subsystem: "router"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewMetrics(collector)

	svc := conversion.NewService(conversion.DefaultConfig(), conversion.WithMetrics(metrics))
	return NewRouter(RouterConfig{
		ConvertHandler:   handlers.NewConvertHandler(svc, nil, 1<<20, nil),
		HealthHandler:    handlers.NewHealthHandler("test"),
		RateLimiter:      limiter,
		Metrics:          metrics,
		MetricsCollector: collector,
	}), collector
}

func postText(router http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(samplePatentText))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set(handlers.FileNameHeader, "KR1020230001234.txt")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Convert(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, nil)

	rec := postText(router, "/api/v1/convert")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result conversion.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Document)
	assert.Equal(t, "KR1020230001234.txt", result.Document.FileName)
	assert.Len(t, result.Document.DocID, 32)
	assert.NotEmpty(t, result.Chunks)
	for _, c := range result.Chunks {
		assert.Equal(t, result.Document.DocID, c.DocID)
	}
}

func TestRouter_ConvertJSONL(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, nil)

	rec := postText(router, "/api/v1/convert/jsonl")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get("X-Doc-ID"), 32)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)), line)
	}
}

func TestRouter_ProbesAndMetrics(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, nil)
	postText(router, "/api/v1/convert")

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Regexp(t, `test_router_http_requests_total\{method="POST",path="/api/v1/convert[^"]*",status_code="200"\} 1`, body)
	assert.Contains(t, body, `test_router_conversions_total{format="text",status="success"} 1`)
}

func TestRouter_RateLimitOnlyGuardsAPI(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, middleware.NewTokenBucketLimiter(0.001, 1))

	assert.Equal(t, http.StatusOK, postText(router, "/api/v1/convert").Code)
	assert.Equal(t, http.StatusTooManyRequests, postText(router, "/api/v1/convert").Code)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/convert", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

//Personal.AI order the ending
