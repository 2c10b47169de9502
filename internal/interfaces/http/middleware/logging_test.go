package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
)

func newObservedLogger() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return logging.NewLoggerFromCore(core), logs
}

func TestRequestLogging_Levels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		level  string
		msg    string
	}{
		{name: "ok", status: http.StatusOK, level: "info", msg: "HTTP request completed"},
		{name: "client error", status: http.StatusUnprocessableEntity, level: "warn", msg: "HTTP request rejected"},
		{name: "server error", status: http.StatusBadGateway, level: "error", msg: "HTTP request failed"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, logs := newObservedLogger()
			r := chi.NewRouter()
			r.Use(RequestLogging(logger, nil, DefaultLoggingConfig()))
			r.Post("/api/v1/convert", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("{}"))
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/convert", nil)
			req.Header.Set("X-File-Name", "KR102.pdf")
			r.ServeHTTP(httptest.NewRecorder(), req)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level.String())
			assert.Equal(t, tt.msg, entries[0].Message)
			fields := entries[0].ContextMap()
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, "KR102.pdf", fields[logging.FieldFileName])
			assert.Equal(t, int64(2), fields["bytes"])
		})
	}
}

func TestRequestLogging_SkipsProbes(t *testing.T) {
	t.Parallel()
	logger, logs := newObservedLogger()
	handler := RequestLogging(logger, nil, DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Zero(t, logs.Len())
}

//Personal.AI order the ending
