package opensearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent2rag/internal/config"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/pkg/errors"
)

func newTestServer(statusCode int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
	}))
}

func newTestConfig(addr string) ClientConfig {
	return ClientConfig{Addresses: []string{addr}}
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     ClientConfig
		wantErr bool
	}{
		{"valid", ClientConfig{Addresses: []string{"http://localhost:9200"}}, false},
		{"empty addresses", ClientConfig{}, true},
		{"negative retries", ClientConfig{Addresses: []string{"http://localhost:9200"}, MaxRetries: -1}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateConfig(tt.cfg)
			if tt.wantErr {
				assert.True(t, errors.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientConfigFrom(t *testing.T) {
	t.Parallel()
	cfg := ClientConfigFrom(config.OpenSearchConfig{
		Addresses:          []string{"https://os:9200"},
		Username:           "admin",
		Password:           "secret",
		InsecureSkipVerify: true,
	})
	assert.Equal(t, []string{"https://os:9200"}, cfg.Addresses)
	assert.Equal(t, "admin", cfg.Username)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestNewClient_Success(t *testing.T) {
	server := newTestServer(http.StatusOK)
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.IsHealthy())
	assert.NotNil(t, client.GetClient())
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	server := newTestServer(http.StatusInternalServerError)
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), logging.NewNopLogger())
	assert.Nil(t, client)
	assert.True(t, errors.IsCode(err, errors.ErrCodeIndexError))
}

func TestClient_PingFailureMarksUnhealthy(t *testing.T) {
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	failing.Store(true)
	assert.Error(t, client.Ping(context.Background()))
	assert.False(t, client.IsHealthy())
}

func TestClient_CloseTwice(t *testing.T) {
	server := newTestServer(http.StatusOK)
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL), logging.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}

//Personal.AI order the ending
