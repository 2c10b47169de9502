// Package client is the Go SDK for the patent2rag HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/patent2rag/pkg/errors"
	"github.com/turtacn/patent2rag/pkg/types/patent"
)

const Version = "0.1.0"

const (
	convertPath      = "/api/v1/convert"
	convertJSONLPath = "/api/v1/convert/jsonl"
	readyPath        = "/readyz"

	fileNameHeader  = "X-File-Name"
	docIDHeader     = "X-Doc-ID"
	requestIDHeader = "X-Request-ID"
)

// Logger defines the logging interface used by the Client
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client talks to a patent2rag server.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// APIError represents an error response from the API
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("patent2rag: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, e.Message, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsUnprocessable reports a document the server could not open.
func (e *APIError) IsUnprocessable() bool {
	return e.StatusCode == http.StatusUnprocessableEntity || e.StatusCode == http.StatusUnsupportedMediaType
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// ConvertOptions are the per-request chunking parameters. Zero values keep
// the server defaults.
type ConvertOptions struct {
	TargetTokens  int
	OverlapTokens int
	// Publish forwards the result to the server's configured sinks.
	Publish bool
}

func (o ConvertOptions) query() url.Values {
	q := url.Values{}
	if o.TargetTokens > 0 {
		q.Set("target_tokens", strconv.Itoa(o.TargetTokens))
	}
	if o.OverlapTokens > 0 {
		q.Set("overlap_tokens", strconv.Itoa(o.OverlapTokens))
	}
	if o.Publish {
		q.Set("publish", "true")
	}
	return q
}

// Result is a converted document with its retrieval chunks.
type Result struct {
	Document *patent.Document `json:"document"`
	Chunks   []patent.Chunk   `json:"chunks"`
}

// ReadyStatus is the /readyz body.
type ReadyStatus struct {
	Status     string `json:"status"`
	Components map[string]struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	} `json:"components,omitempty"`
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "baseURL is required")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid baseURL")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeValidation, "baseURL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		userAgent:    fmt.Sprintf("patent2rag-go-sdk/%s", Version),
		logger:       &noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Convert uploads data as fileName and returns the converted document.
func (c *Client) Convert(ctx context.Context, fileName string, data []byte, opts ConvertOptions) (*Result, error) {
	if err := checkUpload(fileName, data); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, convertPath, opts.query(), fileName, data)
	if err != nil {
		return nil, err
	}
	var r Result
	if err := json.Unmarshal(resp.body, &r); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode response")
	}
	return &r, nil
}

// ConvertJSONL uploads data and returns only the chunks, streamed by the
// server as JSON Lines, with the document id.
func (c *Client) ConvertJSONL(ctx context.Context, fileName string, data []byte, opts ConvertOptions) (docID string, chunks []patent.Chunk, err error) {
	if err := checkUpload(fileName, data); err != nil {
		return "", nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, convertJSONLPath, opts.query(), fileName, data)
	if err != nil {
		return "", nil, err
	}
	chunks, err = patent.ReadChunksJSONL(bytes.NewReader(resp.body))
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode chunk stream")
	}
	return resp.header.Get(docIDHeader), chunks, nil
}

// Ready queries the readiness probe. A not-ready server returns the status
// together with an *APIError.
func (c *Client) Ready(ctx context.Context) (*ReadyStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, readyPath, nil, "", nil)
	var apiErr *APIError
	if err != nil && !(errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable) {
		return nil, err
	}
	var status ReadyStatus
	body := resp.body
	if apiErr != nil {
		body = []byte(apiErr.Detail)
	}
	if len(body) > 0 {
		if jerr := json.Unmarshal(body, &status); jerr != nil {
			return nil, errors.Wrap(jerr, errors.ErrCodeSerialization, "failed to decode readiness")
		}
	}
	return &status, err
}

func checkUpload(fileName string, data []byte) error {
	if fileName == "" {
		return errors.New(errors.ErrCodeValidation, "fileName is required")
	}
	if len(data) == 0 {
		return errors.New(errors.ErrCodeValidation, "data is empty")
	}
	return nil
}

type response struct {
	header http.Header
	body   []byte
}

// do performs an HTTP request with retry logic
func (c *Client) do(ctx context.Context, method, path string, query url.Values, fileName string, body []byte) (response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	requestID := uuid.New().String()

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("Retry attempt %d after %v", attempt, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return response{}, ctx.Err()
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return response{}, fmt.Errorf("failed to create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/octet-stream")
		}
		if fileName != "" {
			req.Header.Set(fileNameHeader, fileName)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set(requestIDHeader, requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)
		if err != nil {
			c.logger.Errorf("Request failed: %v", err)
			lastErr = err
			if ctx.Err() != nil {
				return response{}, ctx.Err()
			}
			continue
		}
		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, duration)

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return response{}, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.retryMax {
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				c.logger.Infof("Rate limited, retrying after %d seconds", seconds)
				select {
				case <-time.After(time.Duration(seconds) * time.Second):
					lastErr = newAPIError(resp.StatusCode, requestID, respBody)
					continue
				case <-ctx.Done():
					return response{}, ctx.Err()
				}
			}
		}

		if resp.StatusCode >= 400 {
			apiErr := newAPIError(resp.StatusCode, requestID, respBody)
			lastErr = apiErr
			if apiErr.IsServerError() && resp.StatusCode != http.StatusServiceUnavailable {
				continue
			}
			return response{header: resp.Header}, apiErr
		}
		return response{header: resp.Header, body: respBody}, nil
	}
	return response{}, lastErr
}

func newAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Status  string `json:"status"`
	}
	switch {
	case len(body) == 0:
	case json.Unmarshal(body, &errResp) == nil && errResp.Code != "":
		apiErr.Code, apiErr.Message, apiErr.Detail = errResp.Code, errResp.Message, errResp.Detail
	default:
		apiErr.Message = http.StatusText(status)
		apiErr.Detail = string(body)
	}
	return apiErr
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	// Exponential backoff with jitter
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}

	// Add jitter (0-25% of backoff)
	if q := int64(backoff / 4); q > 0 {
		backoff += time.Duration(rand.Int63n(q))
	}
	return backoff
}

//Personal.AI order the ending
