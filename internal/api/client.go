// Package api is an HTTP client for the Adaptive LMS backend. Responses are
// kept as raw JSON plus a lenient decode so the console can display exactly
// what the server sent.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL matches the backend's local development address.
const DefaultBaseURL = "http://localhost:8000"

// Client issues requests against one backend instance.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a client for the given base URL. A nil logger disables
// debug logging.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// Result holds one successful response.
type Result struct {
	Status    int
	RequestID string
	Latency   time.Duration
	Body      []byte // raw response body
	Value     any    // decoded body, nil when the body is empty
}

// APIError is a non-2xx response. Detail carries the backend's
// {"detail": ...} payload when present so it can be highlighted like any
// other JSON value.
type APIError struct {
	Status    int
	RequestID string
	Latency   time.Duration
	Detail    any
	Body      []byte
}

func (e *APIError) Error() string {
	if s, ok := e.Detail.(string); ok && s != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, s)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Result, error) {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("url", u),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	latency := time.Since(start)

	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("url", u),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
		zap.Int("bytes", len(data)),
	)

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			Status:    resp.StatusCode,
			RequestID: requestID,
			Latency:   latency,
			Detail:    errorDetail(data),
			Body:      data,
		}
	}

	result := &Result{
		Status:    resp.StatusCode,
		RequestID: requestID,
		Latency:   latency,
		Body:      data,
	}
	if len(bytes.TrimSpace(data)) > 0 {
		// Keep the raw body authoritative even if decoding fails; the
		// console falls back to showing it verbatim.
		var value any
		if err := json.Unmarshal(data, &value); err == nil {
			result.Value = value
		}
	}
	return result, nil
}

// errorDetail extracts FastAPI's {"detail": ...} payload. Anything else
// comes back as the decoded body, or nil if it is not JSON.
func errorDetail(data []byte) any {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err == nil {
		if detail, ok := body["detail"]; ok {
			return detail
		}
		return body
	}
	var value any
	if err := json.Unmarshal(data, &value); err == nil {
		return value
	}
	return nil
}
