package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/nakupi/internal/auth"
)

// Client talks to the purchase-tracking backend.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	now     func() time.Time
}

// NewClient creates a client for the given base URL (e.g. "http://host/api").
// token is an optional bearer token for deployments behind an auth proxy.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &loggingTransport{next: http.DefaultTransport},
		},
		now: time.Now,
	}
}

// StatusError is returned when the backend rejects a request. Message holds
// the backend's own error message, verbatim.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// DecodeError is returned when a response body does not match the expected
// shape. Missing required fields fail here instead of defaulting silently.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "decoding response: " + e.Reason
}

// do runs a request against the backend. A non-nil body is sent as JSON.
// Responses with status >= 400 are turned into a StatusError carrying the
// backend's error message; the caller owns closing the body otherwise.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if c.token != "" {
		expired, err := auth.Expired(c.token, c.now())
		if err != nil {
			return nil, fmt.Errorf("checking token: %w", err)
		}
		if expired {
			return nil, fmt.Errorf("bearer token has expired, log in again")
		}
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body, resp.StatusCode),
		}
	}

	return resp, nil
}

// decode closes the response body after decoding it into target.
func decode(resp *http.Response, target any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &DecodeError{Reason: err.Error()}
	}
	return nil
}

// errorMessage extracts the backend's error message from an error response.
// The backend uses {"detail": "..."}; older deployments use {"error": "..."}.
func errorMessage(body io.Reader, status int) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return fmt.Sprintf("server returned status %d", status)
}

// loggingTransport logs each request with method, path, status and duration.
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		slog.Warn("api request failed",
			"method", req.Method, "path", req.URL.Path, "error", err)
		return nil, err
	}
	slog.Debug("api request",
		"method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start).Round(time.Millisecond))
	return resp, nil
}
