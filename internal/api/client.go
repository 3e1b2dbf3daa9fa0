// Package api is the single point of contact with the Soul Paradise backend
// REST API.
//
// Every call goes through one request helper that encodes JSON bodies,
// attaches bearer tokens, and normalizes failures into *domain.APIError so
// callers can branch on StatusCode uniformly: 0 means the request never
// reached the server, anything else is the backend's verdict verbatim.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/soulparadise/web/internal/domain"
	"github.com/soulparadise/web/internal/metrics"
)

// Client talks to the backend API. It is stateless and safe for concurrent
// use; tokens are supplied per call by the session controller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a backend API client. baseURL must not end with a slash
// (config trims it). The timeout applies to every request.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// MessageResponse is the `{message}` success shape shared by logout,
// verification and password reset endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// do performs one backend call. bearer is attached as an Authorization
// header when non-empty; body is JSON-encoded when non-nil; the response
// body is decoded into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, bearer string, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return domain.Internal(err, "api.do", "failed to encode request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return domain.Internal(err, "api.do", "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response reached us: timeout, refused connection, DNS failure.
		c.logger.Warn("backend unreachable", "method", method, "path", path, "error", err)
		metrics.BackendRequests.WithLabelValues(path, "0").Inc()
		return &domain.APIError{
			Message:    domain.NetworkErrorMessage,
			StatusCode: 0,
		}
	}
	defer resp.Body.Close()

	metrics.BackendRequests.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.BackendRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.APIError{
			Message:    domain.NetworkErrorMessage,
			StatusCode: 0,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			// A 2xx with an undecodable body is treated like a transport
			// failure so every caller still sees a uniform APIError.
			c.logger.Error("backend returned malformed body",
				"method", method,
				"path", path,
				"status", resp.StatusCode,
				"error", err,
			)
			return &domain.APIError{
				Message:    domain.NetworkErrorMessage,
				StatusCode: 0,
			}
		}
	}

	return nil
}

// errorFromResponse builds an APIError from a non-2xx backend response.
// The backend returns failures as {message, statusCode, error?}; when the
// body does not decode, the HTTP status alone drives the error.
func (c *Client) errorFromResponse(status int, body []byte) *domain.APIError {
	apiErr := &domain.APIError{
		Message:    "An error occurred",
		StatusCode: status,
	}

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			apiErr.Message = parsed.Message
		}
		apiErr.Code = parsed.Error
	}

	return apiErr
}

// get is a convenience wrapper for authenticated GET requests.
func (c *Client) get(ctx context.Context, path, bearer string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, bearer, out)
}

// post is a convenience wrapper for POST requests.
func (c *Client) post(ctx context.Context, path string, body interface{}, bearer string, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, bearer, out)
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
