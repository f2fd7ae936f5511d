package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/profilespectre/internal/models"
	"github.com/ppiankov/profilespectre/pkg/config"
)

const (
	// HeaderAPIKey carries the static API credential on every call.
	HeaderAPIKey = "ApiKey"
	// HeaderProjectUID is the scoping context for project-scoped calls.
	HeaderProjectUID = "ProjectUid"

	maxResponseBodyBytes int64 = 16 * 1024 * 1024
	maxErrorBodyChars          = 300
)

// ErrMalformedResponse is returned for responses that claim success but carry
// an empty or non-JSON body.
var ErrMalformedResponse = errors.New("malformed API response")

// APIError represents an HTTP-level failure from the management API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request %s %s failed: status=%d body=%q", e.Method, e.Path, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, models.ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == models.ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Response is a normalized successful API response. Empty is set for 204.
type Response struct {
	StatusCode int
	Body       json.RawMessage
	Empty      bool
}

// Client issues authenticated calls against the management API.
// Every call is attempted exactly once.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *RateLimiter
}

// NewClient creates a client for cfg.APIEndpoint authenticated with cfg.APIKey.
func NewClient(cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, config.ErrMissingAPIKey
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.APIEndpoint), "/")
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid API endpoint %q: expected http(s)://host", cfg.APIEndpoint)
	}

	return &Client{
		baseURL: endpoint,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: NewRateLimiter(cfg.RateLimit),
	}, nil
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Execute performs a JSON call. body may be nil. projectUID, when non-empty,
// is sent as the scoping header.
func (c *Client) Execute(ctx context.Context, method, path string, body any, projectUID string) (*Response, error) {
	status, data, err := c.do(ctx, method, path, body, projectUID, "application/json")
	if err != nil {
		return nil, err
	}

	if status == http.StatusNoContent {
		return &Response{StatusCode: status, Empty: true}, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: %s %s status=%d: empty body", ErrMalformedResponse, method, path, status)
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: %s %s status=%d: body is not JSON: %q", ErrMalformedResponse, method, path, status, truncate(string(trimmed)))
	}

	return &Response{StatusCode: status, Body: json.RawMessage(trimmed)}, nil
}

// ExecuteRaw performs a binary-accepting GET and returns the body unchanged.
func (c *Client) ExecuteRaw(ctx context.Context, path string, projectUID string) ([]byte, error) {
	status, data, err := c.do(ctx, http.MethodGet, path, nil, projectUID, "application/octet-stream")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(data) == 0 {
		return nil, fmt.Errorf("%w: GET %s status=%d: empty body", ErrMalformedResponse, path, status)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, projectUID, accept string) (status int, data []byte, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body for %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if projectUID != "" {
		req.Header.Set(HeaderProjectUID, projectUID)
	}

	slog.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("project_uid", projectUID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("api request %s %s failed: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close response body for %s %s: %w", method, path, closeErr)
		}
	}()

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes+1))
	if err != nil {
		return 0, nil, fmt.Errorf("read response for %s %s: %w", method, path, err)
	}
	if int64(len(data)) > maxResponseBodyBytes {
		return 0, nil, fmt.Errorf("response for %s %s exceeds %d bytes", method, path, maxResponseBodyBytes)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		message := strings.TrimSpace(string(data))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return 0, nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(message),
		}
	}

	return resp.StatusCode, data, nil
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxErrorBodyChars {
		return s
	}
	return string(runes[:maxErrorBodyChars]) + "..."
}
