/**
 * @description
 * This package provides a client for interacting with the Griffin banking API.
 * It encapsulates the logic for making authenticated HTTP requests against the
 * resource URLs the API hands out, and for resolving the organization context that
 * organization-scoped collections hang off.
 *
 * Key features:
 * - Accepts absolute or relative resource URLs (HATEOAS-style navigation).
 * - Raises *APIError with the status code and raw body on any non-2xx response.
 * - Retries idempotent GETs with exponential backoff; never retries writes.
 * - Resolves the organization URL once per client and reuses it.
 *
 * @dependencies
 * - github.com/cenkalti/backoff/v4: retry policy for GETs.
 * - golang.org/x/sync/singleflight: shares one index lookup between racing callers.
 */
package griffinclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultBaseURL is the production Griffin API host.
	DefaultBaseURL = "https://api.griffin.com"

	defaultRequestTimeout = 30 * time.Second
	defaultMaxGetRetries  = 3
	defaultRetryInterval  = 250 * time.Millisecond
	maxRetryInterval      = 5 * time.Second
)

// APIError is returned when the Griffin API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
	Method     string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("griffin API error (%d): %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed if repeated.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client is a client for the Griffin API.
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	logger        *slog.Logger
	maxGetRetries int
	retryInterval time.Duration
	org           orgURLCell
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRequestTimeout bounds every individual HTTP call.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithGetRetries sets how many times a failed GET is repeated and the first backoff
// interval. Zero retries disables retrying.
func WithGetRetries(maxRetries int, initialInterval time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxGetRetries = maxRetries
		}
		if initialInterval > 0 {
			c.retryInterval = initialInterval
		}
	}
}

// WithOrganizationURL pre-seeds the organization URL so no index lookup is made.
func WithOrganizationURL(organizationURL string) Option {
	return func(c *Client) { c.org.set(organizationURL) }
}

// NewClient creates a new Griffin API client.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		logger:        slog.Default(),
		maxGetRetries: defaultMaxGetRetries,
		retryInterval: defaultRetryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs an authenticated request against resourceURL and decodes the JSON
// response into target (when non-nil). body is encoded only for POST, PUT and PATCH.
func (c *Client) Fetch(ctx context.Context, method, resourceURL string, body, target interface{}) error {
	if strings.TrimSpace(resourceURL) == "" {
		return errors.New("resource URL is required")
	}
	if method != http.MethodGet || c.maxGetRetries == 0 {
		return c.do(ctx, method, resourceURL, body, target)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.MaxInterval = maxRetryInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := c.do(ctx, method, resourceURL, nil, target)
		if err == nil {
			return nil
		}
		if !isRetryable(ctx, err) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("griffin GET failed; retrying",
			"component", "griffin_client", "url", resourceURL, "attempt", attempt, "err", err)
		return err
	}

	retryPolicy := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxGetRetries)), ctx)
	return backoff.Retry(operation, retryPolicy)
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var encErr *encodingError
	return !errors.As(err, &encErr)
}

// encodingError marks failures that repeating the request cannot fix.
type encodingError struct{ err error }

func (e *encodingError) Error() string { return e.err.Error() }
func (e *encodingError) Unwrap() error { return e.err }

// do is a helper function to make a single HTTP request to the Griffin API.
func (c *Client) do(ctx context.Context, method, resourceURL string, body, target interface{}) error {
	var reqBody io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return &encodingError{fmt.Errorf("failed to marshal request body: %w", err)}
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	url := c.resolve(resourceURL)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return &encodingError{fmt.Errorf("failed to create http request: %w", err)}
	}

	req.Header.Set("Authorization", "GriffinAPIKey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("griffin API request", "component", "griffin_client", "method", method, "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("griffin API returned non-success status",
			"component", "griffin_client", "method", method, "url", url, "status", resp.StatusCode)
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Method:     method,
			URL:        url,
		}
	}

	if target != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, target); err != nil {
			return &encodingError{fmt.Errorf("failed to unmarshal response body: %w", err)}
		}
	}

	return nil
}

// resolve joins relative resource URLs onto the base URL.
func (c *Client) resolve(resourceURL string) string {
	if strings.HasPrefix(resourceURL, "http://") || strings.HasPrefix(resourceURL, "https://") {
		return resourceURL
	}
	if !strings.HasPrefix(resourceURL, "/") {
		resourceURL = "/" + resourceURL
	}
	return c.baseURL + resourceURL
}
