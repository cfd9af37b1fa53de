package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/outlook-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/outlook-mcp/internal/logger"
)

// graphBaseURL is the Microsoft Graph v1.0 service root.
const graphBaseURL = "https://graph.microsoft.com/v1.0"

// defaultTimeout bounds each physical HTTP attempt.
const defaultTimeout = 30 * time.Second

// ClientConfig carries the access layer tunables.
type ClientConfig struct {
	// BaseURL overrides the Graph service root. Tests point this at a
	// local server; leave empty for production.
	BaseURL string
	// Timeout bounds each physical HTTP attempt.
	Timeout time.Duration
	// Retry tunes the backoff engine.
	Retry RetryConfig
	// Admission bounds per-mailbox concurrency.
	Admission AdmissionConfig
	// Rate tunes the sustained-rate token bucket.
	Rate RateConfig
}

// DefaultClientConfig returns the reference configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   graphBaseURL,
		Timeout:   defaultTimeout,
		Retry:     DefaultRetryConfig(),
		Admission: DefaultAdmissionConfig(),
		Rate:      DefaultRateConfig(),
	}
}

// Client is the Microsoft Graph access layer. One instance serves one
// mailbox; the admission controller and rate limiter it owns are shared by
// every call made through it, so a single Client must be reused rather
// than constructed per request.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokenProvider driven.TokenProvider
	admission     *AdmissionController
	limiter       *RateLimiter
	retry         RetryConfig
}

// NewClient builds a Graph client around the supplied token provider,
// falling back to the defaults for unset configuration values.
func NewClient(cfg ClientConfig, tokenProvider driven.TokenProvider) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = graphBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		tokenProvider: tokenProvider,
		admission:     NewAdmissionController(cfg.Admission),
		limiter:       NewRateLimiter(cfg.Rate),
		retry:         cfg.Retry,
	}
}

// Admission exposes the controller for diagnostics.
func (c *Client) Admission() *AdmissionController {
	return c.admission
}

// MakeRequest performs a GET against the resource path with the given
// query shape and returns the response body as-is. Reshaping the payload
// is the caller's responsibility.
func (c *Client) MakeRequest(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, error) {
	var prefer string
	if opts != nil {
		prefer = opts.Prefer
	}
	return c.executeURL(ctx, http.MethodGet, c.buildURL(path, opts), nil, prefer)
}

// PostWithRetry performs a POST with the standard admission, retry and
// classification guarantees. A nil body sends an empty request.
func (c *Client) PostWithRetry(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.executeURL(ctx, http.MethodPost, c.buildURL(path, nil), body, "")
}

// PatchWithRetry performs a PATCH with the standard guarantees.
func (c *Client) PatchWithRetry(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.executeURL(ctx, http.MethodPatch, c.buildURL(path, nil), body, "")
}

// PutWithRetry performs a PUT with the standard guarantees.
func (c *Client) PutWithRetry(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.executeURL(ctx, http.MethodPut, c.buildURL(path, nil), body, "")
}

// DeleteWithRetry performs a DELETE with the standard guarantees. Graph
// answers deletions with 204 No Content, so the returned body is usually
// empty.
func (c *Client) DeleteWithRetry(ctx context.Context, path string) (json.RawMessage, error) {
	return c.executeURL(ctx, http.MethodDelete, c.buildURL(path, nil), nil, "")
}

// executeURL runs one logical request through the ordered middleware
// stages: the admission/rate gate, the retry wrapper, correlation-id
// attachment and the transport. Admission is acquired once per logical
// call and held across retries, bounding concurrency by logical calls
// rather than physical attempts. The url must be absolute; pagination
// reuses this entry point to follow server-issued next links.
func (c *Client) executeURL(ctx context.Context, method, url string, body any, prefer string) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = data
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := c.admission.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.admission.Release()

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	logger.Debug("msgraph: %s %s", method, url)

	var correlationID string
	resp, err := runWithRetry(ctx, c.retry, func(ctx context.Context) (*Response, error) {
		correlationID = uuid.New().String()
		return c.dispatch(ctx, method, url, payload, token, correlationID, prefer)
	})
	if err != nil {
		return nil, wrapFailure(err, correlationID)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, Classify(resp.StatusCode, resp.Body, correlationID)
	}

	return resp.Body, nil
}

// dispatch performs one physical HTTP attempt. Transport failures come
// back as errors for the retry engine; any received response, whatever its
// status, is normalised and handed upstream.
func (c *Client) dispatch(ctx context.Context, method, url string, payload []byte, token, correlationID, prefer string) (*Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("client-request-id", correlationID)
	req.Header.Set("return-client-request-id", "true")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		// Share the server's hint so concurrent logical calls back off too.
		if hint, ok := retryAfterHint(resp.Header); ok {
			c.limiter.RecordThrottle(hint)
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
	}, nil
}

// wrapFailure attaches diagnostics to retry-level failures (exhaustion,
// final transport errors, cancelled waits) so every surfaced error carries
// a correlation id and timestamp.
func wrapFailure(err error, correlationID string) error {
	return &GraphError{
		Kind:          err,
		Message:       err.Error(),
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
	}
}
