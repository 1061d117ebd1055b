// Package backend is the portal's single client for the HR REST API.
//
// The bearer token is not captured when the client is built: an interceptor
// reads it from the request context right before every call, so a session
// established after start-up is always the one sent.
package backend

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

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/ports"
)

const (
	defaultTimeout      = 15 * time.Second
	headerAuthorization = "Authorization"
)

// Config captures the deployment settings of the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// TokenSource returns the bearer token to attach to a request.
type TokenSource func(ctx context.Context) (string, bool)

// Observer is notified after every backend round trip. status is 0 when no
// response was received.
type Observer func(method string, status int, elapsed time.Duration)

// Option customises a Client.
type Option func(*Client)

// WithTokenSource replaces the default context-based token lookup.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithObserver registers a round-trip observer, typically a metrics recorder.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	observe Observer
	log     zerolog.Logger
}

var _ ports.Backend = (*Client)(nil)

func New(cfg Config, log zerolog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tokens:  domain.TokenFromContext,
		observe: func(string, int, time.Duration) {},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolve(path, rawQuery string) string {
	u := c.base.JoinPath(path)
	u.RawQuery = rawQuery
	return u.String()
}

// authorize attaches "Authorization: Bearer <token>" using the token current
// at the time of the call.
func (c *Client) authorize(req *http.Request) {
	if token, ok := c.tokens(req.Context()); ok {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, ""), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.authorize(req)
	return req, nil
}

// roundTrip sends req and records the outcome.
func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(req.Method, 0, elapsed)
		c.log.Error().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("backend unreachable")
		return nil, fmt.Errorf("%s %s: %w: %v", req.Method, req.URL.Path, domain.ErrBackend, err)
	}
	c.observe(req.Method, resp.StatusCode, elapsed)
	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("backend call")
	return resp, nil
}

// do sends req and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp)
		if apiErr.Status >= http.StatusInternalServerError {
			c.log.Warn().Int("status", apiErr.Status).Str("path", req.URL.Path).Str("message", apiErr.Message).Msg("backend error")
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w: %v", req.Method, req.URL.Path, domain.ErrBackend, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// Forward relays r to path on the backend with the caller's token. The
// response is returned as-is for the caller to copy and close, except a 401
// which is reported as an *APIError so session expiry is handled centrally.
func (c *Client) Forward(ctx context.Context, r *http.Request, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, c.resolve(path, r.URL.RawQuery), r.Body)
	if err != nil {
		return nil, fmt.Errorf("build forward %s %s: %w", r.Method, path, err)
	}
	req.ContentLength = r.ContentLength
	for _, h := range []string{"Accept", "Content-Type", "Accept-Language"} {
		if v := r.Header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}
	c.authorize(req)

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// Ping reports whether the backend answers at all; any status below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, pathHealth, nil, "")
	if err != nil {
		return err
	}
	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("backend health: %w: status %d", domain.ErrBackend, resp.StatusCode)
	}
	return nil
}
