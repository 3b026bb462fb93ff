// Package rest is the client's REST collaborator: a JSON-over-HTTP client
// with bearer credentials supplied by a provider at request time.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
)

const maxErrorBody = 64 << 10

// CredentialProvider supplies the bearer token for each outgoing request.
type CredentialProvider interface {
	Token() string
}

// Credentials is the mutable provider the auth orchestrator writes to.
// It implements both CredentialProvider and ports.CredentialSink.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Credentials) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Credentials) Clear() {
	c.SetToken("")
}

// UnauthorizedHandler is invoked when an authenticated request gets a 401.
type UnauthorizedHandler func(ctx context.Context, path string)

// Client issues JSON requests against the backend's /api base.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialProvider
	log        zerolog.Logger

	mu             sync.RWMutex
	onUnauthorized UnauthorizedHandler
}

func New(baseURL string, timeout time.Duration, creds CredentialProvider, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		creds: creds,
		log:   log,
	}
}

// OnUnauthorized installs the 401 interceptor. Only requests that carried
// a bearer token trigger it; a failed login is an ordinary error.
func (c *Client) OnUnauthorized(fn UnauthorizedHandler) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, dest)
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, dest)
}

func (c *Client) put(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, dest)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do performs one round-trip. Non-2xx answers become *domain.APIError
// carrying the body's message. There are no retries.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, dest any) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := ""
	if c.creds != nil {
		token = c.creds.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("request ok")
		if dest == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &domain.APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("message", apiErr.Message).
		Msg("request rejected")

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		c.mu.RLock()
		fn := c.onUnauthorized
		c.mu.RUnlock()
		if fn != nil {
			fn(ctx, path)
		}
	}
	return apiErr
}

// errorMessage prefers body.message, then body.error, then the fallback.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if m := strings.TrimSpace(body.Message); m != "" {
			return m
		}
		if m := strings.TrimSpace(body.Error); m != "" {
			return m
		}
	}
	return domain.FallbackErrorMessage
}
