package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/qpath/qpath/internal/store"
)

const (
	// Storage keys for the credential pair, shared with the browser client.
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"

	defaultBaseURL = "http://127.0.0.1:8000/api/v1"
	defaultTimeout = 30 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client       // defaults to a client with Timeout
	Timeout    time.Duration      // used only when HTTPClient is nil
	Storage    store.KeyValueRepo // defaults to an in-memory store
	Logger     *slog.Logger
}

// Tokens is the credential pair issued by the backend.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// Client is the session-aware backend client. It attaches the bearer
// credential to every call and, on a 401, refreshes the credential pair
// once and retries the call once. Concurrent refreshes share one
// in-flight request.
type Client struct {
	baseURL string
	http    *http.Client
	storage store.KeyValueRepo
	log     *slog.Logger

	mu      sync.RWMutex
	access  string
	refresh string

	refreshGroup singleflight.Group
}

// New creates a Client and loads the persisted credential pair. Storage is
// read only here; afterwards the in-memory pair is authoritative and every
// change is written through.
func New(ctx context.Context, opts Options) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    opts.HTTPClient,
		storage: opts.Storage,
		log:     opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.storage == nil {
		c.storage = store.NewMemoryKV()
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}

	access, _, err := c.storage.Get(ctx, AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	refresh, _, err := c.storage.Get(ctx, RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	c.access, c.refresh = access, refresh

	return c, nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticated reports whether an access credential is held.
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access != ""
}

// Tokens returns the current credential pair.
func (c *Client) Tokens() Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Tokens{AccessToken: c.access, RefreshToken: c.refresh}
}

// SetTokens installs a credential pair and persists it. The write
// outlives ctx's cancellation.
func (c *Client) SetTokens(ctx context.Context, t Tokens) {
	ctx = context.WithoutCancel(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.access, c.refresh = t.AccessToken, t.RefreshToken
	if err := c.storage.Set(ctx, AccessTokenKey, t.AccessToken); err != nil {
		c.log.Warn("persist access token failed", "error", err)
	}
	if err := c.storage.Set(ctx, RefreshTokenKey, t.RefreshToken); err != nil {
		c.log.Warn("persist refresh token failed", "error", err)
	}
}

// ClearTokens drops both credentials from memory and storage. The
// deletes outlive ctx's cancellation.
func (c *Client) ClearTokens(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.access, c.refresh = "", ""
	if err := c.storage.Delete(ctx, AccessTokenKey); err != nil {
		c.log.Warn("clear access token failed", "error", err)
	}
	if err := c.storage.Delete(ctx, RefreshTokenKey); err != nil {
		c.log.Warn("clear refresh token failed", "error", err)
	}
}

// Request performs an authenticated call to endpoint, refreshing the
// credentials and retrying once on a 401.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) (*Response, error) {
	return c.do(ctx, endpoint, opts, !opts.Anonymous)
}

func (c *Client) do(ctx context.Context, endpoint string, opts RequestOptions, allowRetry bool) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := c.resolveURL(endpoint, opts.Query)
	if err != nil {
		return nil, err
	}

	var (
		body        io.Reader
		contentType string
	)
	if opts.Body != nil {
		body, contentType, err = opts.Body.encode()
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	var sentAccess string
	if !opts.Anonymous && req.Header.Get("Authorization") == "" {
		c.mu.RLock()
		sentAccess = c.access
		c.mu.RUnlock()
		if sentAccess != "" {
			req.Header.Set("Authorization", "Bearer "+sentAccess)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", endpoint, "request_id", requestID, "error", err)
		return nil, &NetworkError{Method: method, Path: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debug("request",
		"method", method,
		"path", endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusNoContent {
		return &Response{StatusCode: resp.StatusCode, Header: resp.Header}, nil
	}

	if resp.StatusCode == http.StatusUnauthorized && allowRetry && c.canRefresh() {
		// Another caller may have rotated the pair while this request was
		// in flight; only refresh when the rejected credential is current.
		if c.currentAccess() == sentAccess {
			if _, err := c.Refresh(ctx); err != nil {
				return nil, err
			}
		}
		return c.do(ctx, endpoint, opts, false)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp.StatusCode, data)
		apiErr.sessionExpired = resp.StatusCode == http.StatusUnauthorized && sentAccess != ""
		return nil, apiErr
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}
	if !out.Empty() && out.IsJSON() && !json.Valid(data) {
		return nil, &DecodeError{Body: data, Err: errors.New("invalid JSON")}
	}
	return out, nil
}

func (c *Client) currentAccess() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access
}

// canRefresh reports whether a full credential pair is held. A refresh
// credential without an access credential is treated as absent.
func (c *Client) canRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access != "" && c.refresh != ""
}

// Refresh exchanges the refresh credential for a new pair. Concurrent
// callers share a single in-flight request and its outcome. The request
// itself outlives any one caller's cancellation; a caller whose context
// ends stops waiting. On any failure both credentials are cleared and the
// error wraps ErrSessionExpired.
func (c *Client) Refresh(ctx context.Context) (Tokens, error) {
	c.mu.RLock()
	access, refresh := c.access, c.refresh
	c.mu.RUnlock()

	if access == "" || refresh == "" {
		c.ClearTokens(ctx)
		return Tokens{}, ErrSessionExpired
	}

	ch := c.refreshGroup.DoChan("refresh", func() (any, error) {
		return c.refreshTokens(context.WithoutCancel(ctx), refresh)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Tokens{}, res.Err
		}
		return res.Val.(Tokens), nil
	case <-ctx.Done():
		return Tokens{}, ctx.Err()
	}
}

func (c *Client) refreshTokens(ctx context.Context, refresh string) (Tokens, error) {
	c.log.Info("refreshing session")

	resp, err := c.do(ctx, "/auth/refresh", RequestOptions{
		Method:    http.MethodPost,
		Body:      JSON(map[string]string{"refresh_token": refresh}),
		Anonymous: true,
	}, false)
	if err != nil {
		c.ClearTokens(ctx)
		c.log.Warn("session refresh failed", "error", err)
		return Tokens{}, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	var t Tokens
	if err := resp.Decode(&t); err != nil || t.AccessToken == "" || t.RefreshToken == "" {
		c.ClearTokens(ctx)
		if err == nil {
			err = &DecodeError{Body: resp.Body, Err: errors.New("missing tokens")}
		}
		return Tokens{}, fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	c.SetTokens(ctx, t)
	return t, nil
}
