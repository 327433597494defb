package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// call performs a request and decodes the JSON reply into T.
func call[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	var out T
	resp, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// Login exchanges an identity and secret for a credential pair, installs
// it, then loads the current user.
func (c *Client) Login(ctx context.Context, identity, secret string) (*Session, error) {
	tokens, err := call[Tokens](ctx, c, "/auth/login", RequestOptions{
		Method: http.MethodPost,
		Body: Form(map[string]string{
			"username": identity,
			"password": secret,
		}),
		Anonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("login: %w", &DecodeError{Err: fmt.Errorf("no access token in response")})
	}

	c.SetTokens(ctx, tokens)
	c.log.Info("logged in", "identity", identity)

	user, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("load current user: %w", err)
	}
	return &Session{Tokens: tokens, User: user}, nil
}

// Logout notifies the backend and always clears the local credentials.
// The returned error is informational.
func (c *Client) Logout(ctx context.Context) error {
	defer c.ClearTokens(ctx)

	if _, err := c.Request(ctx, "/auth/logout", RequestOptions{Method: http.MethodPost}); err != nil {
		c.log.Warn("logout request failed", "error", err)
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RefreshSession refreshes the credentials and reloads the current user.
func (c *Client) RefreshSession(ctx context.Context) (*User, error) {
	if _, err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c.CurrentUser(ctx)
}

// CurrentUser returns the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	u, err := call[User](ctx, c, "/auth/me", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*User, error) {
	u, err := call[User](ctx, c, "/users/register", RequestOptions{
		Method:    http.MethodPost,
		Body:      JSON(in),
		Anonymous: true,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &u, nil
}

// ForgotPassword asks the backend to issue a reset token for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	msg, err := call[Message](ctx, c, "/auth/forgot-password", RequestOptions{
		Method:    http.MethodPost,
		Query:     url.Values{"email": {email}},
		Anonymous: true,
	})
	return msg.Message, err
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	msg, err := call[Message](ctx, c, "/auth/reset-password", RequestOptions{
		Method:    http.MethodPost,
		Query:     url.Values{"token": {token}, "new_password": {newPassword}},
		Anonymous: true,
	})
	return msg.Message, err
}

// SessionInfo describes the held access credential. The claims are read
// without verifying the signature; the backend remains the authority.
type SessionInfo struct {
	Subject   string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the credential is past its expiry at now.
func (s SessionInfo) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionInfo decodes the access credential. It fails when no credential
// is held or the credential is not a JWT.
func (c *Client) SessionInfo() (SessionInfo, error) {
	access := c.currentAccess()
	if access == "" {
		return SessionInfo{}, ErrSessionExpired
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return SessionInfo{}, fmt.Errorf("parse access token: %w", err)
	}

	info := SessionInfo{}
	info.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	if v, ok := claims["email"].(string); ok {
		info.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		info.Role = v
	}
	return info, nil
}

// serverRoot strips the /api/vN suffix from the base URL.
func (c *Client) serverRoot() string {
	base := c.baseURL
	if i := strings.LastIndex(base, "/api/"); i >= 0 {
		return base[:i]
	}
	return base
}
