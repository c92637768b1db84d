package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned by GetMe when the auth service rejects the token.
var ErrInvalidToken = errors.New("invalid or expired token")

// AuthUser represents the user info returned from auth service
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user may manage doctors.
func (u *AuthUser) IsAdmin() bool {
	return strings.EqualFold(u.Role, "admin")
}

// AuthClient handles communication with the auth service
type AuthClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAuthClient creates a new auth client
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// GetMe retrieves user info from auth service using the token
func (c *AuthClient) GetMe(ctx context.Context, token string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("auth service error: %d - %s", resp.StatusCode, string(body))
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &user, nil
}

// AuthOption configures AdminAuthMiddleware.
type AuthOption func(*authOptions)

type authOptions struct {
	tokenCookie string
}

// WithTokenCookie also reads the bearer token from the named cookie when the
// request has no Authorization header. Browser forms cannot set headers, so
// the HTML admin pages use this.
func WithTokenCookie(name string) AuthOption {
	return func(o *authOptions) { o.tokenCookie = name }
}

// AdminAuthMiddleware guards doctor management routes. The bearer token is
// introspected via the auth service and the caller must hold the admin role.
// When allowUnauthenticatedFallback is true (demo mode), requests without a
// valid token proceed as user_id="1".
func AdminAuthMiddleware(authClient *AuthClient, logger *zap.Logger, allowUnauthenticatedFallback bool, opts ...AuthOption) gin.HandlerFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	fallback := func(c *gin.Context, status int, msg string) {
		if allowUnauthenticatedFallback {
			c.Set("user_id", "1")
			c.Next()
			return
		}
		c.AbortWithStatusJSON(status, gin.H{"error": msg})
	}

	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		switch {
		case authHeader != "":
			t, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || t == "" {
				fallback(c, http.StatusUnauthorized, "Invalid authorization header")
				return
			}
			token = t
		case o.tokenCookie != "":
			if cookie, err := c.Cookie(o.tokenCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			fallback(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		user, err := authClient.GetMe(c.Request.Context(), token)
		if err != nil {
			if logger != nil {
				logger.Debug("Auth validation failed", zap.Error(err))
			}
			fallback(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Next()
	}
}
