package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/infrastructure/auth"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/logger"
	"github.com/papermill/portal/internal/interfaces/http/dto"
)

// Session context keys
const (
	SessionClaimsKey = "session_claims"
	UsernameKey      = "username"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// SessionValidator checks a session token
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

// SessionConfig configures the session middleware
type SessionConfig struct {
	Sessions   SessionValidator
	CookieName string
	// OnError answers an unauthenticated request; it must abort
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// Session authenticates the request from the session cookie or an
// Authorization bearer header. On success the backend token is attached
// to the request context for the backend client, and the request logger
// gains the username.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.OnError == nil {
		cfg.OnError = APIAuthError
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := sessionToken(c, cfg.CookieName)
		if token == "" {
			cfg.OnError(c, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.Sessions.Validate(c.Request.Context(), token)
		if err != nil {
			cfg.Logger.Debug("session rejected",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			cfg.OnError(c, err)
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Set(UsernameKey, claims.Username)

		ctx := backend.WithToken(c.Request.Context(), claims.BackendToken)
		ctx, reqLogger := logger.WithUsername(ctx, logger.FromContext(ctx), claims.Username)
		c.Set("logger", reqLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if h := c.GetHeader(AuthHeaderKey); strings.HasPrefix(h, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix))
	}
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil {
			return v
		}
	}
	return ""
}

// APIAuthError answers with a 401 envelope
func APIAuthError(c *gin.Context, err error) {
	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Your session has expired, please sign in again"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, message = dto.ErrCodeTokenInvalid, "Your session has ended, please sign in again"
	}
	abortJSON(c, http.StatusUnauthorized, code, message)
}

// PageAuthRedirect sends page requests to the login form, remembering
// where the user was going
func PageAuthRedirect(c *gin.Context, _ error) {
	next := c.Request.URL.RequestURI()
	c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(next))
	c.Abort()
}

// CurrentClaims returns the authenticated session claims, if any
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(SessionClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
