package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/auth"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/config"
	"github.com/papermill/portal/internal/infrastructure/logger"
	"github.com/papermill/portal/internal/interfaces/http/middleware"
)

// Authenticator checks credentials against the ERP backend
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*backend.LoginResult, error)
}

// SessionIssuer issues and ends portal sessions
type SessionIssuer interface {
	Issue(user auth.SessionUser, backendToken string) (*auth.Session, error)
	Revoke(ctx context.Context, claims *auth.Claims) error
	Expiration() time.Duration
}

// errBadCredentials is what a failed login shows, whatever the backend said
var errBadCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid username or password")

// AuthHandler handles sign-in and sign-out
type AuthHandler struct {
	BaseHandler
	authenticator Authenticator
	sessions      SessionIssuer
	cookieName    string
	cookie        config.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(a Authenticator, sessions SessionIssuer, cookieName string, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		authenticator: a,
		sessions:      sessions,
		cookieName:    cookieName,
		cookie:        cookie,
	}
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=150"`
	Password string `json:"password" form:"password" binding:"required,max=256"`
}

// LoginResponse is returned after a successful sign-in
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse describes the signed-in user
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// signIn forwards the credentials to the backend and issues a session
// carrying the backend token. The session cookie is set on success.
func (h *AuthHandler) signIn(c *gin.Context, req LoginRequest) (*auth.Session, error) {
	username := strings.TrimSpace(req.Username)
	res, err := h.authenticator.Login(c.Request.Context(), username, req.Password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			logger.GetGinLogger(c).Info("login rejected",
				zap.String("username", username),
				zap.Int("backend_status", apiErr.Status),
			)
			return nil, errBadCredentials
		}
		if errors.Is(err, backend.ErrNoToken) {
			return nil, errBadCredentials
		}
		return nil, backend.ToDomainError(err)
	}

	sess, err := h.sessions.Issue(auth.SessionUser{
		ID:       res.User.ID,
		Username: res.User.Username,
		Name:     res.User.Name,
		Role:     res.User.Role,
	}, res.BearerToken())
	if err != nil {
		return nil, err
	}
	h.setSessionCookie(c, sess.Token, int(h.sessions.Expiration().Seconds()))
	logger.GetGinLogger(c).Info("user signed in", zap.String("username", res.User.Username))
	return sess, nil
}

// signOut revokes the current session, if any, and clears the cookie
func (h *AuthHandler) signOut(c *gin.Context) {
	if claims := middleware.CurrentClaims(c); claims != nil {
		if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
			logger.GetGinLogger(c).Warn("failed to revoke session", zap.Error(err))
		}
	}
	h.setSessionCookie(c, "", -1)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	path := h.cookie.Path
	if path == "" {
		path = "/"
	}
	c.SetCookie(h.cookieName, value, maxAge, path, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.Bind(c, &req) {
		return
	}

	sess, err := h.signIn(c, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      userResponse(sess.Claims),
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.signOut(c)
	h.Success(c, gin.H{"message": "Logged out successfully"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.Success(c, userResponse(claims))
}

func userResponse(claims *auth.Claims) UserResponse {
	return UserResponse{
		ID:       claims.UserID,
		Username: claims.Username,
		Name:     claims.DisplayName(),
		Role:     claims.Role,
	}
}
