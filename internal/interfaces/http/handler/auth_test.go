package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/papermill/portal/internal/infrastructure/auth"
	"github.com/papermill/portal/internal/infrastructure/backend"
	"github.com/papermill/portal/internal/infrastructure/config"
	"github.com/papermill/portal/internal/interfaces/http/dto"
	"github.com/papermill/portal/internal/interfaces/http/middleware"
)

func newAuthHandler() (*AuthHandler, *mockAuthenticator, *mockSessions) {
	a, s := &mockAuthenticator{}, &mockSessions{}
	return NewAuthHandler(a, s, "portal_session", config.CookieConfig{Path: "/", SameSite: "strict"}), a, s
}

func TestAuthHandler_Login(t *testing.T) {
	h, a, s := newAuthHandler()
	expires := time.Now().Add(8 * time.Hour)
	a.On("Login", mock.Anything, "ravi", "secret").Return(&backend.LoginResult{
		AccessToken: "erp-jwt",
		User:        backend.User{ID: "7", Username: "ravi", Name: "Ravi Patel", Role: "dispatch"},
	}, nil)
	s.On("Issue", auth.SessionUser{ID: "7", Username: "ravi", Name: "Ravi Patel", Role: "dispatch"}, "erp-jwt").
		Return(&auth.Session{
			Token:     "portal-token",
			ExpiresAt: expires,
			Claims:    &auth.Claims{UserID: "7", Username: "ravi", Name: "Ravi Patel", Role: "dispatch"},
		}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/auth/login", `{"username":" ravi ","password":"secret"}`)
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "portal-token", data["token"])
	assert.Equal(t, "Ravi Patel", data["user"].(map[string]any)["name"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "portal_session", cookies[0].Name)
	assert.Equal(t, "portal-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	assert.Equal(t, int((8 * time.Hour).Seconds()), cookies[0].MaxAge)
	a.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestAuthHandler_Login_RejectedCredentials(t *testing.T) {
	for _, backendErr := range []error{
		&backend.APIError{Status: http.StatusUnauthorized, Message: "Incorrect username or password"},
		&backend.APIError{Status: http.StatusNotFound, Message: "User not found"},
		backend.ErrNoToken,
	} {
		h, a, s := newAuthHandler()
		a.On("Login", mock.Anything, "ravi", "wrong").Return(nil, backendErr)

		c, w := newContext(http.MethodPost, "/api/v1/auth/login", `{"username":"ravi","password":"wrong"}`)
		h.Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", decode(t, w).Error.Message)
		assert.Empty(t, w.Result().Cookies())
		s.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	}
}

func TestAuthHandler_Login_BackendDown(t *testing.T) {
	h, a, _ := newAuthHandler()
	a.On("Login", mock.Anything, "ravi", "secret").Return(nil, backend.ErrBackendUnreachable)

	c, w := newContext(http.MethodPost, "/api/v1/auth/login", `{"username":"ravi","password":"secret"}`)
	h.Login(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, dto.ErrCodeBackendUnavailable, decode(t, w).Error.Code)
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	h, _, s := newAuthHandler()
	claims := &auth.Claims{UserID: "7", Username: "ravi"}
	s.On("Revoke", mock.Anything, claims).Return(nil)

	c, w := newContext(http.MethodGet, "/api/v1/auth/me", "")
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext(http.MethodGet, "/api/v1/auth/me", "")
	c.Set(middleware.SessionClaimsKey, claims)
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ravi", decode(t, w).Data.(map[string]any)["name"], "falls back to the username")

	c, w = newContext(http.MethodPost, "/api/v1/auth/logout", "")
	c.Set(middleware.SessionClaimsKey, claims)
	h.Logout(c)
	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
	s.AssertExpectations(t)
}
