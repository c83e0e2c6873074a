// Package auth issues and validates the portal's session tokens. A session
// token is an HS256 JWT that carries the signed-in user and, sealed with
// secretbox, the backend bearer token used on the user's behalf.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/papermill/portal/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingBackend   = errors.New("missing backend token in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrWeakSecret       = errors.New("session secret must be at least 16 characters")
)

// Claims are the portal session claims
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	Sealed   string `json:"bt"`

	// BackendToken is the unsealed backend token; never serialised
	BackendToken string `json:"-"`
}

// DisplayName prefers the full name
func (c *Claims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Username
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// SessionUser identifies who a session is for
type SessionUser struct {
	ID       string
	Username string
	Name     string
	Role     string
}

// Session is an issued session token
type Session struct {
	Token     string
	ExpiresAt time.Time
	Claims    *Claims
}

// Revoker records logged-out sessions until they would have expired
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionService issues and validates session tokens
type SessionService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	sealer     *sealer
	revoker    Revoker
	now        func() time.Time
}

// NewSessionService creates a session service. revoker may be nil, in
// which case logout only clears the cookie.
func NewSessionService(cfg config.SessionConfig, revoker Revoker) (*SessionService, error) {
	if len(cfg.Secret) < 16 {
		return nil, ErrWeakSecret
	}
	sl, err := newSealer([]byte(cfg.Secret))
	if err != nil {
		return nil, err
	}
	exp := cfg.Expiration
	if exp <= 0 {
		exp = 12 * time.Hour
	}
	return &SessionService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		expiration: exp,
		sealer:     sl,
		revoker:    revoker,
		now:        time.Now,
	}, nil
}

// Expiration is the session lifetime
func (s *SessionService) Expiration() time.Duration {
	return s.expiration
}

// Issue creates a session token for the user, sealing the backend token
func (s *SessionService) Issue(user SessionUser, backendToken string) (*Session, error) {
	if backendToken == "" {
		return nil, ErrMissingBackend
	}
	sealed, err := s.sealer.seal(backendToken)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:       user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Role:         user.Role,
		Sealed:       sealed,
		BackendToken: backendToken,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Claims: claims}, nil
}

// Validate parses and verifies a session token and unseals the backend token
func (s *SessionService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Username == "" || claims.Sealed == "" {
		return nil, ErrInvalidClaims
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	claims.BackendToken, err = s.sealer.open(claims.Sealed)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke invalidates a session until its natural expiry
func (s *SessionService) Revoke(ctx context.Context, claims *Claims) error {
	if s.revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, ttl)
}
