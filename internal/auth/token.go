package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager signs and verifies the gate session token.
type TokenManager struct {
	secret        []byte
	sessionTTL    time.Duration
	rememberMeTTL time.Duration
	now           func() time.Time
}

func NewTokenManager(secret string, sessionTTL, rememberMeTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:        []byte(secret),
		sessionTTL:    sessionTTL,
		rememberMeTTL: rememberMeTTL,
		now:           time.Now,
	}
}

// TTL is how long a session issued with rememberMe lives.
func (tm *TokenManager) TTL(rememberMe bool) time.Duration {
	if rememberMe {
		return tm.rememberMeTTL
	}
	return tm.sessionTTL
}

// IssueSession creates a signed session token with a fresh JTI.
func (tm *TokenManager) IssueSession(rememberMe bool) (string, *models.SessionClaims, error) {
	now := tm.now()

	claims := &models.SessionClaims{
		Type:       models.TokenTypeSession,
		RememberMe: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.TTL(rememberMe))),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, claims, nil
}

// ValidateSession returns the claims of a valid token. Expired tokens yield
// models.ErrSessionExpired, anything else models.ErrUnauthorized.
func (tm *TokenManager) ValidateSession(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", models.ErrSessionExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	if !token.Valid || claims.Type != models.TokenTypeSession || claims.ID == "" {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
