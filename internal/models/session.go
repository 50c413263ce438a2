package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenTypeSession = "session"

// SessionClaims are carried by the signed gate session cookie.
type SessionClaims struct {
	Type       string `json:"type"`
	RememberMe bool   `json:"remember_me,omitempty"`
	jwt.RegisteredClaims
}

// SessionStatus is what check-session reports back to the dashboard.
type SessionStatus struct {
	Authenticated  bool `json:"authenticated"`
	RememberMe     bool `json:"remember_me,omitempty"`
	SessionExpired bool `json:"session_expired,omitempty"`
}

// RevokedSession marks a session JTI as logged out until the token would have expired.
type RevokedSession struct {
	JTI       string    `db:"jti"`
	RevokedAt time.Time `db:"revoked_at"`
	ExpiresAt time.Time `db:"expires_at"`
}
