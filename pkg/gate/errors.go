package gate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrBusy is returned when a gate action is attempted while another is in flight.
var ErrBusy = errors.New("gate: request already in progress")

// ValidationError is a pre-flight rejection of the secret. It never reaches the server.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError is a rejected credential or any other non-lockout refusal.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string { return e.Message }

// RateLimitError means the gate is locked for this client.
type RateLimitError struct {
	Minutes int
	Message string
}

func (e *RateLimitError) Error() string { return e.Message }

// SessionExpiredError is a 401 from a gated endpoint.
type SessionExpiredError struct {
	Path string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired (%s)", e.Path)
}

// NetworkError wraps transport failures and 5xx responses.
type NetworkError struct {
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("server unavailable: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsSessionExpired reports whether err is (or wraps) a SessionExpiredError.
func IsSessionExpired(err error) bool {
	var expired *SessionExpiredError
	return errors.As(err, &expired)
}

var (
	lockoutMinutesRe = regexp.MustCompile(`(\d+)\s*minut`)
	lockoutPhraseRe  = regexp.MustCompile(`(?i)too many (failed )?attempts|demasiados intentos`)
)

// ParseLockoutMinutes extracts the minute count from a lockout message such as
// "Too many failed attempts. Please try again in 15 minutes.".
func ParseLockoutMinutes(message string) (int, bool) {
	m := lockoutMinutesRe.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsLockoutMessage reports whether message reads as a lockout.
func IsLockoutMessage(message string) bool {
	return lockoutPhraseRe.MatchString(message)
}
