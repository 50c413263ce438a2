package auth

import (
	"fmt"
	"sync"
	"time"

	pkgauth "github.com/BradenHooton/frontdesk/pkg/auth"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// SecretVerifier checks a submitted gate secret.
type SecretVerifier interface {
	Verify(secret string) bool
}

// PINVerifier compares against a bcrypt hash of the admin PIN or password.
type PINVerifier struct {
	hash string
}

// NewPINVerifier accepts either a ready bcrypt hash or the plain secret,
// which is hashed once at startup.
func NewPINVerifier(plain, hash string) (*PINVerifier, error) {
	if hash != "" {
		return &PINVerifier{hash: hash}, nil
	}
	if plain == "" {
		return nil, fmt.Errorf("admin PIN is not configured")
	}
	h, err := pkgauth.HashSecret(plain)
	if err != nil {
		return nil, err
	}
	return &PINVerifier{hash: h}, nil
}

func (v *PINVerifier) Verify(secret string) bool {
	return pkgauth.CompareSecret(v.hash, secret) == nil
}

// TOTPVerifier accepts the current authenticator code as the gate secret.
// A code is accepted at most once.
type TOTPVerifier struct {
	secret string
	opts   totp.ValidateOpts
	now    func() time.Time

	mu       sync.Mutex
	lastCode string
	lastUsed time.Time
}

func NewTOTPVerifier(secret string) *TOTPVerifier {
	return &TOTPVerifier{
		secret: secret,
		opts: totp.ValidateOpts{
			Period:    30,
			Skew:      1,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		},
		now: time.Now,
	}
}

func (v *TOTPVerifier) Verify(code string) bool {
	now := v.now()
	valid, err := totp.ValidateCustom(code, v.secret, now, v.opts)
	if err != nil || !valid {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// ±1 step skew means a code stays valid for 90s
	if code == v.lastCode && now.Sub(v.lastUsed) < 90*time.Second {
		return false
	}
	v.lastCode = code
	v.lastUsed = now
	return true
}
