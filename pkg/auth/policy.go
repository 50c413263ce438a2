package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// SecretPolicy decides which secrets are sent to the gate at all. The server
// applies the same policy before it touches the lockout counter.
type SecretPolicy string

const (
	PolicyNone         SecretPolicy = "none"
	PolicyShortNumeric SecretPolicy = "short-numeric"
	PolicyFullPassword SecretPolicy = "full-password"
)

const (
	MaxShortNumericLen = 11
	MaxFreeformLen     = 128
)

var validate = validator.New()

// PolicyError is a pre-flight rejection. Message is safe to show as-is.
type PolicyError struct {
	Policy  SecretPolicy
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

func ParseSecretPolicy(s string) (SecretPolicy, error) {
	switch p := SecretPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyNone, PolicyShortNumeric, PolicyFullPassword:
		return p, nil
	case "":
		return PolicyShortNumeric, nil
	default:
		return "", fmt.Errorf("unknown secret policy %q", s)
	}
}

func (p SecretPolicy) label() string {
	switch p {
	case PolicyShortNumeric:
		return "PIN"
	case PolicyFullPassword:
		return "Password"
	default:
		return "Secret"
	}
}

// Validate checks secret against the policy without any I/O.
func (p SecretPolicy) Validate(secret string) error {
	if secret == "" {
		return &PolicyError{Policy: p, Message: p.label() + " is required"}
	}

	switch p {
	case PolicyShortNumeric:
		if err := validate.Var(secret, fmt.Sprintf("max=%d,number", MaxShortNumericLen)); err != nil {
			return &PolicyError{Policy: p, Message: fmt.Sprintf("PIN must be 1-%d digits", MaxShortNumericLen)}
		}
	case PolicyFullPassword:
		if err := ValidatePassword(secret); err != nil {
			return &PolicyError{Policy: p, Message: "Password must be at least 8 characters and include upper and lower case letters, a digit and a special character"}
		}
	default:
		if utf8.RuneCountInString(secret) > MaxFreeformLen {
			return &PolicyError{Policy: p, Message: fmt.Sprintf("Secret must be at most %d characters", MaxFreeformLen)}
		}
	}
	return nil
}
