package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecretPolicy(t *testing.T) {
	p, err := ParseSecretPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyShortNumeric, p)

	p, err = ParseSecretPolicy(" Full-Password ")
	require.NoError(t, err)
	assert.Equal(t, PolicyFullPassword, p)

	_, err = ParseSecretPolicy("biometric")
	assert.Error(t, err)
}

func TestSecretPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  SecretPolicy
		secret  string
		wantErr string
	}{
		{"short numeric ok", PolicyShortNumeric, "1997", ""},
		{"short numeric max length", PolicyShortNumeric, "12345678901", ""},
		{"short numeric empty", PolicyShortNumeric, "", "required"},
		{"short numeric too long", PolicyShortNumeric, "123456789012", "1-11 digits"},
		{"short numeric letters", PolicyShortNumeric, "12a4", "1-11 digits"},
		{"short numeric signed", PolicyShortNumeric, "-123", "1-11 digits"},
		{"full password ok", PolicyFullPassword, "Tr4ffic!Cone", ""},
		{"full password rejects pin", PolicyFullPassword, "1997", "at least 8"},
		{"full password empty", PolicyFullPassword, "", "required"},
		{"none accepts anything short", PolicyNone, "x", ""},
		{"none empty", PolicyNone, "", "required"},
		{"none too long", PolicyNone, strings.Repeat("a", 129), "at most 128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate(tt.secret)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var pe *PolicyError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.policy, pe.Policy)
			assert.Contains(t, pe.Message, tt.wantErr)
		})
	}
}
