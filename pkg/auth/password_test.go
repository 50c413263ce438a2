package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name          string
		password      string
		shouldFail    bool
		errorContains string
	}{
		{name: "valid strong password", password: "SecureP@ss123"},
		{name: "too short", password: "Pass@1", shouldFail: true, errorContains: "at least 8"},
		{name: "missing uppercase", password: "securepass@123", shouldFail: true, errorContains: "uppercase"},
		{name: "missing lowercase", password: "SECUREPASS@123", shouldFail: true, errorContains: "lowercase"},
		{name: "missing digit", password: "SecurePass@xyz", shouldFail: true, errorContains: "digit"},
		{name: "missing special character", password: "SecurePass123", shouldFail: true, errorContains: "special"},
		{name: "common password rejected", password: "Password123!", shouldFail: true, errorContains: "too common"},
		{name: "too long", password: "Aa1@" + strings.Repeat("x", 130), shouldFail: true, errorContains: "at most 128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !tt.shouldFail {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestHashAndCompareSecret(t *testing.T) {
	hash, err := HashSecret("1997")
	require.NoError(t, err)
	assert.NotEqual(t, "1997", hash)

	assert.NoError(t, CompareSecret(hash, "1997"))
	assert.Error(t, CompareSecret(hash, "1998"))

	_, err = HashSecret("")
	assert.Error(t, err)
}
