package config

import (
	"testing"
	"time"

	"github.com/BradenHooton/frontdesk/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "test")
	t.Setenv("ADMIN_PIN", "1997")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, auth.PolicyShortNumeric, cfg.Gate.SecretPolicy)
	assert.Equal(t, SecretModePIN, cfg.Gate.SecretMode)
	assert.Equal(t, 5, cfg.Gate.MaxFailedAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Gate.LockoutDuration)
	assert.Equal(t, 8*time.Hour, cfg.Gate.SessionTTL)
	assert.Equal(t, 720*time.Hour, cfg.Gate.RememberMeTTL)
	assert.Equal(t, 30, cfg.Chat.RateLimitPerMin)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.False(t, cfg.Gate.CookieSecure)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	t.Setenv("GATE_MAX_FAILED_ATTEMPTS", "3")
	t.Setenv("GATE_LOCKOUT_DURATION", "5m")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1/32")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Gate.MaxFailedAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Gate.LockoutDuration)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "invalid duration falls back to default")
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1/32"}, cfg.Server.TrustedProxies)
	assert.True(t, cfg.Gate.CookieSecure)
}

func TestLoad_RequiredSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing session secret",
			env:     map[string]string{"SESSION_SECRET": "", "DB_PASSWORD": "x", "ADMIN_PIN": "1997"},
			wantErr: "SESSION_SECRET is required",
		},
		{
			name:    "short session secret",
			env:     map[string]string{"SESSION_SECRET": "short", "DB_PASSWORD": "x", "ADMIN_PIN": "1997"},
			wantErr: "at least 16",
		},
		{
			name:    "missing db password",
			env:     map[string]string{"SESSION_SECRET": "test-secret-32-characters-long!", "DB_PASSWORD": "", "ADMIN_PIN": "1997"},
			wantErr: "DB_PASSWORD",
		},
		{
			name:    "missing pin",
			env:     map[string]string{"SESSION_SECRET": "test-secret-32-characters-long!", "DB_PASSWORD": "x", "ADMIN_PIN": ""},
			wantErr: "ADMIN_PIN",
		},
		{
			name: "pin violates policy",
			env: map[string]string{
				"SESSION_SECRET": "test-secret-32-characters-long!", "DB_PASSWORD": "x",
				"ADMIN_PIN": "1997", "GATE_SECRET_POLICY": "full-password",
			},
			wantErr: "does not satisfy",
		},
		{
			name: "unknown policy",
			env: map[string]string{
				"SESSION_SECRET": "test-secret-32-characters-long!", "DB_PASSWORD": "x",
				"ADMIN_PIN": "1997", "GATE_SECRET_POLICY": "retina",
			},
			wantErr: "GATE_SECRET_POLICY",
		},
		{
			name: "totp without secret",
			env: map[string]string{
				"SESSION_SECRET": "test-secret-32-characters-long!", "DB_PASSWORD": "x",
				"GATE_SECRET_MODE": "totp",
			},
			wantErr: "ADMIN_TOTP_SECRET",
		},
		{
			name: "production needs longer secret",
			env: map[string]string{
				"SESSION_SECRET": "only-twenty-chars-xx", "DB_PASSWORD": "x",
				"ADMIN_PIN": "1997", "ENV": "production",
			},
			wantErr: "at least 32",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBookingConfig_Location(t *testing.T) {
	assert.Equal(t, time.Local, BookingConfig{Timezone: "Nowhere/Void"}.Location())
}
