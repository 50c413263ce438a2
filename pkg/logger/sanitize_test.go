package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizedEmail(t *testing.T) {
	assert.Equal(t, "m****@*******.es", SanitizedEmail("maria@example.es"))
	assert.Equal(t, "[invalid-email]", SanitizedEmail("not-an-email"))
}

func TestSanitizedPhone(t *testing.T) {
	assert.Equal(t, "******678", SanitizedPhone("612345678"))
	assert.Equal(t, "**", SanitizedPhone("12"))
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("pin=1997"))
	assert.True(t, SanitizeQueryString("Email=a@b.c"))
	assert.False(t, SanitizeQueryString("status=Pendiente&page=2"))
}

func TestAuditLogger_LogGateAttempt(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogGateAttempt(AuditEvent{
		EventType:     "pin_verify",
		IPAddress:     "203.0.113.9",
		Success:       false,
		FailureReason: "invalid_secret",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "gate", entry["audit_type"])
	assert.Equal(t, "pin_verify", entry["event_type"])
	assert.Equal(t, "invalid_secret", entry["failure_reason"])
	assert.Equal(t, false, entry["success"])
}
