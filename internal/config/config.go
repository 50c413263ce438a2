package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/frontdesk/pkg/auth"
	"github.com/joho/godotenv"
)

const (
	SecretModePIN  = "pin"
	SecretModeTOTP = "totp"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Gate     GateConfig
	Email    EmailConfig
	Chat     ChatConfig
	Booking  BookingConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	AutoMigrate       bool
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// GateConfig drives the PIN gate in front of the dashboard.
type GateConfig struct {
	SessionSecret     string
	SecretPolicy      auth.SecretPolicy
	SecretMode        string
	AdminPIN          string
	AdminPINHash      string
	TOTPSecret        string
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	LookbackWindow    time.Duration
	AttemptRetention  time.Duration
	SessionTTL        time.Duration
	RememberMeTTL     time.Duration
	CookieSecure      bool
	CookieDomain      string
	CookieSameSite    string
	CleanupInterval   time.Duration
	RateLimitPerMin   int
	TimingBaseMs      int
	TimingJitterMs    int
}

type EmailConfig struct {
	Enabled          bool
	Region           string
	SenderEmail      string
	BusinessName     string
	ReminderLead     time.Duration
	ReminderInterval time.Duration
}

type ChatConfig struct {
	RateLimitPerMin int
}

type BookingConfig struct {
	Timezone       string
	MaxDaysAhead   int
	AvailableDays  int
	SlotScanWindow int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	env := getEnv("ENV", "development")

	policy, err := auth.ParseSecretPolicy(getEnv("GATE_SECRET_POLICY", string(auth.PolicyShortNumeric)))
	if err != nil {
		return nil, fmt.Errorf("GATE_SECRET_POLICY: %w", err)
	}

	cfg := &Config{
		Database: loadDatabase(),
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Gate: GateConfig{
			SessionSecret:     sessionSecret,
			SecretPolicy:      policy,
			SecretMode:        strings.ToLower(getEnv("GATE_SECRET_MODE", SecretModePIN)),
			AdminPIN:          getEnv("ADMIN_PIN", ""),
			AdminPINHash:      getEnv("ADMIN_PIN_HASH", ""),
			TOTPSecret:        getEnv("ADMIN_TOTP_SECRET", ""),
			MaxFailedAttempts: getEnvAsInt("GATE_MAX_FAILED_ATTEMPTS", 5),
			LockoutDuration:   getEnvAsDuration("GATE_LOCKOUT_DURATION", 15*time.Minute),
			LookbackWindow:    getEnvAsDuration("GATE_LOOKBACK_WINDOW", 15*time.Minute),
			AttemptRetention:  getEnvAsDuration("GATE_ATTEMPT_RETENTION", 24*time.Hour),
			SessionTTL:        getEnvAsDuration("SESSION_TTL", 8*time.Hour),
			RememberMeTTL:     getEnvAsDuration("REMEMBER_ME_TTL", 30*24*time.Hour),
			CookieSecure:      getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieDomain:      getEnv("COOKIE_DOMAIN", ""),
			CookieSameSite:    strings.ToLower(getEnv("COOKIE_SAMESITE", "strict")),
			CleanupInterval:   getEnvAsDuration("GATE_CLEANUP_INTERVAL", 1*time.Hour),
			RateLimitPerMin:   getEnvAsInt("GATE_RATE_LIMIT_PER_MIN", 20),
			TimingBaseMs:      getEnvAsInt("GATE_TIMING_BASE_MS", 250),
			TimingJitterMs:    getEnvAsInt("GATE_TIMING_JITTER_MS", 150),
		},
		Email: EmailConfig{
			Enabled:          getEnvAsBool("EMAIL_ENABLED", false),
			Region:           getEnv("AWS_REGION", "eu-west-1"),
			SenderEmail:      getEnv("EMAIL_SENDER", ""),
			BusinessName:     getEnv("BUSINESS_NAME", "Frontdesk"),
			ReminderLead:     getEnvAsDuration("REMINDER_LEAD", 24*time.Hour),
			ReminderInterval: getEnvAsDuration("REMINDER_INTERVAL", 15*time.Minute),
		},
		Chat: ChatConfig{
			RateLimitPerMin: getEnvAsInt("CHAT_RATE_LIMIT_PER_MIN", 30),
		},
		Booking: BookingConfig{
			Timezone:       getEnv("BOOKING_TIMEZONE", "Europe/Madrid"),
			MaxDaysAhead:   getEnvAsInt("BOOKING_MAX_DAYS_AHEAD", 30),
			AvailableDays:  getEnvAsInt("BOOKING_AVAILABLE_DAYS", 7),
			SlotScanWindow: getEnvAsInt("BOOKING_SLOT_SCAN_DAYS", 14),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateSessionSecret(sessionSecret, env); err != nil {
		return nil, err
	}

	if err := cfg.Gate.validate(); err != nil {
		return nil, err
	}

	if cfg.Email.Enabled && cfg.Email.SenderEmail == "" {
		return nil, fmt.Errorf("EMAIL_SENDER is required when EMAIL_ENABLED is set")
	}

	return cfg, nil
}

func (g *GateConfig) validate() error {
	switch g.SecretMode {
	case SecretModePIN:
		if g.AdminPIN == "" && g.AdminPINHash == "" {
			return fmt.Errorf("ADMIN_PIN or ADMIN_PIN_HASH is required in pin mode")
		}
		if g.AdminPIN != "" {
			if err := g.SecretPolicy.Validate(g.AdminPIN); err != nil {
				return fmt.Errorf("ADMIN_PIN does not satisfy GATE_SECRET_POLICY %s: %w", g.SecretPolicy, err)
			}
		}
	case SecretModeTOTP:
		if g.TOTPSecret == "" {
			return fmt.Errorf("ADMIN_TOTP_SECRET is required in totp mode")
		}
		if g.SecretPolicy != auth.PolicyShortNumeric {
			return fmt.Errorf("totp mode requires the short-numeric secret policy")
		}
	default:
		return fmt.Errorf("GATE_SECRET_MODE must be %q or %q", SecretModePIN, SecretModeTOTP)
	}

	if g.MaxFailedAttempts < 1 {
		return fmt.Errorf("GATE_MAX_FAILED_ATTEMPTS must be positive")
	}
	return nil
}

// validateSessionSecret enforces minimum strength for the cookie signing key
func validateSessionSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "password", "changeme", "default", "example",
		"changemechangeme", "secretsecretsecret",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("SESSION_SECRET cannot be a common weak value")
		}
	}

	return nil
}

// Location resolves the booking timezone, falling back to the host zone.
func (b BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// LoadDatabase reads only the database settings, for tools that never serve.
func LoadDatabase() DatabaseConfig {
	_ = godotenv.Load()
	return loadDatabase()
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              getEnvAsInt("DB_PORT", 5432),
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", ""),
		Name:              getEnv("DB_NAME", "frontdesk"),
		SSLMode:           getEnv("DB_SSLMODE", "disable"),
		MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
		MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
		MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
		HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		AutoMigrate:       getEnvAsBool("DB_AUTO_MIGRATE", true),
	}
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return splitList(getEnv("ALLOWED_ORIGINS", ""))
	}

	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
