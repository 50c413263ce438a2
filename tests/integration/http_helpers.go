package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/BradenHooton/frontdesk/internal/auth"
	"github.com/BradenHooton/frontdesk/internal/chatbot"
	"github.com/BradenHooton/frontdesk/internal/database"
	"github.com/BradenHooton/frontdesk/internal/handlers"
	middlewareCustom "github.com/BradenHooton/frontdesk/internal/middleware"
	"github.com/BradenHooton/frontdesk/internal/repositories"
	"github.com/BradenHooton/frontdesk/internal/routes"
	"github.com/BradenHooton/frontdesk/internal/services"
	pkgauth "github.com/BradenHooton/frontdesk/pkg/auth"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
)

// TestPIN unlocks every TestServer.
const TestPIN = "1997"

// SentEmail represents a captured email message
type SentEmail struct {
	Kind          string
	AppointmentID int64
	To            string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

func (m *MockEmailService) record(kind string, a *dto.Appointment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentEmails = append(m.SentEmails, SentEmail{Kind: kind, AppointmentID: a.ID, To: a.Email})
}

func (m *MockEmailService) SendAppointmentConfirmation(ctx context.Context, a *dto.Appointment) error {
	m.record("confirmation", a)
	return nil
}

func (m *MockEmailService) SendAppointmentReminder(ctx context.Context, a *dto.Appointment) error {
	m.record("reminder", a)
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	Appointments *services.AppointmentService

	client *http.Client
}

// NewTestServer initializes a complete HTTP server with real database + mocked email
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))

	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	revokeRepo := repositories.NewSessionRevocationRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	contactRepo := repositories.NewContactRepository(db)

	mockEmail := &MockEmailService{}

	verifier, err := auth.NewPINVerifier(TestPIN, "")
	if err != nil {
		panic(err)
	}

	tokenManager := auth.NewTokenManager("integration-session-secret-32-characters", 8*time.Hour, 30*24*time.Hour)
	auditLogger := pkglogger.NewAuditLogger(logger)

	rateLimitService := services.NewRateLimitService(loginAttemptRepo, services.RateLimitConfig{
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		LookbackWindow:    15 * time.Minute,
		AttemptRetention:  24 * time.Hour,
	}, logger)

	gateService := services.NewGateService(
		pkgauth.PolicyShortNumeric,
		verifier,
		rateLimitService,
		tokenManager,
		revokeRepo,
		auth.NewTimingDelay(auth.TimingConfig{BaseDelayMs: 1}),
		logger,
		auditLogger,
	)

	appointmentService := services.NewAppointmentService(appointmentRepo, mockEmail, services.BookingRules{
		Location:      time.UTC,
		MaxDaysAhead:  30,
		AvailableDays: 7,
		ScanDays:      21,
	}, logger)
	contactService := services.NewContactService(contactRepo, logger)

	ipConfig := &pkghttp.IPConfig{}
	h := routes.Handlers{
		Gate:         handlers.NewGateHandler(gateService, auth.CookieConfig{SameSite: "strict"}, ipConfig, logger),
		Appointments: handlers.NewAppointmentHandler(appointmentService, auditLogger, ipConfig, logger),
		Contacts:     handlers.NewContactHandler(contactService, auditLogger, ipConfig, logger),
		Chat:         handlers.NewChatHandler(chatbot.New(appointmentService, logger), logger),
		Admin:        handlers.NewAdminHandler(appointmentService, contactService, logger),
		Health:       db,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(middlewareCustom.OriginGuard(nil, logger))
	r.Use(chiMiddleware.Recoverer)

	routes.RegisterRoutes(r, h, tokenManager, routes.Options{
		GateRateLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: 100, IPConfig: ipConfig},
		ChatRateLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: 100, IPConfig: ipConfig},
		Revocation:    revokeRepo,
	}, logger)

	jar, _ := cookiejar.New(nil)

	return &TestServer{
		Server:       httptest.NewServer(r),
		DB:           db,
		EmailService: mockEmail,
		Appointments: appointmentService,
		client:       &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// Request makes an HTTP request to the test server. Cookies persist across
// calls, like a browser tab.
func (ts *TestServer) Request(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return ts.client.Do(req)
}

// Login unlocks the gate with TestPIN.
func (ts *TestServer) Login() (*http.Response, error) {
	return ts.Request(http.MethodPost, "/api/verify-pin", map[string]any{"pin": TestPIN})
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// GetErrorMessage extracts error message from error response
func GetErrorMessage(resp *http.Response) (string, error) {
	var errResp map[string]any
	if err := ParseJSONResponse(resp, &errResp); err != nil {
		return "", err
	}
	if msg, ok := errResp["message"].(string); ok {
		return msg, nil
	}
	return "", nil
}
