package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/frontdesk/internal/auth"
	"github.com/BradenHooton/frontdesk/internal/chatbot"
	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/BradenHooton/frontdesk/internal/services"
	pkgauth "github.com/BradenHooton/frontdesk/pkg/auth"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithURLParam sets a chi URL parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// WithSessionContext marks the request as having passed the gate
func WithSessionContext(req *http.Request, rememberMe bool) *http.Request {
	claims := &models.SessionClaims{Type: models.TokenTypeSession, RememberMe: rememberMe}
	return req.WithContext(context.WithValue(req.Context(), auth.SessionContextKey, claims))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockGateService implements GateServiceInterface for testing
type MockGateService struct {
	PolicyValue      pkgauth.SecretPolicy
	VerifySecretFunc func(ctx context.Context, secret string, rememberMe bool, ipAddress, userAgent string) (*services.GateResult, error)
	CheckSessionFunc func(ctx context.Context, token string) (*models.SessionStatus, error)
	LogoutFunc       func(ctx context.Context, token, ipAddress string) error
}

func (m *MockGateService) Policy() pkgauth.SecretPolicy {
	if m.PolicyValue == "" {
		return pkgauth.PolicyShortNumeric
	}
	return m.PolicyValue
}

func (m *MockGateService) VerifySecret(ctx context.Context, secret string, rememberMe bool, ipAddress, userAgent string) (*services.GateResult, error) {
	if m.VerifySecretFunc == nil {
		return nil, models.ErrInvalidSecret
	}
	return m.VerifySecretFunc(ctx, secret, rememberMe, ipAddress, userAgent)
}

func (m *MockGateService) CheckSession(ctx context.Context, token string) (*models.SessionStatus, error) {
	if m.CheckSessionFunc == nil {
		return &models.SessionStatus{}, nil
	}
	return m.CheckSessionFunc(ctx, token)
}

func (m *MockGateService) Logout(ctx context.Context, token, ipAddress string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, token, ipAddress)
}

// MockAppointmentService implements AppointmentServiceInterface and AnalyticsServiceInterface for testing
type MockAppointmentService struct {
	ListFunc           func(ctx context.Context) ([]*dto.Appointment, error)
	UpdateFunc         func(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error)
	DeleteFunc         func(ctx context.Context, id int64) error
	AvailableSlotsFunc func(ctx context.Context) ([]models.DaySlots, error)
	AnalyticsFunc      func(ctx context.Context) (*dto.AppointmentAnalytics, error)
}

func (m *MockAppointmentService) List(ctx context.Context) ([]*dto.Appointment, error) {
	if m.ListFunc == nil {
		return []*dto.Appointment{}, nil
	}
	return m.ListFunc(ctx)
}

func (m *MockAppointmentService) Update(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error) {
	if m.UpdateFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateFunc(ctx, id, upd)
}

func (m *MockAppointmentService) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

func (m *MockAppointmentService) AvailableSlots(ctx context.Context) ([]models.DaySlots, error) {
	if m.AvailableSlotsFunc == nil {
		return []models.DaySlots{}, nil
	}
	return m.AvailableSlotsFunc(ctx)
}

func (m *MockAppointmentService) Analytics(ctx context.Context) (*dto.AppointmentAnalytics, error) {
	if m.AnalyticsFunc == nil {
		return &dto.AppointmentAnalytics{}, nil
	}
	return m.AnalyticsFunc(ctx)
}

// MockContactService implements ContactServiceInterface and InquiryAnalyticsInterface for testing
type MockContactService struct {
	SubmitFunc       func(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error)
	ListFunc         func(ctx context.Context) ([]*dto.ContactSubmission, error)
	UpdateStatusFunc func(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error)
	AnalyticsFunc    func(ctx context.Context) (*dto.InquiryAnalytics, error)
}

func (m *MockContactService) Submit(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error) {
	if m.SubmitFunc == nil {
		out := *c
		out.ID = 1
		return &out, nil
	}
	return m.SubmitFunc(ctx, c)
}

func (m *MockContactService) List(ctx context.Context) ([]*dto.ContactSubmission, error) {
	if m.ListFunc == nil {
		return []*dto.ContactSubmission{}, nil
	}
	return m.ListFunc(ctx)
}

func (m *MockContactService) UpdateStatus(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error) {
	if m.UpdateStatusFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateStatusFunc(ctx, id, status)
}

func (m *MockContactService) InquiryAnalytics(ctx context.Context) (*dto.InquiryAnalytics, error) {
	if m.AnalyticsFunc == nil {
		return &dto.InquiryAnalytics{}, nil
	}
	return m.AnalyticsFunc(ctx)
}

// MockChatResponder implements ChatResponder for testing
type MockChatResponder struct {
	RespondFunc func(ctx context.Context, message string, state *dto.BookingState) (*chatbot.Reply, error)
}

func (m *MockChatResponder) Respond(ctx context.Context, message string, state *dto.BookingState) (*chatbot.Reply, error) {
	if m.RespondFunc == nil {
		return &chatbot.Reply{Response: "ok", State: dto.BookingState{Step: dto.StepInitial}}, nil
	}
	return m.RespondFunc(ctx, message, state)
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error { return m.Err }
