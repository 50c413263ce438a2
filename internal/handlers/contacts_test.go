package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BradenHooton/frontdesk/internal/handlers"
	"github.com/BradenHooton/frontdesk/internal/services"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	"github.com/stretchr/testify/assert"
)

func newContactHandler(svc handlers.ContactServiceInterface) *handlers.ContactHandler {
	return handlers.NewContactHandler(svc, nil, nil, discardLogger())
}

func TestSubmitContact_Success(t *testing.T) {
	w := httptest.NewRecorder()
	newContactHandler(&handlers.MockContactService{}).Submit(w, handlers.NewTestRequest(t, "POST", "/api/contact", handlers.ContactRequest{
		Name:    "Jorge",
		Email:   "jorge@example.es",
		Phone:   "612345678",
		Inquiry: "Hola",
	}))

	var resp struct {
		Message string                   `json:"message"`
		Contact dto.ContactSubmission `json:"contact"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, int64(1), resp.Contact.ID)
	assert.NotEmpty(t, resp.Message)
}

func TestSubmitContact_ValidationErrors(t *testing.T) {
	svc := &handlers.MockContactService{
		SubmitFunc: func(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error) {
			return nil, &services.ValidationError{Fields: map[string]string{
				"phone": "Número de teléfono inválido",
				"name":  "Este campo es obligatorio",
			}}
		},
	}
	w := httptest.NewRecorder()
	newContactHandler(svc).Submit(w, handlers.NewTestRequest(t, "POST", "/api/contact", handlers.ContactRequest{Phone: "1"}))

	var resp pkghttp.ValidationErrorResponse
	handlers.AssertJSONResponse(t, w, http.StatusBadRequest, &resp)
	assert.Equal(t, "Número de teléfono inválido", resp.ValidationErrors["phone"])
	assert.Equal(t, "Este campo es obligatorio", resp.ValidationErrors["name"])
}

func TestSubmitContact_TooLong(t *testing.T) {
	w := httptest.NewRecorder()
	newContactHandler(&handlers.MockContactService{}).Submit(w, handlers.NewTestRequest(t, "POST", "/api/contact", handlers.ContactRequest{
		Inquiry: strings.Repeat("a", 5001),
	}))

	var resp pkghttp.ValidationErrorResponse
	handlers.AssertJSONResponse(t, w, http.StatusBadRequest, &resp)
	assert.Contains(t, resp.ValidationErrors, "inquiry")
}

func TestListContacts(t *testing.T) {
	svc := &handlers.MockContactService{
		ListFunc: func(ctx context.Context) ([]*dto.ContactSubmission, error) {
			return []*dto.ContactSubmission{{ID: 1, Status: dto.ContactStatusNew}, {ID: 2, Status: dto.ContactStatusCompleted}}, nil
		},
	}
	w := httptest.NewRecorder()
	newContactHandler(svc).List(w, httptest.NewRequest("GET", "/api/contacts", nil))

	var resp struct {
		Contacts []dto.ContactSubmission `json:"contacts"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Len(t, resp.Contacts, 2)
}

func TestUpdateContactStatus(t *testing.T) {
	svc := &handlers.MockContactService{
		UpdateStatusFunc: func(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error) {
			return &dto.ContactSubmission{ID: id, Status: status}, nil
		},
	}
	req := handlers.NewTestRequest(t, "PUT", "/api/contacts/3", handlers.UpdateContactStatusRequest{Status: dto.ContactStatusInProgress})
	w := httptest.NewRecorder()
	newContactHandler(svc).UpdateStatus(w, handlers.WithURLParam(req, "id", "3"))

	var resp struct {
		Contact dto.ContactSubmission `json:"contact"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, dto.ContactStatusInProgress, resp.Contact.Status)
}

func TestUpdateContactStatus_MissingStatus(t *testing.T) {
	req := handlers.NewTestRequest(t, "PUT", "/api/contacts/3", map[string]string{})
	w := httptest.NewRecorder()
	newContactHandler(&handlers.MockContactService{}).UpdateStatus(w, handlers.WithURLParam(req, "id", "3"))

	var resp pkghttp.ValidationErrorResponse
	handlers.AssertJSONResponse(t, w, http.StatusBadRequest, &resp)
	assert.Contains(t, resp.ValidationErrors, "status")
}

func TestInquiryAnalytics(t *testing.T) {
	svc := &handlers.MockContactService{
		AnalyticsFunc: func(ctx context.Context) (*dto.InquiryAnalytics, error) {
			return &dto.InquiryAnalytics{Total: 9, Open: 4, ProvinceLabels: []string{"Madrid"}, ProvinceCounts: []int{6}}, nil
		},
	}
	w := httptest.NewRecorder()
	handlers.NewAdminHandler(&handlers.MockAppointmentService{}, svc, discardLogger()).
		GetInquiryAnalytics(w, httptest.NewRequest("GET", "/api/analytics/inquiries", nil))

	var resp dto.InquiryAnalytics
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 9, resp.Total)
	assert.Equal(t, 4, resp.Open)
	assert.Equal(t, []string{"Madrid"}, resp.ProvinceLabels)
}

func TestInquiryAnalytics_Failure(t *testing.T) {
	svc := &handlers.MockContactService{
		AnalyticsFunc: func(ctx context.Context) (*dto.InquiryAnalytics, error) {
			return nil, errors.New("db down")
		},
	}
	w := httptest.NewRecorder()
	handlers.NewAdminHandler(&handlers.MockAppointmentService{}, svc, discardLogger()).
		GetInquiryAnalytics(w, httptest.NewRequest("GET", "/api/analytics/inquiries", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to retrieve inquiry analytics")
}
