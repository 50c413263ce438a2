package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/frontdesk/internal/handlers"
	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/BradenHooton/frontdesk/internal/services"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppointmentHandler(svc handlers.AppointmentServiceInterface) *handlers.AppointmentHandler {
	return handlers.NewAppointmentHandler(svc, nil, nil, discardLogger())
}

func strPtr(s string) *string { return &s }

func TestListAppointments(t *testing.T) {
	svc := &handlers.MockAppointmentService{
		ListFunc: func(ctx context.Context) ([]*dto.Appointment, error) {
			return []*dto.Appointment{{ID: 2, Name: "Ana", Status: dto.AppointmentStatusPending}}, nil
		},
	}
	w := httptest.NewRecorder()
	newAppointmentHandler(svc).List(w, handlers.WithSessionContext(httptest.NewRequest("GET", "/api/appointments", nil), false))

	var resp struct {
		Appointments []dto.Appointment `json:"appointments"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, "Ana", resp.Appointments[0].Name)
}

func TestListAppointments_Error(t *testing.T) {
	svc := &handlers.MockAppointmentService{
		ListFunc: func(ctx context.Context) ([]*dto.Appointment, error) {
			return nil, errors.New("db down")
		},
	}
	w := httptest.NewRecorder()
	newAppointmentHandler(svc).List(w, httptest.NewRequest("GET", "/api/appointments", nil))

	handlers.AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
}

func TestUpdateAppointment_Success(t *testing.T) {
	var got *models.AppointmentUpdate
	svc := &handlers.MockAppointmentService{
		UpdateFunc: func(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error) {
			got = upd
			return &dto.Appointment{ID: id, Status: *upd.Status}, nil
		},
	}

	req := handlers.NewTestRequest(t, "PUT", "/api/appointments/4", handlers.UpdateAppointmentRequest{
		Status: strPtr(dto.AppointmentStatusConfirmed),
		Time:   strPtr("12:30"),
	})
	w := httptest.NewRecorder()
	newAppointmentHandler(svc).Update(w, handlers.WithURLParam(req, "id", "4"))

	var resp struct {
		Message     string             `json:"message"`
		Appointment dto.Appointment `json:"appointment"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Appointment updated successfully", resp.Message)
	assert.Equal(t, int64(4), resp.Appointment.ID)
	assert.Equal(t, "12:30", *got.Time)
	assert.Nil(t, got.Name)
}

func TestUpdateAppointment_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		body  handlers.UpdateAppointmentRequest
		field string
	}{
		{"bad status", "1", handlers.UpdateAppointmentRequest{Status: strPtr("Archivada")}, "status"},
		{"bad email", "1", handlers.UpdateAppointmentRequest{Email: strPtr("not-an-email")}, "email"},
		{"bad date", "1", handlers.UpdateAppointmentRequest{Date: strPtr("02/03/2026")}, "date"},
		{"bad time", "1", handlers.UpdateAppointmentRequest{Time: strPtr("9am")}, "time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockAppointmentService{
				UpdateFunc: func(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			req := handlers.NewTestRequest(t, "PUT", "/api/appointments/"+tt.id, tt.body)
			w := httptest.NewRecorder()
			newAppointmentHandler(svc).Update(w, handlers.WithURLParam(req, "id", tt.id))

			var resp pkghttp.ValidationErrorResponse
			handlers.AssertJSONResponse(t, w, http.StatusBadRequest, &resp)
			assert.Contains(t, resp.ValidationErrors, tt.field)
		})
	}
}

func TestUpdateAppointment_BadID(t *testing.T) {
	req := handlers.NewTestRequest(t, "PUT", "/api/appointments/abc", handlers.UpdateAppointmentRequest{})
	w := httptest.NewRecorder()
	newAppointmentHandler(&handlers.MockAppointmentService{}).Update(w, handlers.WithURLParam(req, "id", "abc"))

	handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestUpdateAppointment_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound, "not_found"},
		{"slot taken", models.ErrSlotTaken, http.StatusConflict, "conflict"},
		{"validation", &services.ValidationError{Fields: map[string]string{"status": "Invalid status"}}, http.StatusBadRequest, "validation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockAppointmentService{
				UpdateFunc: func(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error) {
					return nil, tt.err
				},
			}
			req := handlers.NewTestRequest(t, "PUT", "/api/appointments/9", handlers.UpdateAppointmentRequest{})
			w := httptest.NewRecorder()
			newAppointmentHandler(svc).Update(w, handlers.WithURLParam(req, "id", "9"))

			handlers.AssertErrorResponse(t, w, tt.status, tt.code)
		})
	}
}

func TestDeleteAppointment(t *testing.T) {
	var deleted int64
	svc := &handlers.MockAppointmentService{
		DeleteFunc: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	req := httptest.NewRequest("DELETE", "/api/appointments/7", nil)
	w := httptest.NewRecorder()
	newAppointmentHandler(svc).Delete(w, handlers.WithURLParam(req, "id", "7"))

	var resp map[string]string
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Appointment deleted successfully", resp["message"])
	assert.Equal(t, int64(7), deleted)
}

func TestDeleteAppointment_NotFound(t *testing.T) {
	svc := &handlers.MockAppointmentService{
		DeleteFunc: func(ctx context.Context, id int64) error { return models.ErrNotFound },
	}
	req := httptest.NewRequest("DELETE", "/api/appointments/7", nil)
	w := httptest.NewRecorder()
	newAppointmentHandler(svc).Delete(w, handlers.WithURLParam(req, "id", "7"))

	handlers.AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}

func TestSlots(t *testing.T) {
	svc := &handlers.MockAppointmentService{
		AvailableSlotsFunc: func(ctx context.Context) ([]models.DaySlots, error) {
			return []models.DaySlots{{Date: "2026-03-02", Label: "2 de marzo de 2026", Times: []string{"10:30"}}}, nil
		},
	}
	w := httptest.NewRecorder()
	newAppointmentHandler(svc).Slots(w, httptest.NewRequest("GET", "/api/slots", nil))

	var resp struct {
		Slots []models.DaySlots `json:"slots"`
	}
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "2 de marzo de 2026", resp.Slots[0].Label)
}

func TestAppointmentAnalytics(t *testing.T) {
	svc := &handlers.MockAppointmentService{
		AnalyticsFunc: func(ctx context.Context) (*dto.AppointmentAnalytics, error) {
			return &dto.AppointmentAnalytics{Total: 12, Today: 2, ServiceLabels: []string{"Ventas Digitales"}, ServiceCounts: []int{12}}, nil
		},
	}
	w := httptest.NewRecorder()
	handlers.NewAdminHandler(svc, &handlers.MockContactService{}, discardLogger()).GetAppointmentAnalytics(w, httptest.NewRequest("GET", "/api/analytics/appointments", nil))

	var resp dto.AppointmentAnalytics
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 12, resp.Total)
	assert.Equal(t, []int{12}, resp.ServiceCounts)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Health(&handlers.MockHealthChecker{})(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handlers.Health(&handlers.MockHealthChecker{Err: errors.New("down")})(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
