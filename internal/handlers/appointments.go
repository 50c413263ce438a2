package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
)

// AppointmentServiceInterface defines the appointment business logic
type AppointmentServiceInterface interface {
	List(ctx context.Context) ([]*dto.Appointment, error)
	Update(ctx context.Context, id int64, upd *models.AppointmentUpdate) (*dto.Appointment, error)
	Delete(ctx context.Context, id int64) error
	AvailableSlots(ctx context.Context) ([]models.DaySlots, error)
}

// AppointmentHandler serves the appointment endpoints of the dashboard
type AppointmentHandler struct {
	service     AppointmentServiceInterface
	auditLogger *pkglogger.AuditLogger
	ipConfig    *pkghttp.IPConfig
	logger      *slog.Logger
}

func NewAppointmentHandler(service AppointmentServiceInterface, auditLogger *pkglogger.AuditLogger, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service:     service,
		auditLogger: auditLogger,
		ipConfig:    ipConfig,
		logger:      logger,
	}
}

// UpdateAppointmentRequest is a partial update; omitted fields are kept.
// An omitted status resets the appointment to Pendiente.
type UpdateAppointmentRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email" validate:"omitempty,email,max=120"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
	Date    *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time    *string `json:"time" validate:"omitempty,datetime=15:04"`
	Service *string `json:"service" validate:"omitempty,max=100"`
	Status  *string `json:"status" validate:"omitempty,oneof=Pendiente Confirmada Cancelada Completada"`
}

type appointmentListResponse struct {
	Appointments []*dto.Appointment `json:"appointments"`
}

type appointmentResponse struct {
	Message     string              `json:"message"`
	Appointment *dto.Appointment `json:"appointment,omitempty"`
}

type slotsResponse struct {
	Slots []models.DaySlots `json:"slots"`
}

// List handles GET /api/appointments
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Appointment not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, appointmentListResponse{Appointments: appointments})
}

// Update handles PUT /api/appointments/{id}
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid appointment ID")
		return
	}

	var req UpdateAppointmentRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fields := FieldErrors(req); fields != nil {
		pkghttp.WriteValidationErrors(w, fields)
		return
	}

	updated, err := h.service.Update(r.Context(), id, &models.AppointmentUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Date:    req.Date,
		Time:    req.Time,
		Service: req.Service,
		Status:  req.Status,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Appointment not found")
		return
	}

	h.audit("update", id, r)
	pkghttp.WriteJSON(w, http.StatusOK, appointmentResponse{Message: "Appointment updated successfully", Appointment: updated})
}

// Delete handles DELETE /api/appointments/{id}
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid appointment ID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err, "Appointment not found")
		return
	}

	h.audit("delete", id, r)
	pkghttp.WriteJSON(w, http.StatusOK, appointmentResponse{Message: "Appointment deleted successfully"})
}

// Slots handles GET /api/slots
func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.AvailableSlots(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "No slots")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, slotsResponse{Slots: slots})
}

func (h *AppointmentHandler) audit(action string, id int64, r *http.Request) {
	if h.auditLogger == nil {
		return
	}
	h.auditLogger.LogRecordChange("appointment", action, strconv.FormatInt(id, 10), pkghttp.ExtractClientIP(r, h.ipConfig))
}
