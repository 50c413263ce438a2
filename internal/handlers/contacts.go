package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
)

// ContactServiceInterface defines the contact form business logic
type ContactServiceInterface interface {
	Submit(ctx context.Context, c *dto.ContactSubmission) (*dto.ContactSubmission, error)
	List(ctx context.Context) ([]*dto.ContactSubmission, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*dto.ContactSubmission, error)
}

type ContactHandler struct {
	service     ContactServiceInterface
	auditLogger *pkglogger.AuditLogger
	ipConfig    *pkghttp.IPConfig
	logger      *slog.Logger
}

func NewContactHandler(service ContactServiceInterface, auditLogger *pkglogger.AuditLogger, ipConfig *pkghttp.IPConfig, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		service:     service,
		auditLogger: auditLogger,
		ipConfig:    ipConfig,
		logger:      logger,
	}
}

// ContactRequest is the public contact form. Required fields and formats are
// checked by the service so the messages stay in Spanish; only sizes are bounded here.
type ContactRequest struct {
	Name       string `json:"name" validate:"max=100"`
	Email      string `json:"email" validate:"max=120"`
	Phone      string `json:"phone" validate:"max=20"`
	PostalCode string `json:"postal_code" validate:"max=10"`
	City       string `json:"city" validate:"max=100"`
	Province   string `json:"province" validate:"max=100"`
	Inquiry    string `json:"inquiry" validate:"max=5000"`
}

type UpdateContactStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type contactListResponse struct {
	Contacts []*dto.ContactSubmission `json:"contacts"`
}

type contactResponse struct {
	Message string                    `json:"message"`
	Contact *dto.ContactSubmission `json:"contact,omitempty"`
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fields := FieldErrors(req); fields != nil {
		pkghttp.WriteValidationErrors(w, fields)
		return
	}

	created, err := h.service.Submit(r.Context(), &dto.ContactSubmission{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		PostalCode: req.PostalCode,
		City:       req.City,
		Province:   req.Province,
		Inquiry:    req.Inquiry,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Contact not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, contactResponse{
		Message: "Gracias por contactarnos. Te responderemos lo antes posible.",
		Contact: created,
	})
}

// List handles GET /api/contacts and GET /api/contact-submissions
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Contact not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, contactListResponse{Contacts: contacts})
}

// UpdateStatus handles PUT /api/contacts/{id}
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid contact ID")
		return
	}

	var req UpdateContactStatusRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fields := FieldErrors(req); fields != nil {
		pkghttp.WriteValidationErrors(w, fields)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, h.logger, err, "Contact not found")
		return
	}

	if h.auditLogger != nil {
		h.auditLogger.LogRecordChange("contact", "update_status", strconv.FormatInt(id, 10), pkghttp.ExtractClientIP(r, h.ipConfig))
	}
	pkghttp.WriteJSON(w, http.StatusOK, contactResponse{Message: "Contact updated successfully", Contact: updated})
}
