package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/frontdesk/pkg/dto"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
)

// AnalyticsServiceInterface defines the dashboard analytics contract.
type AnalyticsServiceInterface interface {
	Analytics(ctx context.Context) (*dto.AppointmentAnalytics, error)
}

// InquiryAnalyticsInterface summarises contact form submissions.
type InquiryAnalyticsInterface interface {
	InquiryAnalytics(ctx context.Context) (*dto.InquiryAnalytics, error)
}

// AdminHandler serves the dashboard summary charts.
type AdminHandler struct {
	service   AnalyticsServiceInterface
	inquiries InquiryAnalyticsInterface
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service AnalyticsServiceInterface, inquiries InquiryAnalyticsInterface, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: service, inquiries: inquiries, logger: logger}
}

// GetAppointmentAnalytics handles GET /api/analytics/appointments
func (h *AdminHandler) GetAppointmentAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Analytics(r.Context())
	if err != nil {
		h.logger.Error("analytics failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to retrieve appointment analytics")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

// GetInquiryAnalytics handles GET /api/analytics/inquiries
func (h *AdminHandler) GetInquiryAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inquiries.InquiryAnalytics(r.Context())
	if err != nil {
		h.logger.Error("inquiry analytics failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to retrieve inquiry analytics")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}
