package routes

import (
	"log/slog"

	"github.com/BradenHooton/frontdesk/internal/auth"
	"github.com/BradenHooton/frontdesk/internal/handlers"
	"github.com/BradenHooton/frontdesk/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Handlers bundles everything the router dispatches to.
type Handlers struct {
	Gate         *handlers.GateHandler
	Appointments *handlers.AppointmentHandler
	Contacts     *handlers.ContactHandler
	Chat         *handlers.ChatHandler
	Admin        *handlers.AdminHandler
	Health       handlers.HealthChecker
}

// Options tunes the public rate limits and the session gate. A zero limit
// falls back to the middleware defaults.
type Options struct {
	GateRateLimit middleware.RateLimitConfig
	ChatRateLimit middleware.RateLimitConfig
	Revocation    auth.SessionRevocationChecker
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h Handlers, tokenManager *auth.TokenManager, opts Options, logger *slog.Logger) {
	gateLimit := opts.GateRateLimit.Or(middleware.DefaultGateRateLimit())
	chatLimit := opts.ChatRateLimit.Or(middleware.DefaultChatRateLimit())

	router.Get("/health", handlers.Health(h.Health))

	router.Route("/api", func(r chi.Router) {
		// Session gate - public
		r.With(middleware.RateLimitByIP(gateLimit)).Post("/verify-pin", h.Gate.VerifyPIN)
		r.Get("/check-session", h.Gate.CheckSession)
		r.Post("/logout", h.Gate.Logout)

		// Public website endpoints
		r.Post("/contact", h.Contacts.Submit)
		r.Get("/slots", h.Appointments.Slots)
		r.With(middleware.RateLimitByIP(chatLimit)).Post("/chatbot", h.Chat.Respond)

		// Dashboard - PIN session required
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(tokenManager, opts.Revocation, logger))

			r.Get("/appointments", h.Appointments.List)
			r.Put("/appointments/{id}", h.Appointments.Update)
			r.Delete("/appointments/{id}", h.Appointments.Delete)

			r.Get("/contacts", h.Contacts.List)
			r.Get("/contact-submissions", h.Contacts.List)
			r.Put("/contacts/{id}", h.Contacts.UpdateStatus)

			r.Get("/analytics/appointments", h.Admin.GetAppointmentAnalytics)
			r.Get("/analytics/inquiries", h.Admin.GetInquiryAnalytics)
		})
	})
}
