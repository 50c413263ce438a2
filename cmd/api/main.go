package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/frontdesk/internal/auth"
	"github.com/BradenHooton/frontdesk/internal/background"
	"github.com/BradenHooton/frontdesk/internal/chatbot"
	"github.com/BradenHooton/frontdesk/internal/config"
	"github.com/BradenHooton/frontdesk/internal/database"
	"github.com/BradenHooton/frontdesk/internal/handlers"
	middlewareCustom "github.com/BradenHooton/frontdesk/internal/middleware"
	"github.com/BradenHooton/frontdesk/internal/repositories"
	"github.com/BradenHooton/frontdesk/internal/routes"
	"github.com/BradenHooton/frontdesk/internal/services"
	pkghttp "github.com/BradenHooton/frontdesk/pkg/http"
	pkglogger "github.com/BradenHooton/frontdesk/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("secret_mode", cfg.Gate.SecretMode),
		slog.String("secret_policy", string(cfg.Gate.SecretPolicy)),
	)

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.MigratePool(ctx, db.Pool, logger)
		cancel()
		if err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	loginAttemptRepo := repositories.NewLoginAttemptRepository(db)
	revokeRepo := repositories.NewSessionRevocationRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	contactRepo := repositories.NewContactRepository(db)

	// Gate
	verifier, err := newVerifier(cfg.Gate)
	if err != nil {
		logger.Error("failed to initialize gate secret", slog.Any("error", err))
		os.Exit(1)
	}

	tokenManager := auth.NewTokenManager(cfg.Gate.SessionSecret, cfg.Gate.SessionTTL, cfg.Gate.RememberMeTTL)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Gate.TimingBaseMs,
		RandomDelayMs: cfg.Gate.TimingJitterMs,
	})
	auditLogger := pkglogger.NewAuditLogger(logger)

	rateLimitService := services.NewRateLimitService(loginAttemptRepo, services.RateLimitConfig{
		MaxFailedAttempts: cfg.Gate.MaxFailedAttempts,
		LockoutDuration:   cfg.Gate.LockoutDuration,
		LookbackWindow:    cfg.Gate.LookbackWindow,
		AttemptRetention:  cfg.Gate.AttemptRetention,
	}, logger)

	gateService := services.NewGateService(
		cfg.Gate.SecretPolicy,
		verifier,
		rateLimitService,
		tokenManager,
		revokeRepo,
		timingDelay,
		logger,
		auditLogger,
	)

	// Email
	var mailer services.EmailService = services.NewLogEmailService(logger)
	if cfg.Email.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ses, err := services.NewAWSSESEmailService(ctx, cfg.Email.Region, cfg.Email.SenderEmail, cfg.Email.BusinessName, logger)
		cancel()
		if err != nil {
			logger.Error("failed to initialize email service", slog.Any("error", err))
			os.Exit(1)
		}
		mailer = ses
	}

	// Initialize services
	appointmentService := services.NewAppointmentService(appointmentRepo, mailer, services.BookingRules{
		Location:      cfg.Booking.Location(),
		MaxDaysAhead:  cfg.Booking.MaxDaysAhead,
		AvailableDays: cfg.Booking.AvailableDays,
		ScanDays:      cfg.Booking.SlotScanWindow,
	}, logger)
	contactService := services.NewContactService(contactRepo, logger)
	bot := chatbot.New(appointmentService, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	cookieConfig := auth.CookieConfig{
		Domain:   cfg.Gate.CookieDomain,
		Secure:   cfg.Gate.CookieSecure,
		SameSite: cfg.Gate.CookieSameSite,
	}

	h := routes.Handlers{
		Gate:         handlers.NewGateHandler(gateService, cookieConfig, ipConfig, logger),
		Appointments: handlers.NewAppointmentHandler(appointmentService, auditLogger, ipConfig, logger),
		Contacts:     handlers.NewContactHandler(contactService, auditLogger, ipConfig, logger),
		Chat:         handlers.NewChatHandler(bot, logger),
		Admin:        handlers.NewAdminHandler(appointmentService, contactService, logger),
		Health:       db,
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.OriginGuard(cfg.Server.AllowedOrigins, logger))
	router.Use(middlewareCustom.SecureLogger(logger, ipConfig))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, h, tokenManager, routes.Options{
		GateRateLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Gate.RateLimitPerMin, IPConfig: ipConfig},
		ChatRateLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Chat.RateLimitPerMin, IPConfig: ipConfig},
		Revocation:    revokeRepo,
	}, logger)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Background jobs
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	cleanupManager := background.NewCleanupManager(logger, cfg.Gate.CleanupInterval,
		background.CleanupTask{Name: "login_attempts", Purge: loginAttemptRepo.DeleteExpiredAttempts},
		background.CleanupTask{Name: "revoked_sessions", Purge: revokeRepo.CleanupExpiredSessions},
	)
	go cleanupManager.Start(bgCtx)

	var reminders *background.ReminderDispatcher
	if cfg.Email.Enabled {
		reminders = background.NewReminderDispatcher(appointmentService, cfg.Email.ReminderLead, cfg.Email.ReminderInterval, logger)
		go reminders.Start(bgCtx)
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	bgCancel()
	cleanupManager.Stop()
	if reminders != nil {
		reminders.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func newVerifier(cfg config.GateConfig) (auth.SecretVerifier, error) {
	if cfg.SecretMode == config.SecretModeTOTP {
		return auth.NewTOTPVerifier(cfg.TOTPSecret), nil
	}
	return auth.NewPINVerifier(cfg.AdminPIN, cfg.AdminPINHash)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
