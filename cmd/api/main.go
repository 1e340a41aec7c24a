package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kalindhi/kalindhi-api/internal/auth"
	"github.com/kalindhi/kalindhi-api/internal/background"
	"github.com/kalindhi/kalindhi-api/internal/config"
	"github.com/kalindhi/kalindhi-api/internal/database"
	"github.com/kalindhi/kalindhi-api/internal/handlers"
	middlewareCustom "github.com/kalindhi/kalindhi-api/internal/middleware"
	"github.com/kalindhi/kalindhi-api/internal/repositories"
	"github.com/kalindhi/kalindhi-api/internal/routes"
	"github.com/kalindhi/kalindhi-api/internal/services"
	"github.com/kalindhi/kalindhi-api/internal/storage"
	pkglogger "github.com/kalindhi/kalindhi-api/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	if cfg.Auth.InsecureSecret {
		logger.Warn("JWT_SECRET not set, using insecure development secret")
	}

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	adminRepo := repositories.NewAdminRepository(db)
	otpRepo := repositories.NewOTPRepository(db)
	enquiryRepo := repositories.NewEnquiryRepository(db)

	// Outbound mail is queued and delivered off the request path
	mailer, err := newEmailService(cfg.Email, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}
	notifier := background.NewNotifier(mailer, logger, cfg.Email.QueueSize, cfg.Email.SendTimeout)
	notifier.Start(context.Background())

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.UserTokenExpiry, cfg.Auth.AdminTokenExpiry)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay: time.Duration(cfg.Auth.TimingDelayBaseMs) * time.Millisecond,
		Jitter:    time.Duration(cfg.Auth.TimingDelayRandomMs) * time.Millisecond,
	})
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	otpService := services.NewOTPService(otpRepo, notifier, cfg.Auth.OTPExpiry, logger)
	authService := services.NewAuthService(userRepo, otpService, tokenManager, timingDelay, logger, auditLogger)
	adminAuthService := services.NewAdminAuthService(adminRepo, otpService, tokenManager, timingDelay, notifier, cfg.Auth.OperatorEmail, logger, auditLogger)
	adminService := services.NewAdminService(userRepo, adminRepo, enquiryRepo, logger, auditLogger)
	contactService := services.NewContactService(enquiryRepo, notifier, cfg.Auth.OperatorEmail, logger)

	// Bootstrap the Main Administrator if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := adminAuthService.EnsureMainAdmin(ctx, cfg.Auth.MainAdminEmail, cfg.Auth.MainAdminPassword); err != nil {
		logger.Error("failed to ensure main admin", slog.Any("error", err))
	}
	cancel()

	// Image uploads are optional
	var uploads handlers.UploadServiceInterface
	if cfg.Storage.Enabled() {
		store, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Error("failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.EnsureBucket(ctx); err != nil {
			logger.Warn("image bucket not ready", slog.Any("error", err))
		}
		cancel()
		uploads = services.NewUploadService(store, cfg.Storage.MaxUploadSize, logger)
	} else {
		logger.Info("object storage not configured, image uploads disabled")
	}

	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, logger),
		AdminAuth: handlers.NewAdminAuthHandler(adminAuthService, logger),
		Admin:     handlers.NewAdminHandler(adminService, uploads, cfg.Storage.MaxUploadSize, logger),
		Contact:   handlers.NewContactHandler(contactService, logger),
		Health:    handlers.NewHealthHandler(db, notifier, logger),
	}

	// Google login needs Redis for the single-use state
	if cfg.OAuth.GoogleEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := storage.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer rdb.Close()

		provider := services.NewGoogleProvider(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.GoogleCallbackURL)
		states := storage.NewStateStore(rdb, cfg.OAuth.StateTTL)
		oauthService := services.NewOAuthService(provider, states, userRepo, tokenManager, logger, auditLogger)
		h.OAuth = handlers.NewOAuthHandler(oauthService, firstOrigin(cfg.Server.ClientOrigin), logger)
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(cfg.Server.ClientOrigin))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Route("/api", func(r chi.Router) {
		routes.RegisterRoutes(r, h, routes.Options{
			Tokens:         tokenManager,
			MainAdminEmail: cfg.Auth.MainAdminEmail,
			AuthRateLimit:  middlewareCustom.AuthRateLimit(cfg.Server.AuthRateLimit),
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Drain queued mail after the last request has finished
	notifier.Stop(shutdownCtx)

	logger.Info("server stopped gracefully", slog.Any("mail", notifier.Stats()))
}

func newEmailService(cfg config.EmailConfig, logger *slog.Logger) (services.EmailService, error) {
	if cfg.Provider == "ses" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return services.NewSESEmailService(ctx, cfg.AWSRegion, cfg.FromAddress, logger)
	}
	logger.Warn("EMAIL_PROVIDER=log, emails are written to the log instead of being sent")
	return services.NewLogEmailService(logger), nil
}

// firstOrigin returns the first entry of a comma-separated origin list
func firstOrigin(origins string) string {
	first, _, _ := strings.Cut(origins, ",")
	return strings.TrimSpace(first)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
