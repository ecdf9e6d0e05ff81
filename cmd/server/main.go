package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/employsmart/employsmart/internal"
	"github.com/employsmart/employsmart/internal/billing"
	"github.com/employsmart/employsmart/internal/domain"
	"github.com/employsmart/employsmart/internal/email"
	"github.com/employsmart/employsmart/internal/handler"
	"github.com/employsmart/employsmart/internal/metrics"
	"github.com/employsmart/employsmart/internal/middleware"
	"github.com/employsmart/employsmart/internal/ocr"
	ocrmock "github.com/employsmart/employsmart/internal/ocr/mock"
	"github.com/employsmart/employsmart/internal/ocr/vision"
	"github.com/employsmart/employsmart/internal/repository"
	"github.com/employsmart/employsmart/internal/service"
	"github.com/employsmart/employsmart/internal/storage"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Apply configured Stripe price IDs to the plan table
	domain.SetStripePriceID("basico", cfg.StripeBasicoPriceID)
	domain.SetStripePriceID("profesional", cfg.StripeProfesionalPriceID)
	domain.SetStripePriceID("business", cfg.StripeBusinessPriceID)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		TemplatesDir: cfg.TemplatesDir,
		Logger:       logger,
		IsDev:        cfg.Env == "development",
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}

	// Initialize OCR provider
	var ocrProvider ocr.Provider
	switch cfg.OCRProvider {
	case "vision":
		visionProvider, err := vision.New(ctx, vision.Config{
			BucketName:      cfg.OCRBucketName,
			OutputPrefix:    cfg.OCROutputPrefix,
			CredentialsJSON: []byte(cfg.GoogleCredentials),
			CleanupEnabled:  cfg.OCRCleanupEnabled,
		}, logger)
		if err != nil {
			return fmt.Errorf("vision provider initialization failed: %w", err)
		}
		defer visionProvider.Close()
		ocrProvider = visionProvider
		logger.Info("OCR provider ready", "provider", "vision", "bucket", cfg.OCRBucketName)
	default:
		ocrProvider = ocrmock.New()
		logger.Info("OCR provider ready", "provider", "mock")
	}

	// Initialize CV archive storage
	var archive storage.Storage
	switch cfg.ArchiveProvider {
	case storage.ProviderR2:
		archive, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("r2 storage initialization failed: %w", err)
		}
	case storage.ProviderLocal:
		archive, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
		if err != nil {
			return fmt.Errorf("local storage initialization failed: %w", err)
		}
	default:
		logger.Info("CV archiving disabled")
	}

	// Initialize email
	var emailService email.EmailService
	if cfg.SMTPHost != "" {
		emailService, err = email.NewSMTPEmailService(email.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			From:       cfg.SMTPFrom,
			FromName:   cfg.SMTPFromName,
			SalesInbox: cfg.SMTPSalesInbox,
		}, cfg.BaseURL, cfg.TemplatesDir+"/email", logger)
		if err != nil {
			return fmt.Errorf("email initialization failed: %w", err)
		}
	} else {
		emailService = &email.Noop{Logger: logger}
	}

	// Initialize billing
	var billingService billing.Service
	if cfg.StripeSecretKey != "" {
		billingService = billing.NewStripeService(billing.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.BaseURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:     cfg.BaseURL + "/pricing",
		}, logger)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, billing runs on the mock service")
		billingService = billing.NewMock()
	}

	var paddle *billing.PaddleClient
	if cfg.PaddleAPIKey != "" {
		paddle = billing.NewPaddleClient(billing.PaddleConfig{
			APIKey:  cfg.PaddleAPIKey,
			Sandbox: cfg.PaddleSandbox,
		})
	}

	// Initialize services
	recruiterService := service.NewRecruiterService(repo, emailService, logger)
	jobService := service.NewJobService(repo, logger)
	paymentService := service.NewPaymentService(billingService, paddle, logger)
	extractionService := service.NewExtractionService(ocrProvider, archive, repo, logger)

	// Periodic sweep of expired sessions
	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if err := recruiterService.CleanupExpiredSessions(cleanupCtx); err != nil {
					logger.Error("session cleanup failed", "error", err)
				}
			}
		}
	}()

	// Initialize middleware
	isSecure := cfg.Env != "development"
	authMw := middleware.NewAuthMiddleware(recruiterService, logger, isSecure)
	requestLogging := middleware.NewRequestLoggingMiddleware(logger)
	securityHeaders := middleware.NewSecurityHeadersMiddleware(isSecure)
	limiters := middleware.NewAppRateLimiters(logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(recruiterService, logger, isSecure)
	authHandler.SetCookie = middleware.SetSessionCookie
	authHandler.ClearCookie = middleware.ClearSessionCookie
	authHandler.OnLoginFailure = limiters.RecordFailedLogin
	authHandler.OnLoginSuccess = limiters.ResetLogin

	jobHandler := handler.NewJobHandler(jobService, logger)
	ocrHandler := handler.NewOCRHandler(extractionService, logger)
	billingHandler := handler.NewBillingHandler(billingService, paymentService, renderer, logger)
	pricingHandler := handler.NewPricingHandler(emailService, renderer, logger)
	webhookHandler := handler.NewWebhookHandler(billingService, recruiterService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	staticFS := http.FileServer(http.Dir("web/static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (optionally behind basic auth)
	var metricsHandler http.Handler = promhttp.Handler()
	if cfg.MetricsUsername != "" && cfg.MetricsPassword != "" {
		metricsHandler = basicAuth(metricsHandler, cfg.MetricsUsername, cfg.MetricsPassword)
	}
	mux.Handle("GET /metrics", metricsHandler)

	// Middleware stacks
	public := middleware.Stack(securityHeaders.Handler, requestLogging.Handler, metrics.Middleware, authMw.WithRecruiter)
	protected := middleware.Stack(securityHeaders.Handler, requestLogging.Handler, metrics.Middleware, authMw.WithRecruiter, authMw.RequireRecruiter)

	// Auth routes (rate limited)
	mux.Handle("POST /api/auth/register", public(limiters.LimitRegister(http.HandlerFunc(authHandler.HandleRegister))))
	mux.Handle("POST /api/auth/login", public(limiters.LimitLogin(http.HandlerFunc(authHandler.HandleLogin))))
	mux.Handle("POST /api/auth/logout", public(http.HandlerFunc(authHandler.HandleLogout)))
	mux.Handle("GET /api/me", protected(http.HandlerFunc(authHandler.HandleMe)))

	// Upload-and-extract endpoint. Extraction works for anonymous uploads
	// too, so the route sits on the public stack.
	ocrLimit := limiters.LimitOCR
	if !cfg.OCRRateLimitEnable {
		ocrLimit = nil
	}
	ocrHandler.RegisterRoutes(mux, composeOCRStack(public, ocrLimit))
	ocrHandler.RegisterHistoryRoute(mux, protected)

	// Job posting API
	jobHandler.RegisterRoutes(mux, protected)

	// Billing and payment confirmation
	billingHandler.RegisterRoutes(mux, public, protected)

	// Pricing
	pricingHandler.RegisterRoutes(mux, public)

	// Stripe webhook (signature-authenticated, no session middleware)
	webhookHandler.RegisterRoutes(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// composeOCRStack wraps the session-loading stack around the optional
// extraction rate limiter.
func composeOCRStack(public func(http.Handler) http.Handler, limit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit != nil {
			next = limit(next)
		}
		return public(next)
	}
}

// basicAuth guards a handler with HTTP basic auth.
func basicAuth(next http.Handler, username, password string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != username || pass != password {
			w.Header().Set("WWW-Authenticate", `Basic realm="metrics"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
