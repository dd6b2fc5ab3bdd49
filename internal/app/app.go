package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"salesboard/internal/config"
	apierrors "salesboard/internal/errors"
	"salesboard/internal/infrastructure"
	customMiddleware "salesboard/internal/middleware"
	"salesboard/internal/services"
	"salesboard/internal/storage"
	handlers "salesboard/internal/transport/http"
	"salesboard/pkg/contracts"
)

// APIPrefix is where the versioned report API is mounted.
const APIPrefix = "/api/v1"

// runtimeSampleInterval is how often runtime gauges are refreshed.
const runtimeSampleInterval = 15 * time.Second

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Store         storage.BlobStore
	Reports       *services.ReportService
	Health        *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler
	startTime     time.Time
}

// NewApplication loads the configuration and wires every component.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("bucket", cfg.Storage.Bucket))

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return New(cfg, store, logger)
}

// New wires an application around an already opened store.
func New(cfg *config.Config, store storage.BlobStore, logger *slog.Logger) (*Application, error) {
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
		startTime:     time.Now(),
	}

	if err := app.initializeServices(store); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(store storage.BlobStore) error {
	instrumented, err := storage.NewInstrumented(store, a.Config.Storage.Backend, a.OTelProviders.Meter, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to instrument storage: %w", err)
	}
	a.Store = instrumented

	reports, err := services.NewReportService(a.Store, a.Config, a.OTelProviders.Meter, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize report service: %w", err)
	}
	a.Reports = reports

	a.Health = services.NewHealthService(
		contracts.Version,
		contracts.BuildTime,
		a.readinessChecks(),
		a.Logger,
	)

	return nil
}

// readinessChecks probes what can be checked without fetching a table.
func (a *Application) readinessChecks() map[string]services.ReadinessCheck {
	checks := map[string]services.ReadinessCheck{
		"catalog": func(context.Context) error {
			if len(a.Config.Storage.Products) == 0 {
				return errors.New("no products configured")
			}
			return nil
		},
	}

	if a.Config.Storage.Backend == storage.BackendFile {
		dir := filepath.Join(a.Config.Storage.BaseDir, a.Config.Storage.Bucket)
		checks["storage"] = func(context.Context) error {
			info, err := os.Stat(dir)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			return nil
		}
	}

	return checks
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recovery → headers → CORS → rate limit → Timeout
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.StripSlashes)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Scrapes sit outside the request timeout group.
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.startTime)
	r.Mount("/metrics", metricsHandler.Routes())

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		validator := customMiddleware.NewValidator(a.Logger)
		page := handlers.NewPageHandler(a.Reports, validator, a.Logger, a.ErrorHandler, APIPrefix)
		r.Get("/", page.ServeHTTP)

		a.setupAPIRoutes(r, validator)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, validator *customMiddleware.Validator) {
	r.Route("/api", func(r chi.Router) {
		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.With(render.SetContentType(render.ContentTypeJSON)).Group(func(r chi.Router) {
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)
		})

		reportHandler := handlers.NewReportHandler(a.Reports, validator, a.Logger, a.ErrorHandler)
		r.Mount("/v1", reportHandler.Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	collector, err := infrastructure.NewRuntimeCollector(a.OTelProviders.Meter, a.startTime, runtimeSampleInterval)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", a.Server.Addr),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return collector.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutdown requested")
		return a.Stop(context.WithoutCancel(gctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.Info("Application shutdown complete")
	return nil
}
