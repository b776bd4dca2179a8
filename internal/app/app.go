package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"shippulse/internal/config"
	"shippulse/internal/errors"
	"shippulse/internal/infrastructure"
	customMiddleware "shippulse/internal/middleware"
	"shippulse/internal/services"
	handlers "shippulse/internal/transport/http"
)

const (
	Version = "v1.0.0"
	AppName = "ShipPulse - Order Fulfillment Analytics"
)

// Application is the main application container. It owns configuration,
// the service layer, the router and the HTTP server lifecycle.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	DataService   *services.DataService
	HealthService *services.HealthService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	dataService := services.NewDataServiceWithLogger(cfg, paths, logger)
	healthService := services.NewHealthService(Version, dataService, logger)

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		DataService:   dataService,
		HealthService: healthService,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	a.Router = a.setupRouter()
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

func (a *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(5))

	if a.Config.Server.RateLimit.Enabled {
		limiter := customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")
	ordersHandler := handlers.NewOrdersHandler(a.DataService, a.Logger, errorHandler, a.Config.Server.MaxUploadBytes)
	dashboardHandler := handlers.NewDashboardHandler(a.DataService, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		r.Mount("/orders", ordersHandler.Routes())
		r.Mount("/dashboard", dashboardHandler.Routes())
	})

	r.Get("/healthz", healthHandler.Handle)
	r.Method(http.MethodGet, "/metrics", infrastructure.MetricsHandler())

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	return r
}

// Run starts the HTTP server and blocks until shutdown. SIGINT and SIGTERM
// trigger a graceful drain bounded by the configured shutdown timeout.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received",
			slog.String("signal", sig.String()))
	}

	return a.Shutdown(context.Background())
}

// Shutdown drains in-flight requests and flushes the tracer provider.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("server shutdown failed",
			slog.String("error", err.Error()))
		return err
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("tracer shutdown failed",
				slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogger()
	a.Logger.Info("shutdown complete")
	return nil
}
