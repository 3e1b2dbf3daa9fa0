package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soulparadise/web/internal"
	"github.com/soulparadise/web/internal/api"
	"github.com/soulparadise/web/internal/auth"
	"github.com/soulparadise/web/internal/handler"
	"github.com/soulparadise/web/internal/metrics"
	"github.com/soulparadise/web/internal/middleware"
	"github.com/soulparadise/web/internal/session"
	"github.com/soulparadise/web/internal/testimonials"
)

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	isSecure := cfg.Env != "development"

	// Backend API client
	apiClient := api.New(cfg.APIBaseURL, cfg.APITimeout, logger)
	logger.Info("backend configured", "base_url", cfg.APIBaseURL, "timeout", cfg.APITimeout)

	// Session store and controller
	store := session.NewCookieStore(isSecure)
	sessions := auth.NewController(apiClient, store, logger)

	// Google sign-in (optional)
	var google *auth.GoogleOAuth
	if cfg.GoogleOAuthEnabled() {
		google = auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL)
		logger.Info("google sign-in enabled")
	}

	// Template renderer
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		TemplatesDir: "web/templates",
		Logger:       logger,
		IsDev:        cfg.Env == "development",
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}

	// Testimonial cache
	cache := testimonials.New(apiClient, cfg.TestimonialLimit, cfg.TestimonialRefreshInterval, logger)
	cache.Start(ctx)
	defer cache.Stop()

	// Middleware
	authMw := middleware.NewAuthMiddleware(sessions, logger)
	limiter := middleware.NewFormRateLimiter(logger)
	logging := middleware.NewRequestLogging(logger)
	security := middleware.NewSecurityHeaders(isSecure)
	metricsAuth := middleware.NewMetricsAuth(cfg.MetricsUsername, cfg.MetricsPassword)

	// Handlers
	h := handler.New(sessions, apiClient, cache, renderer, google, limiter, logger, isSecure)

	mux := http.NewServeMux()

	// Static files
	staticFS := http.FileServer(http.Dir("web/static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics, behind basic auth
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Pages and forms
	h.RegisterRoutes(mux, authMw)

	// Outer stack: security headers, metrics, request logging
	root := middleware.Stack(
		security.Handler,
		metrics.Middleware,
		logging.Handler,
	)(mux)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
		}
	}()

	<-sigChan
	logger.Info("shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
