// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/internal/browser"
	"github.com/xkilldash9x/pagehound/internal/config"
	"github.com/xkilldash9x/pagehound/internal/llmclient"
	"github.com/xkilldash9x/pagehound/internal/mcp"
	"github.com/xkilldash9x/pagehound/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server hosts the automation API, the extraction tool server, and the
// metrics endpoint on one listener.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics

	driver    *browser.Driver
	registry  *browser.Registry
	engine    *browser.Engine
	planner   *llmclient.Planner
	extractor *llmclient.Extractor
	tools     *mcp.ToolServer

	httpServer *http.Server
}

// New wires the server from its collaborators.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	metrics *observability.Metrics,
	driver *browser.Driver,
	registry *browser.Registry,
	planner *llmclient.Planner,
	extractor *llmclient.Extractor,
) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger.Named("server"),
		metrics:   metrics,
		driver:    driver,
		registry:  registry,
		engine:    browser.NewEngine(cfg.Automation.StepDelay, logger, metrics),
		planner:   planner,
		extractor: extractor,
		tools:     mcp.NewToolServer(logger, metrics),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Router assembles the full route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.WriteTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/product/information", s.handleProductInformation)

		r.Route("/browser", func(r chi.Router) {
			r.Post("/session", s.handleCreateSession)
			r.Get("/session/{sessionID}", s.handleGetSession)
			r.Delete("/session/{sessionID}", s.handleDeleteSession)
			r.Post("/session/cleanup", s.handleCleanupSessions)
			r.Post("/navigate", s.handleNavigate)
			r.Post("/interact", s.handleInteract)
			r.Post("/extract", s.handleExtract)
		})

		r.Post("/automation/task", s.handleAutomationTask)
	})

	// Extraction tool surface: JSON-RPC endpoint plus manifest.
	s.tools.RegisterRoutes(r)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
		s.metrics.Registry,
		promhttp.HandlerOpts{},
	))

	return r
}

// Run serves until the process receives SIGINT/SIGTERM, then shuts down
// the listener and the browser gracefully.
func (s *Server) Run() error {
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		s.logger.Info("Received shutdown signal, shutting down gracefully...")

		shutdownTimeout := s.cfg.Server.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 15 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}

		if _, err := s.registry.Clear(ctx); err != nil {
			s.logger.Error("Session cleanup error during shutdown", zap.Error(err))
		}
		if err := s.driver.Shutdown(ctx); err != nil {
			s.logger.Error("Browser driver shutdown error", zap.Error(err))
		}

		close(idleConnsClosed)
	}()

	s.logger.Info("HTTP server starting", zap.String("address", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("HTTP server ListenAndServe error", zap.Error(err))
		return err
	}

	<-idleConnsClosed
	return nil
}

// writeJSON writes v with the given status; encoding failures are logged,
// not surfaced, since the status line is already committed.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response body", zap.Error(err))
	}
}

// writeError renders an AppError as the uniform envelope.
func (s *Server) writeError(w http.ResponseWriter, appErr *AppError) {
	s.metrics.IncError(errorCategory(appErr.Kind))
	s.writeJSON(w, appErr.StatusCode(), appErr.Envelope())
}

func errorCategory(kind ErrorKind) string {
	switch kind {
	case KindSessionNotFound:
		return "session_not_found"
	case KindBrowserError:
		return "browser"
	case KindMCPError:
		return "mcp"
	case KindSerializationError:
		return "serialization"
	default:
		return "internal"
	}
}
