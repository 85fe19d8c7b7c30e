// Package api serves the AeroMind HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/config"
	"github.com/Rohit-Gupta-126/aeromind/internal/graph"
	"github.com/Rohit-Gupta-126/aeromind/internal/ingestion"
	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
	"github.com/Rohit-Gupta-126/aeromind/internal/metrics"
	"github.com/Rohit-Gupta-126/aeromind/internal/storage"
)

const metricsRefreshInterval = 30 * time.Second

// Asker answers a single question.
type Asker interface {
	Run(ctx context.Context, question string) graph.Response
}

// IndexBuilder rebuilds the vector index from the documents directory.
type IndexBuilder interface {
	BuildIndex(ctx context.Context) (ingestion.Stats, error)
	Dir() string
	OCREnabled() bool
}

// IndexStore exposes the read side of the vector index.
type IndexStore interface {
	Documents(ctx context.Context) ([]storage.DocumentRecord, error)
	ChunkCount(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type CacheStatus interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP handlers call into.
type Deps struct {
	Workflow Asker
	Indexer  IndexBuilder
	Store    IndexStore
	Cache    CacheStatus
}

type Server struct {
	cfg      config.ServerConfig
	deps     Deps
	router   *mux.Router
	validate *validator.Validate
	logger   *zap.Logger
}

func NewServer(cfg config.ServerConfig, deps Deps, logger *zap.Logger) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		router:   mux.NewRouter(),
		validate: v,
		logger:   logging.OrNop(logger).Named("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestLogging, instrument)

	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/ask", s.handleAsk).Methods("POST")
	s.router.HandleFunc("/upload", s.handleUpload).Methods("POST")
	s.router.HandleFunc("/documents", s.handleDocuments).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/mcp", s.handleMCP).Methods("POST")
	s.router.HandleFunc("/tools/list", s.handleToolsList).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler())
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.updateMetrics(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("AeroMind server starting", zap.String("port", s.cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server exited")
	return nil
}

func (s *Server) updateMetrics(ctx context.Context) {
	ticker := time.NewTicker(metricsRefreshInterval)
	defer ticker.Stop()

	for {
		if n, err := s.deps.Store.ChunkCount(ctx); err == nil {
			metrics.IndexChunks.Set(float64(n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSONResponse(w, status, ErrorResponse{Detail: detail})
}
