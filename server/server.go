package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/linkpeek/linkpeek/batch"
	"github.com/linkpeek/linkpeek/config"
	"github.com/linkpeek/linkpeek/extractor"
	"github.com/linkpeek/linkpeek/fetcher"
	ierrors "github.com/linkpeek/linkpeek/internal/errors"
	"github.com/linkpeek/linkpeek/quota"
)

// Server - The HTTP boundary around the preview pipeline
type Server struct {
	cfg          *config.Config
	processor    *batch.Processor
	limiter      *quota.DailyLimiter
	entitlements quota.Entitlements
}

// New wires a Server from its collaborators.
func New(cfg *config.Config, processor *batch.Processor, limiter *quota.DailyLimiter, entitlements quota.Entitlements) *Server {
	return &Server{
		cfg:          cfg,
		processor:    processor,
		limiter:      limiter,
		entitlements: entitlements,
	}
}

// Router builds the chi router with the ambient middleware stack.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(s.cfg.Server.Timeout) * time.Second))

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	})

	r.Post("/api/preview", s.handlePreview)
	r.Post("/api/export", s.handleExport)
	r.Get("/ping", s.handlePing)

	return r
}

// Run - Build the pipeline from config and serve until the listener stops.
func Run(cfg *config.Config, name string, version string, revision string) error {
	versionString := version
	if revision != "" && revision != "xxx" {
		versionString = versionString + " (" + revision + ")"
	}
	zap.S().Infow("starting preview server",
		"name", name,
		"version", versionString,
		"addr", cfg.Server.Addr)

	httpFetcher := fetcher.NewHTTPFetcher(&fetcher.Config{
		Timeout:         cfg.Fetch.Timeout,
		UserAgent:       cfg.Fetch.UserAgent,
		FollowRedirects: cfg.Fetch.FollowRedirects,
		MaxBodyBytes:    cfg.Fetch.MaxBodyBytes,
	})

	processor := batch.NewProcessor(httpFetcher, extractor.New(), &batch.Config{
		MaxWorkers: cfg.Batch.MaxWorkers,
		PageSize:   cfg.Batch.PageSize,
	})

	srv := New(cfg, processor, quota.NewDailyLimiter(cfg.Quota.FreeDailyLimit), quota.NewStaticEntitlements())

	zap.S().Infow("listening", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Router()); err != nil {
		zap.S().Errorw("server stopped", "error", err)
		return ierrors.Wrap(err, "failed to start server")
	}
	return nil
}
