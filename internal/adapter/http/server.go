package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/dashboard"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the dashboard page, the panel API, and health, readiness and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboard  *dashboard.Service
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard and operational routes.
func NewServer(addr string, svc *dashboard.Service, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			// A first request for a new row count loads the source file.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		dashboard: svc,
		validate:  validator.New(),
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", http.FileServerFS(staticFS))

	mux.HandleFunc("GET /api/v1/dataset", s.handleDataset)
	mux.HandleFunc("GET /api/v1/map", s.handleMap)
	mux.HandleFunc("GET /api/v1/hour", s.handleHour)
	mux.HandleFunc("GET /api/v1/hour/minutes", s.handleMinutes)
	mux.HandleFunc("GET /api/v1/hour/raw", s.handleRaw)
	mux.HandleFunc("GET /api/v1/streets", s.handleStreets)
	mux.HandleFunc("GET /api/v1/top", s.handleTop)
	mux.HandleFunc("GET /api/v1/trend", s.handleTrend)

	mux.HandleFunc("GET /charts/minutes.png", s.handleMinutesChart)
	mux.HandleFunc("GET /charts/top.png", s.handleTopChart)
	mux.HandleFunc("GET /charts/trend.png", s.handleTrendChart)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = withRequestID(mux, logger)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

// internalError logs err against the request and answers 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		"request_id", RequestID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, err.Error())
}
