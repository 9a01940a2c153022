package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leads-dashboard/models"
	"leads-dashboard/services"
	"leads-dashboard/storage"
	"leads-dashboard/utils"
)

// Runner is the part of the pipeline the HTTP layer needs.
type Runner interface {
	Run(ctx context.Context, filter services.Filter) *models.Result
	Location() *time.Location
}

// Server exposes dashboard data as JSON and downloadable exports.
type Server struct {
	runner   Runner
	logger   *utils.Logger
	gatherer prometheus.Gatherer
	now      func() time.Time
}

// New creates a Server. gatherer may be nil to disable /metrics.
func New(runner Runner, logger *utils.Logger, gatherer prometheus.Gatherer) *Server {
	return &Server{runner: runner, logger: logger, gatherer: gatherer, now: time.Now}
}

// Routes returns the full router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.FilterCtx)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/leads", s.GetLeads)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/report", s.GetReport)
		r.Get("/export.csv", s.GetExport(storage.CSVWriter{}))
		r.Get("/export.xlsx", s.GetExport(storage.XLSXWriter{}))
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("[server] Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("[server] %s %s %d %v request_id=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(started), middleware.GetReqID(r.Context()))
	})
}
