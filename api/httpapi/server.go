package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/observability"
	"github.com/CleanExpo/Zenith-Fresh-sub004/internal/scheduler"
)

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	scheduler  *scheduler.Scheduler
}

type Config struct {
	Port string
}

func NewServer(cfg Config, logger *zap.Logger, sched *scheduler.Scheduler) *Server {
	r := mux.NewRouter()

	routeName := func(r *http.Request) string {
		if rt := mux.CurrentRoute(r); rt != nil {
			if tpl, err := rt.GetPathTemplate(); err == nil && tpl != "" {
				return tpl
			}
		}
		return r.URL.Path
	}

	// Middlewares (order matters)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware(routeName))
	r.Use(observability.HTTPMetricsMiddleware(routeName))
	r.Use(observability.AccessLogMiddleware(logger, routeName))

	srv := &Server{
		logger:    logger,
		scheduler: sched,
	}

	// Metrics
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Health
	r.HandleFunc("/api/v1/health", srv.handleHealth).Methods(http.MethodGet)

	// Documents
	r.HandleFunc("/api/v1/documents", srv.handleAddDocument).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/documents", srv.handleListDocuments).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/documents/{id}", srv.handleGetDocument).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/documents/{id}", srv.handleDeleteDocument).Methods(http.MethodDelete)

	// Tasks
	r.HandleFunc("/api/v1/tasks", srv.handleCreateTask).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/tasks", srv.handleListTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/tasks/{id}", srv.handleGetTask).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/tasks/{id}/cancel", srv.handleCancelTask).Methods(http.MethodPost)

	// Batch processing
	r.HandleFunc("/api/v1/batch", srv.handleBatch).Methods(http.MethodPost)

	// Analytics and scheduler introspection
	r.HandleFunc("/api/v1/analytics/summary", srv.handleAnalyticsSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/scheduler/stats", srv.handleSchedulerStats).Methods(http.MethodGet)

	s := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srv.httpServer = s
	return srv
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
