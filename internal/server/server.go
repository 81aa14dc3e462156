package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/report-map/internal/db"
	"github.com/ukydev/report-map/internal/feed"
	"github.com/ukydev/report-map/internal/handlers"
	"github.com/ukydev/report-map/internal/middleware"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Store         db.ReportCollection
	Publisher     feed.Publisher
	Log           *logrus.Entry
	AllowedOrigin string
	// Registry receives the request metrics and backs /metrics.
	Registry *prometheus.Registry
}

// Router is the service's HTTP handler.
type Router struct {
	http.Handler
	reports *handlers.ReportHandler
}

// Drain waits for feed publications started by handled requests.
func (r *Router) Drain() {
	r.reports.Wait()
}

// NewRouter wires the report API, health and metrics endpoints.
func NewRouter(deps Deps) *Router {
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.Log == nil {
		deps.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	reports := handlers.NewReportHandler(deps.Store, deps.Publisher, deps.Log)
	metrics := middleware.NewMetrics(deps.Registry, "reportmap")

	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reports", reports.Create).Methods(http.MethodPost)
	api.HandleFunc("/reports", reports.List).Methods(http.MethodGet)

	r.Handle("/health", handlers.NewHealthHandler(deps.Store, 5*time.Second)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	cors := middleware.CORS(middleware.CORSOptions{
		AllowedOrigin:    deps.AllowedOrigin,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	})
	return &Router{
		Handler: middleware.RequestLogger(deps.Log)(cors(r)),
		reports: reports,
	}
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *logrus.Entry) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
