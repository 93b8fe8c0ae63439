package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relabs-tech/air_monitor/internal/telemetry"
)

// WebDeps are the collaborators served over HTTP.
type WebDeps struct {
	Store     *telemetry.Store
	Board     *StatusBoard
	Hub       *LiveHub
	Registry  *prometheus.Registry
	StaticDir string
	Logger    *slog.Logger
}

// NewWebMux routes the dashboard, the JSON API, metrics, health and the
// live feed.
func NewWebMux(d WebDeps) *http.ServeMux {
	log := d.Logger.With("component", "web")
	mux := http.NewServeMux()

	// JSON API endpoint: current reading and history
	mux.HandleFunc("GET /api/data", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, d.Store.Snapshot())
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, d.Board.Health())
	})

	if d.Registry != nil {
		mux.Handle("GET /metrics", MetricsHandler(d.Registry))
	}
	if d.Hub != nil {
		mux.HandleFunc("GET /ws", d.Hub.HandleWS)
	}

	// Static files as the root
	mux.Handle("/", http.FileServer(http.Dir(d.StaticDir)))
	return mux
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("json encode error", "error", err)
	}
}

// ServeWeb serves handler on addr until ctx is cancelled.
func ServeWeb(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web server listening", "component", "web", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
