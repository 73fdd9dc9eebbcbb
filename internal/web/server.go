package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/idelchi/dirviz/internal/output"
)

// shutdownTimeout bounds how long in-flight requests may take once serving stops.
const shutdownTimeout = 5 * time.Second

// Handler serves a saved viewer directory.
//
// The scan artifact is served byte-for-byte; when compressed is set it carries
// Content-Encoding: gzip so browsers decode it transparently. If registry is not
// nil its metrics are exposed on /metrics.
func Handler(dir string, compressed bool, registry *prometheus.Registry) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/"+output.ScanFile, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if compressed {
			w.Header().Set("Content-Encoding", "gzip")
		}

		http.ServeFile(w, r, filepath.Join(dir, output.ScanFile))
	}).Methods(http.MethodGet, http.MethodHead)

	if registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	router.PathPrefix("/").Handler(http.FileServer(http.Dir(dir)))

	return router
}

// Serve listens on localhost:port and serves handler until ctx is done.
// A clean shutdown returns nil.
func Serve(ctx context.Context, port int, handler http.Handler, log *zap.Logger) error {
	server := &http.Server{
		Addr:              net.JoinHostPort("localhost", strconv.Itoa(port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", server.Addr, err)
	}

	return serve(ctx, server, listener, log)
}

func serve(ctx context.Context, server *http.Server, listener net.Listener, log *zap.Logger) error {
	errc := make(chan error, 1)

	go func() {
		errc <- server.Serve(listener)
	}()

	log.Debug("serving viewer", zap.String("addr", listener.Addr().String()))

	select {
	case err := <-errc:
		return fmt.Errorf("serving viewer: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("stopping viewer server: %w", err)
	}

	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving viewer: %w", err)
	}

	return nil
}
