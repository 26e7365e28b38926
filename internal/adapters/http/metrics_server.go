package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/storytext/internal/ports"
)

const (
	metricsEndpoint = "/metrics"
	healthEndpoint  = "/healthz"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// MetricsServer exposes the Prometheus registry over HTTP.
type MetricsServer struct {
	srv    *http.Server
	logger ports.Logger
}

// NewMetricsServer creates a server for addr that serves gatherer on /metrics.
func NewMetricsServer(addr string, gatherer prometheus.Gatherer, logger ports.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle(metricsEndpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc(healthEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return &MetricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger,
	}
}

// Handler returns the server's request handler.
func (s *MetricsServer) Handler() http.Handler {
	return s.srv.Handler
}

// Start listens on the configured address and serves in the background.
// The listener is bound before Start returns so address errors surface here.
func (s *MetricsServer) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("serving metrics", ports.String("addr", ln.Addr().String()))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", ports.Err(err))
		}
	}()
	return nil
}

// Shutdown stops the server, waiting briefly for in-flight scrapes.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
