// Package ops serves the bot's operational HTTP endpoints: a liveness probe
// and the Prometheus metrics scrape target.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/platform"
)

// Server exposes /healthz and /metrics.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds the ops server. The messenger is only consulted for the
// gateway latency reported by the health probe.
func NewServer(addr string, msgr platform.Messenger, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":             "ok",
			"gateway_latency_ms": msgr.Latency().Milliseconds(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: router},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
