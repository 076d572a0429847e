package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// OpsServer serves the operational endpoints: GET /healthz for liveness
// and GET /metrics for Prometheus scraping. It is independent of the
// Telegram long-poll loop, so the bot stays scrapeable even while a
// collaborator call is in flight.
type OpsServer struct {
	srv *http.Server
	log zerolog.Logger
}

// NewOpsServer builds the ops server listening on addr.
func NewOpsServer(addr string, log zerolog.Logger) *OpsServer {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &OpsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Start serves until the listener fails or Shutdown is called. It runs
// in its own goroutine and logs the terminal error, if any.
func (s *OpsServer) Start() {
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("ops server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("ops server terminated")
		}
	}()
}

// Shutdown drains the server within the context deadline.
func (s *OpsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
