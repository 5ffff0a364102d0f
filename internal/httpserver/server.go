package httpserver

import (
	"context"
	"net/http"
	"time"

	"customer-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const limiterSweepInterval = 5 * time.Minute

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	db         *pgxpool.Pool
	limiters   *limiters
	stop       chan struct{}
}

// New builds a Server with all API routes.
func New(addr string, logger *zap.Logger, db *pgxpool.Pool, deps Deps, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	router, lim := buildRouter(logger, db, deps, opts)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
		db:         db,
		limiters:   lim,
		stop:       make(chan struct{}),
	}
}

// OptionsFromConfig picks the HTTP settings out of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		APIToken:           cfg.APIToken,
		APITokenHeader:     cfg.APITokenHeader,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitAPI:       cfg.RateLimitAPI,
		RateLimitLogin:     cfg.RateLimitLogin,
		RateLimitSensitive: cfg.RateLimitSensitive,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	go s.sweepLimiters()
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) sweepLimiters() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.limiters.sweep()
		case <-s.stop:
			return
		}
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "db not reachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
