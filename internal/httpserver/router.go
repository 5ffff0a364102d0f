package httpserver

import (
	"context"
	"net/http"
	"time"

	"customer-api/internal/domain"
	"customer-api/internal/metrics"
	"customer-api/internal/service/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginResult, error)
	Logout(ctx context.Context, u *domain.User, current *domain.AccessToken, allDevices bool) error
	Authenticate(ctx context.Context, plain string) (*domain.User, *domain.AccessToken, error)
}

type CustomerService interface {
	Create(ctx context.Context, data domain.CustomerData) (*domain.Customer, error)
	Update(ctx context.Context, c *domain.Customer, data domain.CustomerData) (*domain.Customer, error)
	Delete(ctx context.Context, c *domain.Customer, force bool) error
	Restore(ctx context.Context, c *domain.Customer) (*domain.Customer, error)
	FindByUUID(ctx context.Context, uuid string) (*domain.Customer, error)
	FindByUUIDWithTrashed(ctx context.Context, uuid string) (*domain.Customer, error)
	Paginate(ctx context.Context, filter domain.CustomerFilter) (domain.Page[domain.Customer], error)
}

// Deps carries the services the HTTP layer depends on.
type Deps struct {
	AuthSvc     AuthService
	CustomerSvc CustomerService
	Metrics     *metrics.Metrics
}

// Options tunes the middleware stack.
type Options struct {
	APIToken           string
	APITokenHeader     string
	CORSOrigins        []string
	RateLimitAPI       int
	RateLimitLogin     int
	RateLimitSensitive int
}

type limiters struct {
	api       *rateLimiter
	login     *rateLimiter
	sensitive *rateLimiter
}

func (l *limiters) sweep() {
	l.api.Sweep()
	l.login.Sweep()
	l.sensitive.Sweep()
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, *limiters) {
	useWireFieldNames()
	if opts.APITokenHeader == "" {
		opts.APITokenHeader = "x-api-token"
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger.Named("http")), metricsMiddleware(deps.Metrics))
	router.Use(cors.New(corsConfig(opts)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	lim := &limiters{
		api: newRateLimiter("api", "TOO_MANY_REQUESTS",
			"Too many requests. Please try again later.", opts.RateLimitAPI, false, logger),
		login: newRateLimiter("login", "TOO_MANY_ATTEMPTS",
			"Too many login attempts. Please try again later.", opts.RateLimitLogin, true, logger),
		sensitive: newRateLimiter("sensitive", "RATE_LIMIT_EXCEEDED",
			"Rate limit exceeded for sensitive operations.", opts.RateLimitSensitive, false, logger),
	}

	authH := &authHandler{svc: deps.AuthSvc, logger: logger}
	custH := &customerHandler{svc: deps.CustomerSvc, logger: logger}

	v1 := router.Group("/api/v1", apiTokenMiddleware(opts.APIToken, opts.APITokenHeader))
	v1.POST("/login", lim.login.Handler(), authH.login)

	authed := v1.Group("", bearerAuth(deps.AuthSvc, logger))
	authed.POST("/logout", lim.api.Handler(), authH.logout)
	authed.POST("/logout-all", lim.sensitive.Handler(), authH.logoutAll)
	authed.GET("/me", lim.api.Handler(), authH.me)

	customers := authed.Group("/customers")
	customers.GET("", lim.api.Handler(), custH.index)
	customers.POST("", lim.api.Handler(), custH.store)
	customers.GET("/:uuid", lim.api.Handler(), custH.show)
	customers.PUT("/:uuid", lim.api.Handler(), custH.update)
	customers.DELETE("/:uuid", lim.api.Handler(), custH.destroy)
	customers.POST("/:uuid/restore", lim.api.Handler(), custH.restore)
	customers.DELETE("/:uuid/force", lim.sensitive.Handler(), custH.forceDelete)

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, codeNotFound, "Resource not found", nil)
	})

	return router, lim
}

func corsConfig(opts Options) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Accept", opts.APITokenHeader},
		ExposeHeaders: []string{"Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.CORSOrigins) == 0 || (len(opts.CORSOrigins) == 1 && opts.CORSOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = opts.CORSOrigins
	}
	return cfg
}
