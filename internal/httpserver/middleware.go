package httpserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"customer-api/internal/domain"
	"customer-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxUserKey  = "auth.user"
	ctxTokenKey = "auth.token"
	bearer      = "Bearer "
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if u, ok := currentUser(c); ok {
			fields = append(fields, zap.String("user_uuid", u.UUID))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request handled", fields...)
			return
		}
		logger.Info("request handled", fields...)
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// apiTokenMiddleware checks a shared static token ahead of per-user auth.
// An empty expected token disables the check.
func apiTokenMiddleware(expected, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}
		provided := c.GetHeader(header)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			err := domain.ErrInvalidAPIToken
			respondError(c, http.StatusUnauthorized, err.Code, err.Message, nil)
			return
		}
		c.Next()
	}
}

func bearerAuth(svc AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) < len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
			unauthenticated(c)
			return
		}
		plain := strings.TrimSpace(header[len(bearer):])
		if plain == "" {
			unauthenticated(c)
			return
		}

		u, tok, err := svc.Authenticate(c.Request.Context(), plain)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				unauthenticated(c)
				return
			}
			writeError(c, logger, err)
			return
		}
		c.Set(ctxUserKey, u)
		c.Set(ctxTokenKey, tok)
		c.Next()
	}
}

func unauthenticated(c *gin.Context) {
	err := domain.ErrUnauthenticated
	respondError(c, http.StatusUnauthorized, err.Code, err.Message, nil)
}

func currentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}

func currentToken(c *gin.Context) *domain.AccessToken {
	v, ok := c.Get(ctxTokenKey)
	if !ok {
		return nil
	}
	t, _ := v.(*domain.AccessToken)
	return t
}
