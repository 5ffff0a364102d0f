package httpserver

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiter is a token bucket per key, refilled evenly over a minute.
type rateLimiter struct {
	name     string
	code     string
	message  string
	perIP    bool
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	logger   *zap.Logger
}

func newRateLimiter(name, code, message string, perMinute int, perIP bool, logger *zap.Logger) *rateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &rateLimiter{
		name:     name,
		code:     code,
		message:  message,
		perIP:    perIP,
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		limiters: make(map[string]*rate.Limiter),
		logger:   logger,
	}
}

func (rl *rateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// key uses the authenticated user when there is one, otherwise the client IP.
func (rl *rateLimiter) key(c *gin.Context) string {
	if !rl.perIP {
		if u, ok := currentUser(c); ok {
			return "user:" + strconv.FormatInt(u.ID, 10)
		}
	}
	return "ip:" + c.ClientIP()
}

func (rl *rateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.key(c)
		l := rl.get(key)
		r := l.Reserve()
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			rl.logger.Warn("rate limit exceeded",
				zap.String("limiter", rl.name),
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path))
			respondError(c, http.StatusTooManyRequests, rl.code, rl.message, nil)
			return
		}
		c.Next()
	}
}

// Sweep drops idle limiters that are back at full capacity.
func (rl *rateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	for key, l := range rl.limiters {
		if l.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}
