package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func limitedEngine(rl *rateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func hitFrom(r http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = ip + ":4000"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_PerIPBuckets(t *testing.T) {
	rl := newRateLimiter("test", "SLOW_DOWN", "Slow down.", 3, true, zap.NewNop())
	r := limitedEngine(rl)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, hitFrom(r, "10.0.0.1").Code)
	}
	rec := hitFrom(r, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "SLOW_DOWN", env.ErrorCode)
	assert.Equal(t, "Slow down.", env.Message)

	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.True(t, retry >= 1 && retry <= 20, "retry-after=%d", retry)

	assert.Equal(t, http.StatusNoContent, hitFrom(r, "10.0.0.2").Code)
}

func TestRateLimiter_RejectedRequestsDoNotConsume(t *testing.T) {
	rl := newRateLimiter("test", "SLOW_DOWN", "Slow down.", 1, true, zap.NewNop())
	r := limitedEngine(rl)

	assert.Equal(t, http.StatusNoContent, hitFrom(r, "10.0.0.1").Code)
	first := hitFrom(r, "10.0.0.1")
	second := hitFrom(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	a, _ := strconv.Atoi(first.Header().Get("Retry-After"))
	b, _ := strconv.Atoi(second.Header().Get("Retry-After"))
	assert.LessOrEqual(t, b, a)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := newRateLimiter("test", "SLOW_DOWN", "Slow down.", 5, true, zap.NewNop())
	r := limitedEngine(rl)

	hitFrom(r, "10.0.0.1")
	rl.get("ip:10.0.0.9")
	require.Len(t, rl.limiters, 2)

	rl.Sweep()
	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "ip:10.0.0.1")
}

func TestRateLimiter_MinimumOnePerMinute(t *testing.T) {
	rl := newRateLimiter("test", "SLOW_DOWN", "Slow down.", 0, true, zap.NewNop())
	assert.Equal(t, 1, rl.burst)
}
