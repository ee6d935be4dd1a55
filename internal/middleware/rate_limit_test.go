package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrybase/recipe-api/internal/middleware"
)

func newTestRateLimiter(t *testing.T, limit int) (*middleware.RateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rl := middleware.NewRateLimiter(client, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     limit,
		KeyPrefix: "ratelimit:test",
	})
	return rl, mr
}

func newRateLimitedRouter(rl *middleware.RateLimiter, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.Use(rl.RateLimitMiddleware())
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestIsAllowedCountsPerUser(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 3)
	userA := uuid.New().String()
	userB := uuid.New().String()

	for i := 0; i < 3; i++ {
		allowed, _, _, err := rl.IsAllowed(context.Background(), userA)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, remaining, _, err := rl.IsAllowed(context.Background(), userA)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// One user exhausting their budget must not affect another.
	allowed, _, _, err = rl.IsAllowed(context.Background(), userB)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddlewareEnforcesLimit(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 2)
	r := newRateLimitedRouter(rl, uuid.New())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitMiddlewareFailOpen(t *testing.T) {
	rl, mr := newTestRateLimiter(t, 1)
	r := newRateLimitedRouter(rl, uuid.New())

	mr.Close()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Error"))
}

func TestRateLimitMiddlewareRequiresUser(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(rl.RateLimitMiddleware())
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
