package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRequest(e *echo.Echo, handler echo.HandlerFunc, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	_ = handler(e.NewContext(req, rec))
	return rec.Code
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func TestRateLimiter_BurstThenLimited(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 3)
	frozen := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return frozen }
	handler := rl.Middleware()(okHandler)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, rateLimitedRequest(e, handler, "192.168.1.100"), "request %d within burst", i)
	}

	assert.Equal(t, http.StatusTooManyRequests, rateLimitedRequest(e, handler, "192.168.1.100"))
}

func TestRateLimiter_PerClient(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)
	handler := rl.Middleware()(okHandler)

	assert.Equal(t, http.StatusOK, rateLimitedRequest(e, handler, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedRequest(e, handler, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, rateLimitedRequest(e, handler, "10.0.0.2"))
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(0, -1)
	assert.Equal(t, defaultBurst, rl.burst)
	assert.InDelta(t, float64(defaultRequestsPerSecond), float64(rl.rps), 0)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(5, 10)
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter("10.0.0.1")
	now = now.Add(2 * time.Minute)
	rl.limiter("10.0.0.2")
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, rl.Sweep())

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRateLimiter_RunStopsOnCancel(t *testing.T) {
	rl := NewRateLimiter(5, 10)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- rl.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimiter_Concurrency(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1000, 1000)
	handler := rl.Middleware()(okHandler)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rateLimitedRequest(e, handler, "172.16.0.1")
		}()
	}
	wg.Wait()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.visitors, 1)
}
