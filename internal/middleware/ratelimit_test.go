// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack-api/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRateLimiterLocalBurst(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:    PerMinute(1, 2),
		FailOpen: true,
	})
	t.Cleanup(rl.Close)
	h := rl.Handler(okHandler())

	for range 2 {
		w := hit(h, "/api/users", "10.0.0.1:5000")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1;w=60", w.Header().Get("RateLimit-Policy"))
	}

	w := hit(h, "/api/users", "10.0.0.1:5000")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
	assert.Contains(t, w.Body.String(), `"status":429`)

	other := hit(h, "/api/users", "10.0.0.2:5000")
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimiterSkipsProbes(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit:      PerMinute(1, 1),
		BypassFunc: SkipProbes,
	})
	t.Cleanup(rl.Close)
	h := rl.Handler(okHandler())

	for range 5 {
		assert.Equal(t, http.StatusOK, hit(h, "/readyz", "10.0.0.3:1").Code)
	}
	assert.Equal(t, http.StatusOK, hit(h, "/api/users", "10.0.0.3:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/users", "10.0.0.3:1").Code)
}

func TestRateLimiterInvalidLimit(t *testing.T) {
	closed := NewRateLimiter(nil, RateLimitConfig{Limit: redis_rate.Limit{}})
	t.Cleanup(closed.Close)
	assert.Equal(t,
		http.StatusServiceUnavailable,
		hit(closed.Handler(okHandler()), "/api/users", "10.0.0.4:1").Code,
	)

	open := NewRateLimiter(nil, RateLimitConfig{
		Limit:    redis_rate.Limit{},
		FailOpen: true,
	})
	t.Cleanup(open.Close)
	assert.Equal(t,
		http.StatusOK,
		hit(open.Handler(okHandler()), "/api/users", "10.0.0.4:1").Code,
	)
}

func TestLimitFromConfig(t *testing.T) {
	limit := LimitFromConfig(config.RateLimitConfig{
		Requests: 100,
		Window:   time.Minute,
		Burst:    20,
	})
	assert.Equal(t, PerMinute(100, 20), limit)
	assert.Equal(t, time.Second, PerSecond(5, 5).Period)
}

func TestKeyByIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:41000"
	assert.Equal(t, "ratelimit:ip:192.0.2.10", KeyByIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "ratelimit:ip:198.51.100.7", KeyByIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.1, 203.0.113.9")
	assert.Equal(t, "ratelimit:ip:203.0.113.9", KeyByIP(r))
}

func TestKeyBySubject(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:41000"
	assert.Equal(t, "ratelimit:ip:192.0.2.10", KeyBySubject(r))

	r = r.WithContext(context.WithValue(r.Context(), SubjectKey, "dana"))
	assert.Equal(t, "ratelimit:sub:dana", KeyBySubject(r))
}

func TestLocalLimiterSweep(t *testing.T) {
	l := newLocalLimiter()
	t.Cleanup(l.close)

	_, err := l.allow("stale", PerSecond(10, 10))
	require.NoError(t, err)

	l.sweep(time.Now().Add(time.Hour))

	_, loaded := l.limiters.Load("stale")
	assert.False(t, loaded)

	l.close()
	l.close()
}
