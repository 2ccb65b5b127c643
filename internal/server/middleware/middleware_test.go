package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlens/visitlens/internal/server/middleware"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/scrape", http.NoBody)
	req.RemoteAddr = addr
	return req
}

func TestRateLimitByIP_FirstRequestPasses(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimitByIP(t.Context(), 1, 1)(okHandler)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, requestFrom("203.0.113.1:4321"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitByIP_BurstExceeded_Returns429(t *testing.T) {
	t.Parallel()

	// Very low rate (effectively zero refill during the test) with burst of 2.
	handler := middleware.RateLimitByIP(t.Context(), 0.001, 2)(okHandler)

	// First two requests consume the burst.
	for i := range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestFrom("203.0.113.1:4321"))
		require.Equalf(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	// Third request exceeds burst.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.1:4321"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimitByIP_IndependentPerIP(t *testing.T) {
	t.Parallel()

	handler := middleware.RateLimitByIP(t.Context(), 0.001, 1)(okHandler)

	// Exhaust the first IP's burst.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.1:4321"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.1:4321"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different IP is still allowed.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("198.51.100.7:9999"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitByIP_CancelledContextStopsCleanup(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	handler := middleware.RateLimitByIP(ctx, 1, 1)(okHandler)
	cancel()

	// Limiting still works after the cleanup goroutine exits.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestFrom("203.0.113.1:4321"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
