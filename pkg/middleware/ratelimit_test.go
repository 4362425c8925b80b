package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_WithinBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := RateLimit(ctx, 1, 5, discardLogger())(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, limitedRequest(h, "10.0.0.1:1000").Code, "request %d", i+1)
	}
}

func TestRateLimit_ExceedsBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := RateLimit(ctx, 0.001, 2, discardLogger())(okHandler())

	require.Equal(t, http.StatusOK, limitedRequest(h, "10.0.0.2:1000").Code)
	require.Equal(t, http.StatusOK, limitedRequest(h, "10.0.0.2:1000").Code)

	rr := limitedRequest(h, "10.0.0.2:1000")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "RATE_LIMITED")
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func TestRateLimit_IndependentPerIP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := RateLimit(ctx, 0.001, 1, discardLogger())(okHandler())

	assert.Equal(t, http.StatusOK, limitedRequest(h, "10.0.0.3:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, limitedRequest(h, "10.0.0.3:1").Code)
	assert.Equal(t, http.StatusOK, limitedRequest(h, "10.0.0.4:1").Code)
}

func TestVisitorStore_CleanupEvictsIdle(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.limiter("1.1.1.1")
	now = now.Add(30 * time.Second)
	store.limiter("2.2.2.2")
	require.Equal(t, 2, store.len())

	now = now.Add(45 * time.Second)
	store.cleanup()

	assert.Equal(t, 1, store.len())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:4000", "192.0.2.1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "10.0.0.1:1", "203.0.113.5"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.1"}, "10.0.0.1:1", "203.0.113.5"},
		{"forwarded garbage then valid", map[string]string{"X-Forwarded-For": "unknown, 198.51.100.7"}, "10.0.0.1:1", "198.51.100.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.9"}, "10.0.0.1:1", "198.51.100.9"},
		{"invalid headers fall back", map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "nope"}, "10.0.0.1:1", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
