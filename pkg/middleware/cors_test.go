package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func corsRequest(h http.Handler, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/graphql", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	h := CORS(CORSConfig{Environment: "development"})(okHandler())

	rr := corsRequest(h, http.MethodPost, "https://anywhere.example")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionAllowedOrigin(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins: []string{"https://library.example", " https://admin.library.example "},
		Environment:    "production",
	})(okHandler())

	rr := corsRequest(h, http.MethodPost, "https://admin.library.example")

	assert.Equal(t, "https://admin.library.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_ProductionUnknownOrigin(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins: []string{"https://library.example"},
		Environment:    "production",
	})(okHandler())

	rr := corsRequest(h, http.MethodPost, "https://evil.example")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_CredentialsEchoOrigin(t *testing.T) {
	h := CORS(CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		Environment:      "production",
	})(okHandler())

	rr := corsRequest(h, http.MethodGet, "https://library.example")

	assert.Equal(t, "https://library.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	called := false
	h := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := corsRequest(h, http.MethodOptions, "https://library.example")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, called)
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), CorrelationHeader)
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, CorrelationHeader, rr.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_CustomMaxAge(t *testing.T) {
	h := CORS(CORSConfig{Environment: "development", MaxAge: 60})(okHandler())

	rr := corsRequest(h, http.MethodOptions, "")

	assert.Equal(t, "60", rr.Header().Get("Access-Control-Max-Age"))
}
