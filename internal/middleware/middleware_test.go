package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studybuddy/studybuddy-api/internal/auth"
	"github.com/studybuddy/studybuddy-api/internal/cache"
	"github.com/studybuddy/studybuddy-api/internal/config"
	"github.com/studybuddy/studybuddy-api/internal/middleware"
)

var testAuthCfg = config.AuthConfig{JWTSecret: "test-secret", JWTExpiry: time.Hour}

func identityEcho(t *testing.T, wantID uint64, wantName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.UserID(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantID, id)
		name, ok := middleware.Username(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantName, name)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthInjectsIdentity(t *testing.T) {
	token, err := auth.GenerateToken(7, "alice", testAuthCfg)
	require.NoError(t, err)

	handler := middleware.Auth(identityEcho(t, 7, "alice"), testAuthCfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthRejectsBadHeaders(t *testing.T) {
	handler := middleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a valid token")
	}), testAuthCfg)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage token":  "Bearer not-a-jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken(7, "alice", config.AuthConfig{JWTSecret: "other", JWTExpiry: time.Hour})
	require.NoError(t, err)

	handler := middleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with a foreign token")
	}), testAuthCfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func setupRateLimit(t *testing.T, requests int, window time.Duration) http.Handler {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return middleware.RateLimit(next, redisCache, config.RateLimitConfig{
		Requests: requests,
		Window:   window,
	}, logger)
}

func TestRateLimitBlocksOverBudget(t *testing.T) {
	handler := setupRateLimit(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d should pass", i+1)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// a different caller has its own window
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimitFailsOpenOnRedisError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)
	mr.Close() // backend gone before the first request

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := middleware.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), redisCache, config.RateLimitConfig{Requests: 1, Window: time.Minute}, logger)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}
