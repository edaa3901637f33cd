package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/studybuddy/studybuddy-api/internal/cache"
	"github.com/studybuddy/studybuddy-api/internal/config"
)

// RateLimit enforces a fixed-window request budget per caller, backed by
// Redis so multiple instances share one window. Authenticated requests are
// keyed by user ID, anonymous ones by client IP.
//
// A Redis failure lets the request through: availability beats strictness
// here, and the error is logged.
func RateLimit(next http.Handler, redisCache *cache.RedisCache, cfg config.RateLimitConfig, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callerKey(r)

		allowed, err := redisCache.Allow(r.Context(), key, cfg.Requests, cfg.Window)
		if err != nil {
			logger.Warn("rate limit check failed, allowing request", "key", key, "err", err)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func callerKey(r *http.Request) string {
	if userID, ok := UserID(r.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
