package handlers

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// adminAuth guards the admin API with a static bearer token. With no token
// configured the whole surface is disabled.
func adminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
				return
			}
			if !tokenMatches(bearerToken(r), token) {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cronAuth guards the scheduled-send trigger. The secret is accepted as a
// bearer token, the X-Cron-Secret header, or a secret query parameter, so
// hosted cron services with limited header support can still call it.
func cronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
				return
			}

			provided := bearerToken(r)
			if provided == "" {
				provided = r.Header.Get("X-Cron-Secret")
			}
			if provided == "" {
				provided = r.URL.Query().Get("secret")
			}
			if !tokenMatches(provided, secret) {
				respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return auth[len(prefix):]
}

func tokenMatches(provided, expected string) bool {
	return provided != "" &&
		subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

// rateLimit caps requests per client IP using a Redis counter with a rolling
// window. With no Redis client the limiter is a pass-through, keeping the
// public endpoints usable in minimal deployments.
func rateLimit(client redis.UniversalClient, limit int, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("ratelimit:%s:%s", r.URL.Path, clientIP(r))

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				// Redis being down should not take the endpoint with it.
				log.Warn("rate limiter unavailable", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(r.Context(), key, window)
			}
			if count > int64(limit) {
				respondJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
