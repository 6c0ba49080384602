// Package middleware adapts the rate limiters and the lockout tracker to
// chi handler chains.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"uplift/internal/platform/privacy"
	"uplift/internal/ratelimit/models"
	"uplift/pkg/platform/httputil"
)

// Limiter is the slice of the requestlimit service the middleware needs.
type Limiter interface {
	Name() string
	Allow(ctx context.Context, clientKey string) (*models.RateLimitResult, error)
}

// LockoutChecker is the slice of the lockout service the middleware needs.
type LockoutChecker interface {
	Status(ctx context.Context, identifier string) (*models.LockStatus, error)
}

// KeyFunc extracts the client key a limiter counts by. The default is the
// remote IP; authenticated routes may key by user instead.
type KeyFunc func(r *http.Request) string

// ClientIP strips the port from RemoteAddr, honoring X-Forwarded-For when a
// trusted proxy set it.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First hop is the original client.
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit enforces one limiter on the wrapped handler. Rate limit headers
// go out on every response so well-behaved clients can pace themselves.
// Store errors fail open: counting requests is never worth an outage.
func RateLimit(limiter Limiter, keyFn KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := keyFn(r)

			result, err := limiter.Allow(ctx, key)
			if err != nil {
				logger.ErrorContext(ctx, "rate limit check failed, allowing request",
					"limiter", limiter.Name(),
					"client_key", privacy.AnonymizeClientKey(key),
					"error", err)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Lockout rejects requests for identifiers that are currently locked. The
// identifier comes from idFn, typically the login email from the request.
// An empty identifier or a tracker error fails open.
func Lockout(checker LockoutChecker, idFn KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identifier := idFn(r)
			if identifier == "" {
				next.ServeHTTP(w, r)
				return
			}

			status, err := checker.Status(ctx, identifier)
			if err != nil {
				logger.ErrorContext(ctx, "lockout check failed, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if status.Locked {
				writeLockout(w, status)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "Too many requests. Please try again later.",
		RetryAfter: result.RetryAfter,
	})
}

func writeLockout(w http.ResponseWriter, status *models.LockStatus) {
	minutes := status.MinutesRemaining()
	w.Header().Set("Retry-After", strconv.Itoa(int(status.Remaining.Seconds())))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.LockoutResponse{
		Error:            "account_locked",
		Message:          fmt.Sprintf("Account temporarily locked. Try again in %d minutes.", minutes),
		MinutesRemaining: minutes,
		LockedUntil:      status.LockedUntil,
	})
}
