package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dispatchday/dispatchday-backend/api/responses"
	"github.com/dispatchday/dispatchday-backend/pkg/config"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimit throttles storefront checkout traffic with fixed windows keyed by
// store and by client IP. APIKeyAuth must run first so the store scope is set.
func RateLimit(cfg config.RateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.CheckoutWindow <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if limit := cfg.CheckoutStoreLimit; limit > 0 {
				if storeID := StoreIDFromContext(ctx); storeID != "" {
					if blocked := enforceWindow(ctx, logg, w, store, "store:"+storeID, int64(limit), cfg.CheckoutWindow); blocked {
						return
					}
				}
			}

			if limit := cfg.CheckoutIPLimit; limit > 0 {
				if ip := clientIP(r); ip != "" {
					if blocked := enforceWindow(ctx, logg, w, store, "ip:"+ip, int64(limit), cfg.CheckoutWindow); blocked {
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func enforceWindow(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, store rateLimiterStore, key string, limit int64, window time.Duration) bool {
	allowed, count, err := store.FixedWindowAllow(ctx, key, limit, window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return true
	}
	if allowed {
		return false
	}

	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"key":            key,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(window.Seconds()),
		})
		logg.Warn(logCtx, "checkout.rate_limit.blocked")
	}
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return true
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
