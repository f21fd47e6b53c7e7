// Copyright (c) 2026 Taskrow. All rights reserved.
// Author: dev@taskrow.app

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhbui/taskrow/internal/platform/apperr"
	"github.com/minhbui/taskrow/internal/platform/constants"
	"github.com/minhbui/taskrow/internal/platform/ctxutil"
	"github.com/minhbui/taskrow/internal/platform/respond"
)

// AuthWindowCounter is the slice of the Redis client the auth rate limiter
// needs: increment a per-IP counter and arm its expiry. [*redis.Client]
// satisfies it.
type AuthWindowCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
}

// AuthRateLimit applies the shared fixed window for mutating auth endpoints:
// at most [constants.AuthRateLimitMax] requests per client IP within one
// [constants.AuthRateLimitWindow]. Beyond that, every request is rejected
// with 429 and the fixed message.
//
// # Counting
//
// The window is a Redis counter per client IP: INCR, with the TTL set when
// the key is first created. Counters live in Redis rather than process
// memory so the window survives restarts and is shared across replicas.
//
// # Availability
//
// A Redis failure fails open: login availability is preferred over strict
// limiting when the cache is down, and the incident is logged for operators.
func AuthRateLimit(counter AuthWindowCounter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()
			key := constants.RedisPrefixAuthWindow + RealIP(request)

			count, err := counter.Incr(ctx, key).Result()
			if err != nil {
				ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_rate_limit_unavailable",
					slog.Any("error", err),
				)
				next.ServeHTTP(writer, request)
				return
			}

			// First hit in this window: arm the expiry.
			if count == 1 {
				if err := counter.Expire(ctx, key, constants.AuthRateLimitWindow).Err(); err != nil {
					ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_rate_limit_expire_failed",
						slog.Any("error", err),
					)
				}
			}

			if count > constants.AuthRateLimitMax {
				respond.Error(writer, request, apperr.RateLimited(constants.AuthRateLimitMessage))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
