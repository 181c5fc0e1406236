package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"vendora/internal/infrastructure/ratelimit"
	"vendora/pkg/errors"
)

type RateLimitMiddleware struct {
	limiter *ratelimit.RateLimiter
	logger  *zap.Logger
}

func NewRateLimitMiddleware(limiter *ratelimit.RateLimiter, logger *zap.Logger) *RateLimitMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimitMiddleware{limiter: limiter, logger: logger}
}

// Limit throttles action per signed-in user, or per client IP for
// anonymous callers. It must run after any auth middleware.
func (m *RateLimitMiddleware) Limit(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := CurrentUserID(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			allowed, retryAfter := m.limiter.Allow(key, action)
			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				m.logger.Warn("rate limit exceeded",
					zap.String("key", key),
					zap.String("action", action),
					zap.Duration("retryAfter", retryAfter))
				return errors.TooManyRequests("Too many requests, please slow down")
			}
			return next(c)
		}
	}
}
