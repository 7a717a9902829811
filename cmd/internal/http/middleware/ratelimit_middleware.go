package middleware

import (
	"crmsync/cmd/internal/infrastructure/ratelimit"
	"crmsync/cmd/internal/utils/apierror"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type LimiterStore interface {
	Allow(key string) bool
}

type RateLimitConfig struct {
	Store LimiterStore
	// Stats is optional.
	Stats      ratelimit.StatsStore
	RetryAfter time.Duration
}

// NewRateLimitMiddleware throttles requests per client IP. Denied requests get
// a 429 with Retry-After and never reach the handler.
func NewRateLimitMiddleware(cfg *RateLimitConfig) echo.MiddlewareFunc {
	retryAfter := cfg.RetryAfter
	if retryAfter <= 0 {
		retryAfter = time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			allowed := cfg.Store.Allow(key)

			if cfg.Stats != nil {
				req := c.Request()
				err := cfg.Stats.Record(req.Context(), ratelimit.StatsEvent{
					Key:     key,
					Allowed: allowed,
					Method:  req.Method,
					Path:    c.Path(),
					At:      time.Now(),
				})
				if err != nil {
					log.Warnf("failed to record rate limit stats: %v", err)
				}
			}

			if !allowed {
				log.Debugf("rate limited %s on %s", key, c.Path())
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				apierr := apierror.TooManyRequestsError
				return c.JSON(apierr.Code(), apierr)
			}
			return next(c)
		}
	}
}
