package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/leadforge/internal/config"
)

// RouteRateLimiter applies a token bucket limiter to requests whose route matches path.
// Each tenant gets its own bucket; unauthenticated callers are keyed by client IP.
func RouteRateLimiter(cfg config.RateLimitConfig, path string) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)
	limiterFor := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[key]
		if !ok {
			l = rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
			limiters[key] = l
		}
		return l
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() != path {
				return next(c)
			}

			key := TenantIDFromContext(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			if !limiterFor(key).Allow() {
				return reject(c, http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
