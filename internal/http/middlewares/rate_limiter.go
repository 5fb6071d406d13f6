package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RateLimiter allows limit requests per client IP in each fixed window.
// Requests the skipper selects are neither counted nor limited.
func RateLimiter(limit int, window time.Duration, skipper middleware.Skipper) echo.MiddlewareFunc {
	type bucket struct {
		count int
		start time.Time
	}

	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}

	var (
		mu        sync.Mutex
		buckets   = make(map[string]*bucket)
		lastPrune time.Time
	)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}

			now := time.Now()
			key := c.RealIP()

			mu.Lock()
			if now.Sub(lastPrune) > window {
				for k, b := range buckets {
					if now.Sub(b.start) > window {
						delete(buckets, k)
					}
				}
				lastPrune = now
			}

			b, ok := buckets[key]
			if !ok || now.Sub(b.start) > window {
				b = &bucket{start: now}
				buckets[key] = b
			}

			if b.count >= limit {
				retryAfter := window - now.Sub(b.start)
				mu.Unlock()
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			b.count++
			mu.Unlock()

			return next(c)
		}
	}
}

// PathSkipper skips requests whose route path is one of paths.
func PathSkipper(paths ...string) middleware.Skipper {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(c echo.Context) bool {
		_, ok := set[c.Path()]
		return ok
	}
}
