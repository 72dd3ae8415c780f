package middlewares

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type requestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

// RequestMetrics records every request against its route template. Requests
// for the metrics endpoint itself are not recorded.
func RequestMetrics(observer requestObserver, skipPaths ...string) echo.MiddlewareFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip[c.Request().URL.Path] {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				// The error handler has not written the response yet.
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			observer.ObserveRequest(c.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}
