package rest

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Satyam-Vyas/order-book/pkg/util"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

// HTTPObserver records finished requests.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// RequestContext stores the request id, client ip and owner in the user
// context so loggers further down pick them up.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := util.WithRequestID(c.UserContext(), c.Get(RequestIDHeader))
		ctx = util.WithClientIP(ctx, c.IP())
		if owner := strings.TrimSpace(c.Get(OwnerHeader)); owner != "" {
			ctx = util.WithOwner(ctx, owner)
		}

		c.SetUserContext(ctx)
		c.Set(RequestIDHeader, util.GetRequestID(ctx))
		return c.Next()
	}
}

// Metrics times each request and labels it by route pattern.
func Metrics(observer HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		observer.ObserveHTTP(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
