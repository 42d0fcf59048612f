package healthcheck

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Checker probes one dependency and returns nil when it is usable.
type Checker func(ctx context.Context) error

// HealthCheck is the health check handler.
type HealthCheck struct {
	checks  map[string]Checker
	timeout time.Duration
}

// New returns a HealthCheck that bounds every probe by timeout.
func New(timeout time.Duration) *HealthCheck {
	return &HealthCheck{
		checks:  make(map[string]Checker),
		timeout: timeout,
	}
}

// Register adds a named dependency probe. Not safe to call once serving.
func (hc *HealthCheck) Register(name string, check Checker) {
	hc.checks[name] = check
}

// Report runs every probe and returns per-dependency status plus overall health.
func (hc *HealthCheck) Report(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	report := make(map[string]string, len(names))
	for _, name := range names {
		if err := hc.checks[name](ctx); err != nil {
			report[name] = err.Error()
			healthy = false
			continue
		}
		report[name] = "ok"
	}

	return report, healthy
}

// Handler serves GET /health: 200 when every probe passes, 503 otherwise.
func (hc *HealthCheck) Handler(c *fiber.Ctx) error {
	report, healthy := hc.Report(c.UserContext())

	status, code := "ok", fiber.StatusOK
	if !healthy {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": report,
	})
}
