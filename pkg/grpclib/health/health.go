// Package health serves grpc.health.v1 for the order book and keeps the
// overall status in step with its dependency probes.
package health

import (
	"context"
	"time"

	"google.golang.org/grpc"

	healthgrpc "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultInterval is used when Watch is given a non-positive interval.
const DefaultInterval = 5 * time.Second

// Probe reports whether every dependency the service needs is reachable.
type Probe func(ctx context.Context) bool

// Server wraps the standard grpc.health.v1 server.
type Server struct {
	server *healthgrpc.Server
}

// NewServer creates a health server that reports NOT_SERVING until the first probe passes.
func NewServer() *Server {
	s := &Server{server: healthgrpc.NewServer()}
	s.set(false)
	return s
}

// Register registers health server.
func (h *Server) Register(grpc *grpc.Server) {
	healthpb.RegisterHealthServer(grpc, h.server)
}

// Watch runs probe immediately and then every interval, publishing the
// result as the overall ("") status, until ctx ends.
func (h *Server) Watch(ctx context.Context, interval time.Duration, probe Probe) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		h.set(probe(ctx))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Shutdown marks everything NOT_SERVING and ignores later updates.
func (h *Server) Shutdown() {
	h.server.Shutdown()
}

func (h *Server) set(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus("", status)
}
