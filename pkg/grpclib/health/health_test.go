package health

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func dial(t *testing.T, h *Server) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	h.Register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func status(t *testing.T, client healthpb.HealthClient) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	return resp.Status
}

func TestServer_WatchFollowsProbe(t *testing.T) {
	h := NewServer()
	client := dial(t, h)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client))

	var healthy atomic.Bool
	healthy.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Watch(ctx, 10*time.Millisecond, func(context.Context) bool { return healthy.Load() })
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return status(t, client) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	healthy.Store(false)
	assert.Eventually(t, func() bool {
		return status(t, client) == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestServer_ShutdownIgnoresLaterProbes(t *testing.T) {
	h := NewServer()
	client := dial(t, h)

	h.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	h.Watch(ctx, 5*time.Millisecond, func(context.Context) bool { return true })

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client))
}
