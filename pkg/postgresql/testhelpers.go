package postgresql

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelper owns one container for the lifetime of a test.
type TestHelper struct {
	Container *TestContainer
	T         *testing.T
}

// NewTestHelper starts a default container with migrations applied. It
// skips t under -short and terminates the container on cleanup.
func NewTestHelper(t *testing.T, migrations fs.FS) *TestHelper {
	config := DefaultTestContainerConfig()
	config.Migrations = migrations
	return NewTestHelperWithConfig(t, config)
}

// NewTestHelperWithConfig is NewTestHelper with a custom container config.
func NewTestHelperWithConfig(t *testing.T, config *TestContainerConfig) *TestHelper {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container, err := NewTestContainer(context.Background(), config)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Close(); err != nil {
			t.Logf("Failed to close test container: %v", err)
		}
	})

	return &TestHelper{Container: container, T: t}
}

// Reset truncates every table except schema_migrations.
func (h *TestHelper) Reset() {
	require.NoError(h.T, h.Container.TruncateAllTables())
}

// Client returns the container's client.
func (h *TestHelper) Client() PostgreSQLClient {
	return h.Container.Client
}
