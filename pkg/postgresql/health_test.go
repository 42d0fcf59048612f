package postgresql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Satyam-Vyas/order-book/pkg/postgresql"
	mockPg "github.com/Satyam-Vyas/order-book/pkg/postgresql/mock"
)

func TestProbe(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		mockFn   func(db *mockPg.MockPostgreSQLClient, row *mockPg.MockRowInterface)
		assertFn func(t *testing.T, status postgresql.PoolStatus, err error)
	}{
		{
			name: "healthy without pool stats",
			mockFn: func(db *mockPg.MockPostgreSQLClient, row *mockPg.MockRowInterface) {
				db.EXPECT().QueryRow(ctx, "SELECT 1").Return(row)
				row.EXPECT().Scan(gomock.Any()).Return(nil)
				db.EXPECT().Stats().Return(nil)
			},
			assertFn: func(t *testing.T, status postgresql.PoolStatus, err error) {
				require.NoError(t, err)
				assert.False(t, status.Saturated())
			},
		},
		{
			name: "query fails",
			mockFn: func(db *mockPg.MockPostgreSQLClient, row *mockPg.MockRowInterface) {
				db.EXPECT().QueryRow(ctx, "SELECT 1").Return(row)
				row.EXPECT().Scan(gomock.Any()).Return(errors.New("connection refused"))
				db.EXPECT().DatabaseName().Return("orderbook")
			},
			assertFn: func(t *testing.T, status postgresql.PoolStatus, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "postgresql orderbook")
				assert.Contains(t, err.Error(), "connection refused")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			db := mockPg.NewMockPostgreSQLClient(ctrl)
			row := mockPg.NewMockRowInterface(ctrl)
			tc.mockFn(db, row)

			status, err := postgresql.Probe(ctx, db)
			tc.assertFn(t, status, err)
		})
	}
}

func TestPoolStatus_Saturated(t *testing.T) {
	assert.True(t, postgresql.PoolStatus{Acquired: 4, Max: 4}.Saturated())
	assert.False(t, postgresql.PoolStatus{Acquired: 3, Max: 4}.Saturated())
	assert.False(t, postgresql.PoolStatus{}.Saturated())
}
