package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	orderv1 "github.com/Satyam-Vyas/order-book/internal/domain/order/v1"
	"github.com/Satyam-Vyas/order-book/pkg/errors"
	"github.com/Satyam-Vyas/order-book/pkg/logger"
	"github.com/Satyam-Vyas/order-book/pkg/postgresql"
	mockPg "github.com/Satyam-Vyas/order-book/pkg/postgresql/mock"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

func TestLedger_WithinTx(t *testing.T) {
	ctx := context.Background()
	filled := newOrder("o1", "alice", orderv1.SideBid, "10.00", 2)
	filled.Quantity, filled.Active = 0, false

	testCases := []struct {
		name     string
		mockFn   func(pg *mockPg.MockPostgreSQLClient, tx *fakeTx)
		assertFn func(t *testing.T, err error, tx *fakeTx, ran bool)
	}{
		{
			name: "book lock is the first statement",
			mockFn: func(pg *mockPg.MockPostgreSQLClient, tx *fakeTx) {
				pg.EXPECT().BeginTx(ctx, postgresql.MatchingTxOptions()).Return(tx, nil)
				gomock.InOrder(
					pg.EXPECT().Exec(gomock.Any(), lockBookQuery, bookLockKey).Return(pgconn.NewCommandTag("SELECT 1"), nil),
					pg.EXPECT().Exec(gomock.Any(), updateOrderQuery, int64(0), false, "o1").Return(pgconn.NewCommandTag("UPDATE 1"), nil),
				)
			},
			assertFn: func(t *testing.T, err error, tx *fakeTx, ran bool) {
				assert.NoError(t, err)
				assert.True(t, ran)
				assert.True(t, tx.committed)
				assert.False(t, tx.rolledBack)
			},
		},
		{
			name: "lock timeout is a conflict and skips the unit",
			mockFn: func(pg *mockPg.MockPostgreSQLClient, tx *fakeTx) {
				pg.EXPECT().BeginTx(ctx, postgresql.MatchingTxOptions()).Return(tx, nil)
				pg.EXPECT().Exec(gomock.Any(), lockBookQuery, bookLockKey).
					Return(pgconn.CommandTag{}, &pgconn.PgError{Code: postgresql.LockNotAvailable})
			},
			assertFn: func(t *testing.T, err error, tx *fakeTx, ran bool) {
				assert.True(t, errors.HasCode(err, errors.ConcurrencyConflictError))
				assert.False(t, ran)
				assert.False(t, tx.committed)
				assert.True(t, tx.rolledBack)
			},
		},
		{
			name: "begin failure",
			mockFn: func(pg *mockPg.MockPostgreSQLClient, _ *fakeTx) {
				pg.EXPECT().BeginTx(ctx, postgresql.MatchingTxOptions()).Return(nil, fmt.Errorf("pool closed"))
			},
			assertFn: func(t *testing.T, err error, _ *fakeTx, ran bool) {
				assert.Error(t, err)
				assert.False(t, ran)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			pg := mockPg.NewMockPostgreSQLClient(ctrl)
			tx := &fakeTx{}
			tc.mockFn(pg, tx)

			l := NewLedger(pg, logger.NewNop())
			ran := false
			err := l.WithinTx(ctx, func(ctx context.Context) error {
				ran = true
				return l.Orders().Update(ctx, filled)
			})

			tc.assertFn(t, err, tx, ran)
		})
	}
}

func TestLedger_WithinReadTxSkipsBookLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	pg := mockPg.NewMockPostgreSQLClient(ctrl)
	tx := &fakeTx{}
	pg.EXPECT().BeginTx(ctx, postgresql.SnapshotTxOptions()).Return(tx, nil)

	l := NewLedger(pg, logger.NewNop())
	err := l.WithinReadTx(ctx, func(context.Context) error { return nil })

	assert.NoError(t, err)
	assert.True(t, tx.committed)
}
