package postgresql

import (
	"context"
	"fmt"
	"time"
)

// PoolStatus is what Probe observed about the pool.
type PoolStatus struct {
	Latency  time.Duration
	Acquired int32
	Idle     int32
	Max      int32
}

// Saturated reports whether every connection was checked out.
func (s PoolStatus) Saturated() bool {
	return s.Max > 0 && s.Acquired >= s.Max
}

// Probe runs SELECT 1 through db, outside any transaction carried by ctx.
func Probe(ctx context.Context, db PostgreSQLClient) (PoolStatus, error) {
	ctx = withoutTx(ctx)
	start := time.Now()

	var one int
	if err := db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return PoolStatus{}, fmt.Errorf("postgresql %s: probe query failed: %w", db.DatabaseName(), err)
	}

	status := PoolStatus{Latency: time.Since(start)}
	if stats := db.Stats(); stats != nil {
		status.Acquired = stats.AcquiredConns()
		status.Idle = stats.IdleConns()
		status.Max = stats.MaxConns()
	}
	return status, nil
}
