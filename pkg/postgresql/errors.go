package postgresql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes that mean "try the whole transaction again".
const (
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"
)

// IsConflict reports whether err is a lock or serialization failure.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case SerializationFailure, DeadlockDetected, LockNotAvailable:
		return true
	}
	return false
}
