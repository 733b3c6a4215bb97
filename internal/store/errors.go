package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness
// constraint. It backstops the check-then-act duplicate checks in the
// service layer against concurrent writers.
var ErrConflict = errors.New("conflict")

const uniqueViolation = "23505"

// mapWriteError converts driver-level constraint violations into
// store sentinels.
func mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
