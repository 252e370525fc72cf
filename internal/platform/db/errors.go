package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by repositories when a point lookup matches no row.
// Absent rows are an error, never a nil result.
var ErrNotFound = errors.New("not found")

// NotFound translates pgx's no-rows sentinel into ErrNotFound and passes
// every other error through unchanged.
func NotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
