package store

import (
	"strings"

	"github.com/teranos/apidefs/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed database.
// This typically happens when a watch rebuild races with shutdown.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is closed.
// It recognizes wrapped ErrDatabaseClosed errors and the raw database/sql error,
// which the driver returns as a plain string error.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// wrap annotates err, mapping closed-database failures to ErrDatabaseClosed.
func wrap(err error, format string, args ...interface{}) error {
	if IsDatabaseClosed(err) && !errors.Is(err, ErrDatabaseClosed) {
		err = errors.Mark(err, ErrDatabaseClosed)
	}
	return errors.Wrapf(err, format, args...)
}
