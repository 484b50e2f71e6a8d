package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/logger"
)

// SQLiteBusyTimeoutMS is how long a connection waits on a locked database.
const SQLiteBusyTimeoutMS = 5000

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens a SQLite database at the specified path with optimized settings.
// If log is provided, logs database operations; otherwise operates silently.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	log = logger.OrNop(log)
	log.Debugw("Opening database", logger.FieldPath, path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Every connection to :memory: is a separate database
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for concurrent reads during writes
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", SQLiteBusyTimeoutMS)); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to set busy timeout")
	}

	log.Infow("Database opened", logger.FieldPath, path)
	return db, nil
}

// OpenWithMigrations opens the database at path and applies pending migrations.
func OpenWithMigrations(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(path, log)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	if err := Migrate(db, log); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to migrate %s", path)
	}
	return db, nil
}
