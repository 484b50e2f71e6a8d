package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/apidefs/errors"
)

func TestOpen(t *testing.T) {
	t.Run("opens database successfully", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(dbPath, nil)
		require.NoError(t, err)
		defer db.Close()

		var journalMode string
		require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
		assert.Equal(t, "wal", journalMode)

		var busyTimeout int
		require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
		assert.Equal(t, SQLiteBusyTimeoutMS, busyTimeout)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		db, err := Open("/invalid/nonexistent/path/db.sqlite", nil)

		// If Open() succeeds (lazy connection on some platforms), Ping() will fail
		if err == nil && db != nil {
			err = db.Ping()
			db.Close()
		}
		assert.Error(t, err)
	})

	t.Run("creates database file if it doesn't exist", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "new.db")

		_, err := os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))

		db, err := Open(dbPath, nil)
		require.NoError(t, err)
		defer db.Close()

		_, err = os.Stat(dbPath)
		assert.NoError(t, err)
	})

	t.Run("in-memory database keeps one connection", func(t *testing.T) {
		db, err := Open(MemoryPath, nil)
		require.NoError(t, err)
		defer db.Close()

		_, err = db.Exec("CREATE TABLE t (x INTEGER)")
		require.NoError(t, err)
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&n))
	})
}

func TestOpen_WithLogger(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()
}

func TestIsDatabaseClosed(t *testing.T) {
	assert.False(t, IsDatabaseClosed(nil))
	assert.False(t, IsDatabaseClosed(errors.New("no such table")))
	assert.True(t, IsDatabaseClosed(ErrDatabaseClosed))
	assert.True(t, IsDatabaseClosed(errors.Wrap(ErrDatabaseClosed, "sync")))
	assert.True(t, IsDatabaseClosed(errors.New("sql: database is closed")))
}
