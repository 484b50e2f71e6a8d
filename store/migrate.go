package store

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/logger"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// Migrate runs all pending migrations.
// If log is provided, logs migration progress; otherwise operates silently.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	log = logger.OrNop(log)

	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return errors.Wrap(err, "read migrations")
	}

	// 000_create_schema_migrations.sql runs first
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, filename := range files {
		version := strings.Split(filename, "_")[0]

		var exists bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version).Scan(&exists)
		if err != nil {
			if IsDatabaseClosed(err) {
				return errors.Wrap(ErrDatabaseClosed, "check migrations")
			}
			// Table doesn't exist yet - this must be migration 000
			if version != "000" {
				return errors.Newf("schema_migrations table missing, but migration is not 000: %s", filename)
			}
		} else if exists {
			log.Debugw("Skipping migration (already applied)",
				logger.FieldMigration, filename,
				logger.FieldVersion, version)
			continue
		}

		sqlBytes, err := migrations.ReadFile(path.Join(migrationsDir, filename))
		if err != nil {
			return errors.Wrapf(err, "read %s", filename)
		}

		log.Infow("Applying migration",
			logger.FieldMigration, filename,
			logger.FieldVersion, version)

		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(err, "begin tx for %s", filename)
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "execute %s", filename)
		}
		// 000 creates the table, then records itself
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record %s", filename)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "commit %s", filename)
		}
		applied++
	}

	log.Infow("Migrations complete",
		logger.FieldCount, applied,
		"total_migrations", len(files))
	return nil
}
