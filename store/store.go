// Package store keeps a snapshot of the generated catalog in SQLite: one row
// per namespace with its latest definition and the SHA-256 of that definition.
// There is no history; a namespace's row is replaced when its content changes.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/apidefs/errors"
	"github.com/teranos/apidefs/logger"
)

const (
	selectDigestQuery = "SELECT sha256 FROM definitions WHERE namespace = ?"
	upsertQuery       = `INSERT INTO definitions (namespace, definition, sha256, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(namespace) DO UPDATE SET definition = excluded.definition, sha256 = excluded.sha256, updated_at = excluded.updated_at`
	selectQuery = "SELECT namespace, definition, sha256, updated_at FROM definitions WHERE namespace = ?"
	listQuery   = "SELECT namespace, sha256, updated_at FROM definitions ORDER BY namespace"
	deleteQuery = "DELETE FROM definitions WHERE namespace = ?"
)

// Record is the stored snapshot of one namespace. List leaves Definition empty.
type Record struct {
	Namespace  string
	Definition json.RawMessage
	SHA256     string
	UpdatedAt  time.Time
}

// Entry is one namespace to store.
type Entry struct {
	Namespace  string
	Definition []byte
}

// SyncResult reports what Sync did, by namespace.
type SyncResult struct {
	Changed   []string
	Unchanged []string
	Removed   []string
}

// Store reads and writes namespace snapshots.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// New returns a Store over an open, migrated database.
func New(db *sql.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: logger.OrNop(log), now: time.Now}
}

// OpenStore opens and migrates the database at path.
func OpenStore(path string, log *zap.SugaredLogger) (*Store, error) {
	db, err := OpenWithMigrations(path, log)
	if err != nil {
		return nil, err
	}
	return New(db, log), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Digest returns the hex SHA-256 of a definition.
func Digest(definition []byte) string {
	sum := sha256.Sum256(definition)
	return hex.EncodeToString(sum[:])
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Put stores the definition of a namespace and reports whether it changed.
// Storing identical content leaves the row, including updated_at, untouched.
func (s *Store) Put(ctx context.Context, namespace string, definition []byte) (bool, error) {
	return s.put(ctx, s.db, namespace, definition)
}

func (s *Store) put(ctx context.Context, q querier, namespace string, definition []byte) (bool, error) {
	if namespace == "" {
		return false, errors.New("namespace name is empty")
	}
	if !json.Valid(definition) {
		return false, errors.Newf("definition of %s is not valid JSON", namespace)
	}
	digest := Digest(definition)

	var existing string
	err := q.QueryRowContext(ctx, selectDigestQuery, namespace).Scan(&existing)
	switch {
	case err == nil && existing == digest:
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, wrap(err, "failed to read digest of %s", namespace)
	}

	if _, err := q.ExecContext(ctx, upsertQuery, namespace, string(definition), digest, s.now().UTC()); err != nil {
		return false, wrap(err, "failed to store %s", namespace)
	}
	s.log.Debugw("Stored definition",
		logger.FieldNamespace, namespace,
		logger.FieldDigest, digest)
	return true, nil
}

// Get returns the stored snapshot of a namespace.
func (s *Store) Get(ctx context.Context, namespace string) (*Record, error) {
	var (
		r          Record
		definition string
	)
	err := s.db.QueryRowContext(ctx, selectQuery, namespace).Scan(&r.Namespace, &definition, &r.SHA256, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithHint(
			errors.NewNotFoundError("namespace %s is not stored", namespace),
			"run `apidefs db sync` to store the current catalog")
	}
	if err != nil {
		return nil, wrap(err, "failed to read %s", namespace)
	}
	r.Definition = json.RawMessage(definition)
	return &r, nil
}

// List returns all stored namespaces sorted by name, without definitions.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	return s.list(ctx, s.db)
}

func (s *Store) list(ctx context.Context, q querier) ([]Record, error) {
	rows, err := q.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, wrap(err, "failed to list definitions")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Namespace, &r.SHA256, &r.UpdatedAt); err != nil {
			return nil, wrap(err, "failed to scan definition")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "failed to list definitions")
	}
	return records, nil
}

// Delete removes a namespace and reports whether it was stored.
func (s *Store) Delete(ctx context.Context, namespace string) (bool, error) {
	return s.delete(ctx, s.db, namespace)
}

func (s *Store) delete(ctx context.Context, q querier, namespace string) (bool, error) {
	res, err := q.ExecContext(ctx, deleteQuery, namespace)
	if err != nil {
		return false, wrap(err, "failed to delete %s", namespace)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap(err, "failed to delete %s", namespace)
	}
	return n > 0, nil
}

// Sync stores entries in one transaction. With prune set, namespaces that
// are stored but absent from entries are deleted.
func (s *Store) Sync(ctx context.Context, entries []Entry, prune bool) (*SyncResult, error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap(err, "failed to begin sync")
	}
	defer tx.Rollback()

	var stale []string
	if prune {
		stored, err := s.list(ctx, tx)
		if err != nil {
			return nil, err
		}
		for _, r := range stored {
			if !slices.ContainsFunc(entries, func(e Entry) bool { return e.Namespace == r.Namespace }) {
				stale = append(stale, r.Namespace)
			}
		}
	}

	result := &SyncResult{}
	for _, e := range entries {
		changed, err := s.put(ctx, tx, e.Namespace, e.Definition)
		if err != nil {
			return nil, err
		}
		if changed {
			result.Changed = append(result.Changed, e.Namespace)
		} else {
			result.Unchanged = append(result.Unchanged, e.Namespace)
		}
	}
	for _, name := range stale {
		if _, err := s.delete(ctx, tx, name); err != nil {
			return nil, err
		}
		result.Removed = append(result.Removed, name)
	}
	if err := tx.Commit(); err != nil {
		return nil, wrap(err, "failed to commit sync")
	}

	s.log.Infow("Synced catalog",
		logger.FieldCount, len(entries),
		logger.FieldChanged, len(result.Changed),
		"removed", len(result.Removed),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return result, nil
}
