package library

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion gates the on-disk catalog format. There is no migration
// path; the catalog is derived data and rebuilding it is cheap, so on a
// mismatch the user deletes the file and re-records entries over time.
const schemaVersion = 1

// ErrSchemaMismatch indicates the catalog was written by a different
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	version, fresh, err := s.currentVersion(ctx)
	if err != nil {
		return err
	}
	if fresh {
		return s.createSchema(ctx)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild the catalog)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// currentVersion reads the stored schema version; fresh reports a database
// with no schema_version table at all.
func (s *Store) currentVersion(ctx context.Context) (version int, fresh bool, err error) {
	row := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1")
	switch err = row.Scan(&version); {
	case err == nil:
		return version, false, nil
	case errors.Is(err, sql.ErrNoRows):
		// Table exists but was never populated; treat as fresh.
		return 0, true, nil
	default:
		var count int
		probe := s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'")
		if probeErr := probe.Scan(&count); probeErr != nil {
			return 0, false, fmt.Errorf("check schema_version table: %w", probeErr)
		}
		if count == 0 {
			return 0, true, nil
		}
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}
