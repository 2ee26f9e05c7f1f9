package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one numbered, forward-only schema change. apply runs inside a
// transaction; verify asserts the migration's post-condition on the live
// database afterwards, so a silently-failed ALTER cannot go unnoticed.
type migration struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
	verify  func(db *sql.DB) error
}

var migrations = []migration{
	{
		version: 1,
		name:    "drop redundant threads.image_url column",
		apply:   dropThreadImageURL,
		verify:  verifyThreadImageURLAbsent,
	},
}

// Migrate applies all pending migrations in version order and records each in
// schema_migrations. Safe to call at every startup: already-applied versions
// are skipped, and every apply is written so that re-running it on an
// up-to-date database is a no-op.
func Migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow(
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migrate %d: begin: %w", m.version, err)
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?,?,?)`,
			m.version, m.name, time.Now().UnixMilli()); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate %d: record: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate %d: commit: %w", m.version, err)
		}
		if err := m.verify(db); err != nil {
			return fmt.Errorf("migrate %d (%s): post-condition: %w", m.version, m.name, err)
		}
		slog.Info("markpin: migration applied", "version", m.version, "name", m.name)
	}
	return nil
}

// columnExists probes pragma_table_info for a column.
func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, column string) (bool, error) {
	var count int
	err := q.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// dropThreadImageURL removes the legacy image_url column, which duplicated
// image_path on databases written before image_path became canonical. New
// databases never have the column, so the probe keeps this idempotent.
func dropThreadImageURL(tx *sql.Tx) error {
	exists, err := columnExists(tx, "threads", "image_url")
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if _, err := tx.Exec(`ALTER TABLE threads DROP COLUMN image_url`); err != nil {
		return fmt.Errorf("drop column: %w", err)
	}
	return nil
}

func verifyThreadImageURLAbsent(db *sql.DB) error {
	exists, err := columnExists(db, "threads", "image_url")
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("threads.image_url still present")
	}
	return nil
}
