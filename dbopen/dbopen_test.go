package dbopen

import (
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestOpenMemoryAppliesPragmas(t *testing.T) {
	// WHAT: In-memory open succeeds and foreign_keys is enforced.
	// WHY: The ingestion transaction relies on FK cascades being active.
	db := OpenMemory(t)

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys: got %d, want 1", fk)
	}
}

func TestOpenWithSchema(t *testing.T) {
	// WHAT: WithSchema executes DDL before Open returns.
	// WHY: Callers expect a ready-to-use database handle.
	db := OpenMemory(t, WithSchema(`CREATE TABLE t (id TEXT PRIMARY KEY)`))

	if _, err := db.Exec(`INSERT INTO t (id) VALUES ('a')`); err != nil {
		t.Fatalf("insert into schema table: %v", err)
	}
}

func TestOpenWithMkdirAll(t *testing.T) {
	// WHAT: WithMkdirAll creates missing parent directories.
	// WHY: First run on a fresh host must not require manual setup.
	path := filepath.Join(t.TempDir(), "nested", "dir", "markpin.db")
	db, err := Open(path, WithMkdirAll())
	if err != nil {
		t.Fatalf("open with mkdir: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestOpenWithBusyTimeout(t *testing.T) {
	// WHAT: Custom busy_timeout is applied.
	// WHY: Concurrent ingestion calls serialize on the busy handler.
	db := OpenMemory(t, WithBusyTimeout(2500))

	var ms int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&ms); err != nil {
		t.Fatalf("query pragma: %v", err)
	}
	if ms != 2500 {
		t.Errorf("busy_timeout: got %d, want 2500", ms)
	}
}
