// Package store provides the SQLite persistence layer for markpin.
//
// The store owns the schema, the forward-only migration list, and the
// transactional snapshot ingest. It returns raw database errors wrapped with
// positional context; classification into the markup error taxonomy happens
// one layer up.
package store

import (
	"database/sql"

	"markpin/dbopen"
	"markpin/idgen"
)

// Store is the markpin database handle.
type Store struct {
	DB *sql.DB

	newProjectID idgen.Generator
	newThreadID  idgen.Generator
	newCommentID idgen.Generator
}

// Open opens (or creates) the markpin SQLite database at path, applies
// pragmas, the schema, and any pending migrations.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// NewStore wraps an already-opened database. The schema must have been
// applied (tests use dbopen.OpenMemory with WithSchema(Schema)).
func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:           db,
		newProjectID: idgen.Prefixed("prj_", idgen.Default),
		newThreadID:  idgen.Prefixed("thr_", idgen.Default),
		newCommentID: idgen.Prefixed("cmt_", idgen.Default),
	}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
