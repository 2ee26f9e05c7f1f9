package markup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is returned when a payload is malformed: a required field is
// missing, or a comment carries duplicate attachment URLs. Not retryable.
var ErrValidation = errors.New("markup: invalid payload")

// ErrConstraint is returned when the store rejects a write on a uniqueness or
// foreign-key constraint. The caller may retry with corrected data.
var ErrConstraint = errors.New("markup: constraint violation")

// ErrTransientStore is returned on connection or resource exhaustion.
// Safe to retry with backoff; atomicity guarantees no partial write happened.
var ErrTransientStore = errors.New("markup: transient store failure")

// ErrNotFound is returned when no project exists for a scraped-data reference.
var ErrNotFound = errors.New("markup: project not found")

// classifyStoreErr maps a raw database error onto the markup taxonomy.
// SQLite reports constraint and busy conditions only through error text, so
// classification is by substring, same as the rest of this codebase. The
// original error stays in the message: the store wraps failures with their
// thread/comment position and the caller needs to see which write failed.
func classifyStoreErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint"),
		strings.Contains(msg, "FOREIGN KEY constraint"),
		strings.Contains(msg, "CHECK constraint"),
		strings.Contains(msg, "NOT NULL constraint"):
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"),
		strings.Contains(msg, "busy"),
		strings.Contains(msg, "interrupted"),
		strings.Contains(msg, "disk I/O error"):
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	default:
		// Unrecognized errors (including context cancellation) propagate
		// unclassified rather than being mislabelled retryable.
		return err
	}
}
