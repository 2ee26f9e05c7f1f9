package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ProjectSnapshot is one fully-scraped project ready for persistence.
// Defaults (pin number fallback, empty attachment lists) are already applied
// by the caller; the store persists exactly what it is given.
type ProjectSnapshot struct {
	ScrapedDataID  string
	Name           string
	HasAttachments bool
	Threads        []ThreadSnapshot
}

// ThreadSnapshot is one annotated image in payload order.
type ThreadSnapshot struct {
	Name           string
	ImageIndex     sql.NullInt64
	ImagePath      string
	ImageFilename  string
	HasAttachments bool
	Comments       []CommentSnapshot
}

// CommentSnapshot is one pin comment in payload order.
type CommentSnapshot struct {
	Index          int64
	PinNumber      int64
	Content        string
	Author         string
	HasAttachments bool
	Attachments    []string
}

// IngestSnapshot atomically persists one project snapshot.
//
// The project row is upserted by scraped_data_id. Previously stored threads
// and comments for that project are deleted in the same transaction before
// the new snapshot is inserted, so readers only ever see the latest complete
// snapshot. Any error rolls the whole call back.
func (s *Store) IngestSnapshot(ctx context.Context, snap *ProjectSnapshot) (string, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()

	var projectID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO projects (id, scraped_data_id, name, has_attachments, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(scraped_data_id) DO UPDATE SET
			name=excluded.name,
			has_attachments=excluded.has_attachments,
			updated_at=excluded.updated_at
		RETURNING id`,
		s.newProjectID(), snap.ScrapedDataID, snap.Name, snap.HasAttachments, now,
	).Scan(&projectID)
	if err != nil {
		return "", fmt.Errorf("upsert project %q: %w", snap.ScrapedDataID, err)
	}

	// Latest snapshot wins: purge the previous thread subtree. Comments go
	// with their threads via ON DELETE CASCADE.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM threads WHERE project_id = ?`, projectID); err != nil {
		return "", fmt.Errorf("purge threads of %q: %w", snap.ScrapedDataID, err)
	}

	for ti := range snap.Threads {
		th := &snap.Threads[ti]
		threadID := s.newThreadID()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO threads (id, project_id, seq, name, image_index, image_path, image_filename, has_attachments)
			VALUES (?,?,?,?,?,?,?,?)`,
			threadID, projectID, ti, th.Name, th.ImageIndex, th.ImagePath, th.ImageFilename, th.HasAttachments,
		); err != nil {
			return "", fmt.Errorf("thread %d: insert: %w", ti, err)
		}

		for ci := range th.Comments {
			c := &th.Comments[ci]
			attachments := c.Attachments
			if attachments == nil {
				attachments = []string{}
			}
			attJSON, err := json.Marshal(attachments)
			if err != nil {
				return "", fmt.Errorf("thread %d: comment %d: encode attachments: %w", ti, ci, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO comments (id, thread_id, seq, comment_index, pin_number, content, author, has_attachments, attachments)
				VALUES (?,?,?,?,?,?,?,?,?)`,
				s.newCommentID(), threadID, ci, c.Index, c.PinNumber, c.Content, c.Author, c.HasAttachments, string(attJSON),
			); err != nil {
				return "", fmt.Errorf("thread %d: comment %d: insert: %w", ti, ci, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit %q: %w", snap.ScrapedDataID, err)
	}
	return projectID, nil
}
