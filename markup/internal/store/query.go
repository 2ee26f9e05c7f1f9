package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Project is a stored project row.
type Project struct {
	ID             string `json:"id"`
	ScrapedDataID  string `json:"scrapedDataId"`
	Name           string `json:"name"`
	HasAttachments bool   `json:"hasAttachments"`
	UpdatedAt      int64  `json:"updatedAt"`
}

// Thread is a stored thread row with its comments in insertion order.
type Thread struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ImageIndex     *int64    `json:"imageIndex,omitempty"`
	ImagePath      string    `json:"imagePath"`
	ImageFilename  string    `json:"imageFilename"`
	HasAttachments bool      `json:"hasAttachments"`
	Comments       []Comment `json:"comments"`
}

// Comment is a stored comment row.
type Comment struct {
	ID             string   `json:"id"`
	Index          int64    `json:"index"`
	PinNumber      int64    `json:"pinNumber"`
	Content        string   `json:"content"`
	Author         string   `json:"user"`
	HasAttachments bool     `json:"hasAttachments"`
	Attachments    []string `json:"attachments"`
}

// ProjectTree is the full project/thread/comment tree served downstream.
type ProjectTree struct {
	Project
	Threads []Thread `json:"threads"`
}

// GetProjectTree loads the full tree for a scraped-data reference, threads
// then comments in insertion (seq) order. Returns nil when no project exists
// for the reference.
func (s *Store) GetProjectTree(ctx context.Context, scrapedDataID string) (*ProjectTree, error) {
	tree := &ProjectTree{}
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, scraped_data_id, name, has_attachments, updated_at
		FROM projects WHERE scraped_data_id = ?`, scrapedDataID).Scan(
		&tree.ID, &tree.ScrapedDataID, &tree.Name, &tree.HasAttachments, &tree.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select project %q: %w", scrapedDataID, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, image_index, image_path, image_filename, has_attachments
		FROM threads WHERE project_id = ? ORDER BY seq`, tree.ID)
	if err != nil {
		return nil, fmt.Errorf("select threads of %q: %w", scrapedDataID, err)
	}
	defer rows.Close()

	tree.Threads = []Thread{}
	for rows.Next() {
		var th Thread
		var imageIndex sql.NullInt64
		if err := rows.Scan(&th.ID, &th.Name, &imageIndex, &th.ImagePath,
			&th.ImageFilename, &th.HasAttachments); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		if imageIndex.Valid {
			th.ImageIndex = &imageIndex.Int64
		}
		tree.Threads = append(tree.Threads, th)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tree.Threads {
		comments, err := s.threadComments(ctx, tree.Threads[i].ID)
		if err != nil {
			return nil, err
		}
		tree.Threads[i].Comments = comments
	}
	return tree, nil
}

func (s *Store) threadComments(ctx context.Context, threadID string) ([]Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, comment_index, pin_number, content, author, has_attachments, attachments
		FROM comments WHERE thread_id = ? ORDER BY seq`, threadID)
	if err != nil {
		return nil, fmt.Errorf("select comments of %s: %w", threadID, err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		var attJSON string
		if err := rows.Scan(&c.ID, &c.Index, &c.PinNumber, &c.Content, &c.Author,
			&c.HasAttachments, &attJSON); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if err := json.Unmarshal([]byte(attJSON), &c.Attachments); err != nil {
			return nil, fmt.Errorf("decode attachments of %s: %w", c.ID, err)
		}
		if c.Attachments == nil {
			c.Attachments = []string{}
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ListProjects returns all stored projects, most recently updated first.
func (s *Store) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, scraped_data_id, name, has_attachments, updated_at
		FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(&p.ID, &p.ScrapedDataID, &p.Name, &p.HasAttachments, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CountRows returns the number of rows in the projects, threads, and comments
// tables. Used by stats output and tests asserting atomicity.
func (s *Store) CountRows(ctx context.Context) (projects, threads, comments int, err error) {
	if err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&projects); err != nil {
		return
	}
	if err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM threads`).Scan(&threads); err != nil {
		return
	}
	err = s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&comments)
	return
}
