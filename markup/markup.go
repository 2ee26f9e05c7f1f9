// Package markup persists scraped markup-review pages as queryable rows.
//
// The core operation is Ingest: one scraped project's nested payload
// (project → threads → comments → attachments) materialises into normalized
// rows in a single transaction. Re-ingesting the same scraped-data reference
// replaces the project's thread subtree; the latest snapshot wins.
package markup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"markpin/kit"
	"markpin/markup/internal/store"
)

// Service is the markpin orchestrator.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	config *Config
}

// New opens the database and wires the service.
func New(cfg *Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("markup: open store: %w", err)
	}
	return &Service{store: s, logger: logger, config: cfg}, nil
}

// NewWithDB wires the service onto an already-opened database. Used by tests
// with an in-memory store; the schema and migrations must be applied.
func NewWithDB(db *sql.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := &Config{}
	cfg.defaults()
	return &Service{store: store.NewStore(db), logger: logger, config: cfg}
}

// Close shuts down the service.
func (svc *Service) Close() error {
	return svc.store.Close()
}

// DB exposes the underlying handle for cross-cutting infrastructure; rate
// limit rules live in the same database as the data.
func (svc *Service) DB() *sql.DB {
	return svc.store.DB
}

// Ingest atomically persists one scraped project snapshot and returns the
// project's durable identifier.
//
// The payload is validated up front: a malformed thread or comment fails the
// whole call with ErrValidation (wrapped with its position) before anything
// is written. Store-level failures classify into ErrConstraint or
// ErrTransientStore; atomicity holds either way.
func (svc *Service) Ingest(ctx context.Context, scrapedDataID, projectName string, threads []ThreadPayload) (string, error) {
	if err := validateIngest(scrapedDataID, projectName, threads); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, svc.config.IngestTimeout)
	defer cancel()

	snap := buildSnapshot(scrapedDataID, projectName, threads)
	projectID, err := svc.store.IngestSnapshot(ctx, snap)
	if err != nil {
		svc.logger.Warn("markup: ingest failed",
			append(requestAttrs(ctx), "scraped_data_id", scrapedDataID, "error", err)...)
		return "", fmt.Errorf("ingest %q: %w", scrapedDataID, classifyStoreErr(err))
	}

	svc.logger.Info("markup: project ingested",
		append(requestAttrs(ctx),
			"scraped_data_id", scrapedDataID,
			"project_id", projectID,
			"threads", len(threads))...)
	return projectID, nil
}

// requestAttrs pulls the transport metadata the entry points stash in the
// context, so the same log line identifies the caller whether the request
// arrived over HTTP or an MCP session.
func requestAttrs(ctx context.Context) []any {
	attrs := []any{"transport", kit.GetTransport(ctx)}
	if id := kit.GetRequestID(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}
	if id := kit.GetSessionID(ctx); id != "" {
		attrs = append(attrs, "session_id", id)
	}
	if addr := kit.GetRemoteAddr(ctx); addr != "" {
		attrs = append(attrs, "remote_addr", addr)
	}
	return attrs
}

// buildSnapshot applies the payload defaults and computes the aggregate
// attachment flags: pinNumber falls back to index, hasAttachments to false,
// and a missing attachments list becomes an empty one.
func buildSnapshot(scrapedDataID, projectName string, threads []ThreadPayload) *store.ProjectSnapshot {
	snap := &store.ProjectSnapshot{
		ScrapedDataID: scrapedDataID,
		Name:          projectName,
		Threads:       make([]store.ThreadSnapshot, 0, len(threads)),
	}

	for ti := range threads {
		th := &threads[ti]
		ts := store.ThreadSnapshot{
			Name:          th.ThreadName,
			ImagePath:     th.ImagePath,
			ImageFilename: th.ImageFilename,
			Comments:      make([]store.CommentSnapshot, 0, len(th.Comments)),
		}
		if th.ImageIndex.Valid {
			ts.ImageIndex = sql.NullInt64{Int64: th.ImageIndex.Int64, Valid: true}
		}

		for ci := range th.Comments {
			c := &th.Comments[ci]
			cs := store.CommentSnapshot{
				Index:       c.Index,
				PinNumber:   c.Index,
				Content:     c.Content,
				Author:      c.User,
				Attachments: c.Attachments,
			}
			if c.PinNumber != nil {
				cs.PinNumber = *c.PinNumber
			}
			if c.HasAttachments != nil {
				cs.HasAttachments = *c.HasAttachments
			}
			if cs.Attachments == nil {
				cs.Attachments = []string{}
			}
			if cs.HasAttachments || len(cs.Attachments) > 0 {
				ts.HasAttachments = true
			}
			ts.Comments = append(ts.Comments, cs)
		}
		if ts.HasAttachments {
			snap.HasAttachments = true
		}
		snap.Threads = append(snap.Threads, ts)
	}
	return snap
}

// GetProject returns the full project/thread/comment tree for a scraped-data
// reference, in thread-then-comment insertion order.
func (svc *Service) GetProject(ctx context.Context, scrapedDataID string) (*store.ProjectTree, error) {
	tree, err := svc.store.GetProjectTree(ctx, scrapedDataID)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, scrapedDataID)
	}
	return tree, nil
}

// ListProjects returns all stored projects, most recently updated first.
func (svc *Service) ListProjects(ctx context.Context) ([]*store.Project, error) {
	projects, err := svc.store.ListProjects(ctx)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	return projects, nil
}
