package store

// Schema is the complete markpin DDL. Timestamps are unix milliseconds.
//
// A project row is keyed by its external scraped_data_id (one project per
// scraped source). Threads and comments carry a seq column recording payload
// order; both tables are wholly replaced on every ingestion of their project.
const Schema = `
-- Projects: one scraped markup document
CREATE TABLE IF NOT EXISTS projects (
    id              TEXT PRIMARY KEY,
    scraped_data_id TEXT NOT NULL UNIQUE,
    name            TEXT NOT NULL,
    has_attachments INTEGER NOT NULL DEFAULT 0,
    updated_at      INTEGER NOT NULL
);

-- Threads: one annotated image/region within a project
CREATE TABLE IF NOT EXISTS threads (
    id              TEXT PRIMARY KEY,
    project_id      TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    seq             INTEGER NOT NULL,
    name            TEXT NOT NULL,
    image_index     INTEGER,
    image_path      TEXT NOT NULL,
    image_filename  TEXT NOT NULL DEFAULT '',
    has_attachments INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_threads_project ON threads(project_id, seq);

-- Comments: one pin annotation within a thread.
-- attachments is a JSON array of URL strings, '[]' when none.
CREATE TABLE IF NOT EXISTS comments (
    id              TEXT PRIMARY KEY,
    thread_id       TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
    seq             INTEGER NOT NULL,
    comment_index   INTEGER NOT NULL,
    pin_number      INTEGER NOT NULL,
    content         TEXT NOT NULL,
    author          TEXT NOT NULL,
    has_attachments INTEGER NOT NULL DEFAULT 0,
    attachments     TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_comments_thread ON comments(thread_id, seq);

-- Forward-only migration ledger
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at INTEGER NOT NULL
);
`
