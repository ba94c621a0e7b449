package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Timestamps are unix nanoseconds so
// that ordering by created_at is exact.
//
// comments.item_id deliberately has no foreign key: deleting an item leaves
// its comments in place.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('student', 'admin')),
    created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id             TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL,
    image          TEXT,
    status         TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved')),
    created_by     TEXT NOT NULL REFERENCES users(id),
    reporter_email TEXT NOT NULL,
    created_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_status_created
    ON items(status, created_at);

CREATE TABLE IF NOT EXISTS comments (
    id                TEXT PRIMARY KEY,
    item_id           TEXT NOT NULL,
    user_id           TEXT NOT NULL REFERENCES users(id),
    content           TEXT NOT NULL,
    parent_comment_id TEXT,
    created_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comments_item_created
    ON comments(item_id, created_at);

CREATE INDEX IF NOT EXISTS idx_comments_item_parent
    ON comments(item_id, parent_comment_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
