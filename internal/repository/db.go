package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// schema is applied on every open. The registry lives in process memory and
// starts empty.
const schema = `
CREATE TABLE IF NOT EXISTS subscriptions (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    email             TEXT    NOT NULL UNIQUE,
    location_name     TEXT    NOT NULL,
    latitude          REAL    NOT NULL,
    longitude         REAL    NOT NULL,
    frequency         TEXT    NOT NULL CHECK (frequency IN ('hourly', 'daily')),
    confirmed         INTEGER NOT NULL DEFAULT 0,
    confirm_token     TEXT,
    unsubscribe_token TEXT    NOT NULL,
    scheduled_minute  INTEGER NOT NULL DEFAULT 0,
    scheduled_hour    INTEGER NOT NULL DEFAULT 0,
    created_at        TEXT    NOT NULL
);`

// OpenDB opens the in-memory subscription registry and applies the schema.
// The pool is pinned to a single connection: an in-memory sqlite database
// lives exactly as long as the connection holding it.
func OpenDB() (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}
