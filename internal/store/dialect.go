package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"todolist/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type dialect struct {
	schema string
	// rebind rewrites $N placeholders into the driver's syntax.
	rebind func(query string) string
	info   func(ctx context.Context, db *sql.DB) (models.StoreInfo, error)
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL CHECK (btrim(title) <> ''),
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos (created_at DESC);
`

// AUTOINCREMENT keeps SQLite from handing out the id of a deleted row again.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL CHECK (trim(title) <> ''),
	completed BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos (created_at DESC);
`

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverPostgres:
		return dialect{
			schema: postgresSchema,
			rebind: func(query string) string { return query },
			info:   postgresInfo,
		}, nil
	case DriverSQLite:
		return dialect{
			schema: sqliteSchema,
			rebind: func(query string) string { return strings.ReplaceAll(query, "$", "?") },
			info:   sqliteInfo,
		}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func postgresInfo(ctx context.Context, db *sql.DB) (models.StoreInfo, error) {
	info := models.StoreInfo{}
	err := db.QueryRowContext(ctx, "SELECT NOW() AS current_time, version() AS pg_version").
		Scan(&info.CurrentTime, &info.Version)
	return info, err
}

func sqliteInfo(ctx context.Context, db *sql.DB) (models.StoreInfo, error) {
	var now, version string
	err := db.QueryRowContext(ctx, "SELECT CURRENT_TIMESTAMP, sqlite_version()").Scan(&now, &version)
	if err != nil {
		return models.StoreInfo{}, err
	}

	currentTime, err := time.Parse(time.DateTime, now)
	if err != nil {
		return models.StoreInfo{}, fmt.Errorf("parse sqlite timestamp %q: %w", now, err)
	}

	return models.StoreInfo{CurrentTime: currentTime, Version: "SQLite " + version}, nil
}
