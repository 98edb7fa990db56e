// Package store persists todos in a single relational table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"todolist/internal/models"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("todo not found")

const todoColumns = "id, title, completed, created_at"

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// Store runs one statement per operation against a shared connection pool.
type Store struct {
	db      *sql.DB
	dialect dialect
}

func Open(ctx context.Context, opts Options) (*Store, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	if opts.Driver == DriverSQLite && inMemory(opts.DSN) {
		// Each connection to an in-memory SQLite database sees its own copy.
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create todos table: %w", err)
	}

	return &Store{db: db, dialect: d}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) List(ctx context.Context) ([]models.Todo, error) {
	results := make([]models.Todo, 0)

	rows, err := s.db.QueryContext(ctx, "SELECT "+todoColumns+" FROM todos ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		todo := models.Todo{}
		err = rows.Scan(&todo.ID, &todo.Title, &todo.Completed, &todo.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}

		results = append(results, todo)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	return results, nil
}

// Create expects a title that has already been trimmed and checked.
func (s *Store) Create(ctx context.Context, title string) (models.Todo, error) {
	todo, err := s.queryTodo(ctx, "INSERT INTO todos (title) VALUES ($1) RETURNING "+todoColumns, title)
	if err == sql.ErrNoRows {
		return models.Todo{}, fmt.Errorf("create todo: insert returned no row")
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// Toggle negates completed in place with a single conditional update.
func (s *Store) Toggle(ctx context.Context, id int64) (models.Todo, error) {
	todo, err := s.queryTodo(ctx, "UPDATE todos SET completed = NOT completed WHERE id = $1 RETURNING "+todoColumns, id)
	if err == sql.ErrNoRows {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("toggle todo %d: %w", id, err)
	}
	return todo, nil
}

// Delete removes the row and returns its last state.
func (s *Store) Delete(ctx context.Context, id int64) (models.Todo, error) {
	todo, err := s.queryTodo(ctx, "DELETE FROM todos WHERE id = $1 RETURNING "+todoColumns, id)
	if err == sql.ErrNoRows {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("delete todo %d: %w", id, err)
	}
	return todo, nil
}

// Ping reports the store clock and server version.
func (s *Store) Ping(ctx context.Context) (models.StoreInfo, error) {
	info, err := s.dialect.info(ctx, s.db)
	if err != nil {
		return models.StoreInfo{}, fmt.Errorf("query store info: %w", err)
	}
	return info, nil
}

func (s *Store) queryTodo(ctx context.Context, query string, args ...any) (models.Todo, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)

	todo := models.Todo{}
	err := row.Scan(&todo.ID, &todo.Title, &todo.Completed, &todo.CreatedAt)
	return todo, err
}

func inMemory(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:") || strings.Contains(dsn, "mode=memory")
}

// ErrorCode returns the SQLSTATE condition name of a Postgres error in
// err's chain, or "" when there is none.
func ErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name()
	}
	return ""
}
