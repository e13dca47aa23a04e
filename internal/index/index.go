// Package index builds a read-only SQLite database from a loaded project so
// that tables, rows and documents can be queried with SQL. The project files
// stay the source of truth; the index is rebuilt from scratch on every Build
// and never written back.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// MemoryPath builds the index in memory.
const MemoryPath = ""

// Index is a built query index.
type Index struct {
	db   *sql.DB
	path string
}

// Build creates the index at path, replacing any existing file, and loads
// p into it. An empty path keeps the index in memory.
func Build(ctx context.Context, p *types.Project, path string) (*Index, error) {
	dsn := "file::memory:"
	if path != MemoryPath {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale index %s: %w", path, err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating index schema: %w", err)
		}
	}

	if err := load(ctx, db, p); err != nil {
		db.Close()
		return nil, err
	}
	return &Index{db: db, path: path}, nil
}

// DB exposes the underlying database for callers that need more than Query.
func (ix *Index) DB() *sql.DB { return ix.db }

// Path returns the index file, or MemoryPath.
func (ix *Index) Path() string { return ix.path }

// Close releases the database.
func (ix *Index) Close() error { return ix.db.Close() }

// Result is a fully materialized query result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Query runs q and returns every row. Text columns come back as string,
// integers as int64 and reals as float64; NULL is nil.
func (ix *Index) Query(ctx context.Context, q string, args ...any) (*Result, error) {
	rows, err := ix.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading result columns: %w", err)
	}
	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading result rows: %w", err)
	}
	return res, nil
}
