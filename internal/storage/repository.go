// Package storage connects the inferred table model to live databases.
//
// Backends register themselves under a kind ("postgres", "sqlite", "mssql")
// from an init function; callers construct one through New. The interface is
// intentionally minimal: create the schema, bulk-insert rows, close.
package storage

import (
	"context"
	"fmt"
	"sync"

	"ddlgen/internal/render"
	"ddlgen/internal/tablemodel"
)

// Config selects and parameterizes a backend.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is a backend-agnostic loading target for one inferred model.
//
// Each backend implements these semantics in its own idiomatic way (pgx pool
// for Postgres, database/sql for SQLite and SQL Server).
type Repository interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureTables creates the tables for the model tree, parents first.
	// When opt.Drops is set, existing tables are dropped children-first
	// beforehand.
	EnsureTables(ctx context.Context, root *tablemodel.Table, opt render.Options) error

	// InsertRows bulk-inserts the table's sampled rows. Returns the number
	// of rows written.
	InsertRows(ctx context.Context, t *tablemodel.Table) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind. Call from an init function in a
// backend package.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. Fail fast rather than pick between
//     ambiguous backends.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Concurrency:
//   - Safe for concurrent use with Register. New takes a read lock while
//     selecting the factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}
