// Package backend selects and builds the kv store the ledger persists
// through.
package backend

import (
	"context"

	"tally/internal/kv"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result holds the store and its cleanup function.
type Result struct {
	Store   kv.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds what each backend type needs.
type Config struct {
	Type BackendType

	// File backend
	DataDir string

	// SQLite backend
	SQLiteDBPath string

	// Postgres backend
	PostgresDSN string
}

// BackendType names a kv store implementation.
type BackendType string

const (
	FileBackend     BackendType = "file"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
