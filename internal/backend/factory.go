package backend

import (
	"context"
	"fmt"
	"log/slog"

	"tally/internal/kv/file"
	"tally/internal/kv/memory"
	"tally/internal/kv/postgres"
	"tally/internal/kv/sqlite"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore implements Factory.CreateStore.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		store, err := file.New(config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file store: %w", err)
		}
		f.logger.Info("Initialized file backend", "data_dir", config.DataDir)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case SQLiteBackend:
		store, err := sqlite.New(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized sqlite backend", "db_path", config.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case PostgresBackend:
		store, err := postgres.New(ctx, config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres store: %w", err)
		}
		f.logger.Info("Initialized postgres backend")
		return &Result{Store: store, Cleanup: store.Close}, nil

	case MemoryBackend:
		store := memory.New()
		f.logger.Info("Initialized memory backend")
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
