package backend

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/adapters"
	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/file"
	"fintrack/internal/storage/memory"
	"fintrack/internal/store"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		repo     store.Repository
		cleanups []CleanupFunc
	)
	switch config.Type {
	case SQLiteBackend:
		sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		repo = sqliteRepo
		cleanups = append(cleanups, func(context.Context) error { return sqliteRepo.Close() })
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case FileBackend:
		repo = file.New(config.DataFilePath)
		f.logger.InfoContext(ctx, "Initialized file backend", "path", config.DataFilePath)
	case MemoryBackend:
		repo = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if config.AsyncSave {
		async := store.NewAsyncRepository(repo, f.logger)
		repo = async
		// The async writer must flush before the underlying repository closes.
		cleanups = append([]CleanupFunc{async.Close}, cleanups...)
	}

	result := &BackendResult{Repository: repo}

	// AMQP is optional; a broker that cannot be reached only disables
	// notifications.
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without notifications",
				log.FieldError, err)
		} else {
			result.Notifier = adapters.NewAMQPNotifier(client)
			cleanups = append(cleanups, func(context.Context) error { return client.Close() })
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func(ctx context.Context) error {
		var errs []error
		for _, c := range cleanups {
			if err := c(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return result, nil
}
