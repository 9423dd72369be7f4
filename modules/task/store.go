package task

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/tasks-api/domain/task"
)

// Store is the persistence port of the task module.
// Lookups of unknown IDs return domain.ErrNotFound (possibly wrapped).
// Listings are ordered by insertion.
type Store interface {
	ListAll(ctx context.Context) ([]*domain.Task, error)
	ListCompleted(ctx context.Context) ([]*domain.Task, error)
	Create(ctx context.Context, text string) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	UpdateText(ctx context.Context, id, text string) (*domain.Task, error)
	// Delete removes the task and returns it as it was before removal.
	Delete(ctx context.Context, id string) (*domain.Task, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*domain.Task, error)
	Ping(ctx context.Context) error
	Close() error
}

// Store drivers accepted by OpenStore.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// StoreConfig selects and configures a Store backend.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	SQLiteDebug bool
	RedisAddr   string
	RedisPrefix string
	PostgresURL string
}

// OpenStore builds the Store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return OpenSQLiteStore(cfg.SQLitePath, cfg.SQLiteDebug)
	case DriverRedis:
		return OpenRedisStore(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case DriverPostgres:
		return OpenPostgresStore(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Driver)
	}
}

// clock is the time source used by stores; tests may replace it.
var clock = time.Now
