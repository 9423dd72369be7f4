package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// maxWatchRetries bounds optimistic-lock retries on a contended task key.
const maxWatchRetries = 10

// RedisStore persists tasks in Redis.
//
// Layout, relative to prefix:
//
//	seq        INCR counter used as insertion sequence
//	order      sorted set of task IDs scored by sequence
//	task:<id>  JSON encoded task
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// OpenRedisStore connects to addr and verifies the connection.
func OpenRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStore(client, prefix), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) seqKey() string           { return s.prefix + "seq" }
func (s *RedisStore) orderKey() string         { return s.prefix + "order" }
func (s *RedisStore) taskKey(id string) string { return s.prefix + "task:" + id }

// ListAll returns all tasks in insertion order.
func (s *RedisStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	return s.list(ctx, false)
}

// ListCompleted returns completed tasks in insertion order.
func (s *RedisStore) ListCompleted(ctx context.Context) ([]*domain.Task, error) {
	return s.list(ctx, true)
}

func (s *RedisStore) list(ctx context.Context, completedOnly bool) ([]*domain.Task, error) {
	ids, err := s.client.ZRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list task ids: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(ids))
	if len(ids) == 0 {
		return tasks, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.taskKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Deleted between ZRANGE and MGET.
			continue
		}
		task, err := decodeTask([]byte(raw))
		if err != nil {
			return nil, err
		}
		if completedOnly && !task.Completed {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Create stores a new task and appends it to the order index.
func (s *RedisStore) Create(ctx context.Context, text string) (*domain.Task, error) {
	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate task sequence: %w", err)
	}

	task := domain.New(uuid.New().String(), text, clock())
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.taskKey(task.ID), data, 0)
		pipe.ZAdd(ctx, s.orderKey(), redis.Z{Score: float64(seq), Member: task.ID})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// FindByID retrieves a task by ID.
func (s *RedisStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.get(ctx, s.client, id)
}

// UpdateText replaces the text of a task.
func (s *RedisStore) UpdateText(ctx context.Context, id, text string) (*domain.Task, error) {
	return s.mutate(ctx, id, func(task *domain.Task) {
		task.Text = text
	})
}

// SetCompleted marks a task complete or incomplete.
func (s *RedisStore) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Task, error) {
	return s.mutate(ctx, id, func(task *domain.Task) {
		task.SetCompleted(completed, clock())
	})
}

// Delete removes a task and its order entry.
func (s *RedisStore) Delete(ctx context.Context, id string) (*domain.Task, error) {
	var deleted *domain.Task
	key := s.taskKey(id)

	txf := func(tx *redis.Tx) error {
		task, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, s.orderKey(), id)
			return nil
		})
		if err != nil {
			return err
		}
		deleted = task
		return nil
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return nil, err
	}
	return deleted, nil
}

// mutate applies fn to the stored task under an optimistic lock.
func (s *RedisStore) mutate(ctx context.Context, id string, fn func(*domain.Task)) (*domain.Task, error) {
	var updated *domain.Task
	key := s.taskKey(id)

	txf := func(tx *redis.Tx) error {
		task, err := s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		fn(task)

		data, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = task
		return nil
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RedisStore) watch(ctx context.Context, txf func(*redis.Tx) error, key string) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("redis transaction failed: %w", err)
		}
		return err
	}
	return fmt.Errorf("redis transaction failed after %d attempts: %w", maxWatchRetries, redis.TxFailedErr)
}

func (s *RedisStore) get(ctx context.Context, c stringGetter, id string) (*domain.Task, error) {
	data, err := c.Get(ctx, s.taskKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return decodeTask(data)
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func decodeTask(data []byte) (*domain.Task, error) {
	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}
