package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	seq            BIGSERIAL PRIMARY KEY,
	id             TEXT NOT NULL UNIQUE,
	text           TEXT NOT NULL,
	completed      BOOLEAN NOT NULL DEFAULT FALSE,
	created_date   BIGINT NOT NULL,
	completed_date BIGINT
);
CREATE INDEX IF NOT EXISTS tasks_completed_idx ON tasks (completed);
`

const taskColumns = "id, text, completed, created_date, completed_date"

// PostgresStore persists tasks in PostgreSQL through a pgx pool.
// Every mutation is a single statement, so row locks serialize writers.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgresStore connects to url and applies the schema.
func OpenPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store, err := NewPostgresStore(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an existing pool and applies the schema.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// ListAll returns all tasks in insertion order.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return collectTasks(rows)
}

// ListCompleted returns completed tasks in insertion order.
func (s *PostgresStore) ListCompleted(ctx context.Context) ([]*domain.Task, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+taskColumns+" FROM tasks WHERE completed ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	return collectTasks(rows)
}

// Create inserts a new task.
func (s *PostgresStore) Create(ctx context.Context, text string) (*domain.Task, error) {
	task := domain.New(uuid.New().String(), text, clock())
	row := s.pool.QueryRow(ctx,
		"INSERT INTO tasks (id, text, created_date) VALUES ($1, $2, $3) RETURNING "+taskColumns,
		task.ID, task.Text, task.CreatedDate,
	)
	created, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// FindByID retrieves a task by ID.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	return scanOne(row, id)
}

// UpdateText replaces the text of a task.
func (s *PostgresStore) UpdateText(ctx context.Context, id, text string) (*domain.Task, error) {
	row := s.pool.QueryRow(ctx,
		"UPDATE tasks SET text = $2 WHERE id = $1 RETURNING "+taskColumns,
		id, text,
	)
	return scanOne(row, id)
}

// Delete removes a task and returns the removed row.
func (s *PostgresStore) Delete(ctx context.Context, id string) (*domain.Task, error) {
	row := s.pool.QueryRow(ctx, "DELETE FROM tasks WHERE id = $1 RETURNING "+taskColumns, id)
	return scanOne(row, id)
}

// SetCompleted marks a task complete or incomplete.
func (s *PostgresStore) SetCompleted(ctx context.Context, id string, completed bool) (*domain.Task, error) {
	var completedDate *int64
	if completed {
		ms := clock().UnixMilli()
		completedDate = &ms
	}
	row := s.pool.QueryRow(ctx,
		"UPDATE tasks SET completed = $2, completed_date = $3 WHERE id = $1 RETURNING "+taskColumns,
		id, completed, completedDate,
	)
	return scanOne(row, id)
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(&task.ID, &task.Text, &task.Completed, &task.CreatedDate, &task.CompletedDate); err != nil {
		return nil, err
	}
	return &task, nil
}

func scanOne(row pgx.Row, id string) (*domain.Task, error) {
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return task, nil
}

func collectTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return tasks, nil
}
