package task

import (
	"context"

	domain "github.com/example/tasks-api/domain/task"
)

// ListTasksRequest is the request for listing tasks. An empty Cursor
// starts a new listing; a non-empty one resumes it.
type ListTasksRequest struct {
	Cursor string `json:"cursor,omitempty"`
}

// ListTasksResponse is one chunk of a listing. Total counts the whole
// listing; NextCursor is set while more chunks remain.
type ListTasksResponse struct {
	Tasks      []*domain.Task `json:"tasks"`
	Total      int            `json:"total"`
	NextCursor string         `json:"next_cursor,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Text string `json:"text"`
}

// TaskIDRequest addresses a single task by ID.
type TaskIDRequest struct {
	TaskID string `json:"task_id"`
}

// UpdateTaskTextRequest is the request for replacing a task's text.
type UpdateTaskTextRequest struct {
	TaskID string `json:"task_id"`
	Text   string `json:"text"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	Task  *domain.Task `json:"task,omitempty"`
	Error string       `json:"error,omitempty"`
}

// StoreHealthRequest is the request for checking the task store.
type StoreHealthRequest struct{}

// StoreHealthResponse reports the task store status.
type StoreHealthResponse struct {
	Healthy bool   `json:"healthy"`
	Driver  string `json:"driver"`
	Error   string `json:"error,omitempty"`
}

// TaskPort defines the interface for task operations (hexagonal port).
// This is the contract that driving adapters (like HTTP API) use to interact
// with the core domain. Errors wrap domain.ErrNotFound, domain.ErrInvalidText
// or domain.ErrInvalidID where applicable.
type TaskPort interface {
	ListTasks(ctx context.Context) ([]*domain.Task, error)
	ListCompletedTasks(ctx context.Context) ([]*domain.Task, error)
	CreateTask(ctx context.Context, text string) (*domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	UpdateTaskText(ctx context.Context, taskID, text string) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) (*domain.Task, error)
	CompleteTask(ctx context.Context, taskID string) (*domain.Task, error)
	IncompleteTask(ctx context.Context, taskID string) (*domain.Task, error)
	StoreHealth(ctx context.Context) (*StoreHealthResponse, error)
}
