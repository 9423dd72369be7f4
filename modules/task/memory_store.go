package task

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/google/uuid"
)

// MemoryStore provides in-memory task storage.
type MemoryStore struct {
	tasks map[string]*domain.Task
	order []string
	mu    sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*domain.Task),
	}
}

// ListAll returns copies of all tasks in insertion order.
func (s *MemoryStore) ListAll(_ context.Context) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Task, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.tasks[id].Clone())
	}
	return result, nil
}

// ListCompleted returns copies of completed tasks in insertion order.
func (s *MemoryStore) ListCompleted(_ context.Context) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Task, 0)
	for _, id := range s.order {
		if task := s.tasks[id]; task.Completed {
			result = append(result, task.Clone())
		}
	}
	return result, nil
}

// Create stores a new task with a fresh ID.
func (s *MemoryStore) Create(_ context.Context, text string) (*domain.Task, error) {
	task := domain.New(uuid.New().String(), text, clock())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	return task.Clone(), nil
}

// FindByID finds a task by ID.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, found := s.tasks[id]
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return task.Clone(), nil
}

// UpdateText replaces the text of a task.
func (s *MemoryStore) UpdateText(_ context.Context, id, text string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, found := s.tasks[id]
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	task.Text = text
	return task.Clone(), nil
}

// Delete removes a task by ID.
func (s *MemoryStore) Delete(_ context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, found := s.tasks[id]
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(s.tasks, id)
	for i, orderedID := range s.order {
		if orderedID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return task, nil
}

// SetCompleted marks a task complete or incomplete.
func (s *MemoryStore) SetCompleted(_ context.Context, id string, completed bool) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, found := s.tasks[id]
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	task.SetCompleted(completed, clock())
	return task.Clone(), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
