package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/example/tasks-api/events"
	"github.com/go-monolith/mono"
)

// errListCursorExpired is reported when a listing is resumed after its
// snapshot was dropped.
var errListCursorExpired = errors.New("list cursor expired")

// Domain failures travel in the response Error field; the transport error is
// reserved for infrastructure problems.

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	return m.listChunk(ctx, req, m.store.ListAll), nil
}

// listCompletedTasks handles the list-completed-tasks service request.
func (m *TaskModule) listCompletedTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	return m.listChunk(ctx, req, m.store.ListCompleted), nil
}

// listChunk answers one chunk of a listing. The first call loads the
// listing from the store; later calls resume it by cursor.
func (m *TaskModule) listChunk(ctx context.Context, req ListTasksRequest, load func(context.Context) ([]*domain.Task, error)) ListTasksResponse {
	var tasks []*domain.Task
	offset := 0

	if req.Cursor == "" {
		loaded, err := load(ctx)
		if err != nil {
			m.logger.Error("Failed to list tasks", "error", err)
			return ListTasksResponse{Error: err.Error()}
		}
		tasks = loaded
	} else {
		snap, ok := m.listings.take(req.Cursor)
		if !ok {
			return ListTasksResponse{Error: fmt.Sprintf("%s: %s", errListCursorExpired, req.Cursor)}
		}
		tasks, offset = snap.tasks, snap.offset
	}

	end := chunkEnd(tasks, offset, listChunkBytes)
	resp := ListTasksResponse{
		Tasks: tasks[offset:end],
		Total: len(tasks),
	}
	if end < len(tasks) {
		resp.NextCursor = m.listings.save(req.Cursor, tasks, end)
	} else if req.Cursor != "" {
		m.listings.drop(req.Cursor)
	}
	return resp
}

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := domain.ValidateText(req.Text); err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}

	task, err := m.store.Create(ctx, req.Text)
	if err != nil {
		m.logger.Error("Failed to create task", "error", err)
		return TaskResponse{Error: err.Error()}, nil
	}
	m.logger.Info("Task created", "task_id", task.ID)

	m.publish(func(bus mono.EventBus) error {
		return events.TaskCreatedV1.Publish(bus, events.TaskCreatedEvent{
			TaskID:      task.ID,
			Text:        task.Text,
			CreatedDate: task.CreatedDate,
		}, nil)
	}, "TaskCreated", task.ID)

	return TaskResponse{Task: task}, nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := domain.ValidateID(req.TaskID); err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}

	task, err := m.store.FindByID(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}
	return TaskResponse{Task: task}, nil
}

// updateTaskText handles the update-task-text service request.
func (m *TaskModule) updateTaskText(ctx context.Context, req UpdateTaskTextRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := domain.ValidateID(req.TaskID); err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}
	if err := domain.ValidateText(req.Text); err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}

	task, err := m.store.UpdateText(ctx, req.TaskID, req.Text)
	if err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}
	m.logger.Info("Task text updated", "task_id", task.ID)

	m.publish(func(bus mono.EventBus) error {
		return events.TaskTextUpdatedV1.Publish(bus, events.TaskTextUpdatedEvent{
			TaskID:    task.ID,
			Text:      task.Text,
			UpdatedAt: time.Now(),
		}, nil)
	}, "TaskTextUpdated", task.ID)

	return TaskResponse{Task: task}, nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := domain.ValidateID(req.TaskID); err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}

	task, err := m.store.Delete(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}
	m.logger.Info("Task deleted", "task_id", task.ID)

	m.publish(func(bus mono.EventBus) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			TaskID:    task.ID,
			DeletedAt: time.Now(),
		}, nil)
	}, "TaskDeleted", task.ID)

	return TaskResponse{Task: task}, nil
}

// completeTask handles the complete-task service request.
func (m *TaskModule) completeTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := domain.ValidateID(req.TaskID); err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}

	task, err := m.store.SetCompleted(ctx, req.TaskID, true)
	if err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}
	m.logger.Info("Task completed", "task_id", task.ID)

	m.publish(func(bus mono.EventBus) error {
		var completedDate int64
		if task.CompletedDate != nil {
			completedDate = *task.CompletedDate
		}
		return events.TaskCompletedV1.Publish(bus, events.TaskCompletedEvent{
			TaskID:        task.ID,
			CompletedDate: completedDate,
		}, nil)
	}, "TaskCompleted", task.ID)

	return TaskResponse{Task: task}, nil
}

// incompleteTask handles the incomplete-task service request.
func (m *TaskModule) incompleteTask(ctx context.Context, req TaskIDRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := domain.ValidateID(req.TaskID); err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}

	task, err := m.store.SetCompleted(ctx, req.TaskID, false)
	if err != nil {
		return TaskResponse{Error: err.Error()}, nil
	}
	m.logger.Info("Task marked incomplete", "task_id", task.ID)

	m.publish(func(bus mono.EventBus) error {
		return events.TaskIncompletedV1.Publish(bus, events.TaskIncompletedEvent{
			TaskID:     task.ID,
			ReopenedAt: time.Now(),
		}, nil)
	}, "TaskIncompleted", task.ID)

	return TaskResponse{Task: task}, nil
}

// storeHealth handles the store-health service request.
func (m *TaskModule) storeHealth(ctx context.Context, _ StoreHealthRequest, _ *mono.Msg) (StoreHealthResponse, error) {
	resp := StoreHealthResponse{Healthy: true, Driver: m.driver}
	if err := m.store.Ping(ctx); err != nil {
		resp.Healthy = false
		resp.Error = err.Error()
	}
	return resp, nil
}

// publish emits an event if an event bus is set.
// Event publishing is best-effort; failures are logged only.
func (m *TaskModule) publish(emit func(mono.EventBus) error, event, taskID string) {
	if m.eventBus == nil {
		return
	}
	if err := emit(m.eventBus); err != nil {
		m.logger.Warn("Failed to publish event", "event", event, "task_id", taskID, "error", err)
	}
}
