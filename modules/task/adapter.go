package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// ListTasks lists all tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return a.list(ctx, "list-tasks")
}

// ListCompletedTasks lists completed tasks via the list-completed-tasks service.
func (a *taskAdapter) ListCompletedTasks(ctx context.Context) ([]*domain.Task, error) {
	return a.list(ctx, "list-completed-tasks")
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, text string) (*domain.Task, error) {
	if len(text) > domain.MaxTextLength {
		return nil, domain.ErrTextTooLong
	}
	req := CreateTaskRequest{Text: text}
	return callTaskService(ctx, a.container, "create-task", &req)
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	req := TaskIDRequest{TaskID: taskID}
	return callTaskService(ctx, a.container, "get-task", &req)
}

// UpdateTaskText replaces a task's text via the update-task-text service.
func (a *taskAdapter) UpdateTaskText(ctx context.Context, taskID, text string) (*domain.Task, error) {
	if len(text) > domain.MaxTextLength {
		return nil, domain.ErrTextTooLong
	}
	req := UpdateTaskTextRequest{TaskID: taskID, Text: text}
	return callTaskService(ctx, a.container, "update-task-text", &req)
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID string) (*domain.Task, error) {
	req := TaskIDRequest{TaskID: taskID}
	return callTaskService(ctx, a.container, "delete-task", &req)
}

// CompleteTask marks a task as completed via the complete-task service.
func (a *taskAdapter) CompleteTask(ctx context.Context, taskID string) (*domain.Task, error) {
	req := TaskIDRequest{TaskID: taskID}
	return callTaskService(ctx, a.container, "complete-task", &req)
}

// IncompleteTask reopens a task via the incomplete-task service.
func (a *taskAdapter) IncompleteTask(ctx context.Context, taskID string) (*domain.Task, error) {
	req := TaskIDRequest{TaskID: taskID}
	return callTaskService(ctx, a.container, "incomplete-task", &req)
}

// StoreHealth reports the task store status via the store-health service.
func (a *taskAdapter) StoreHealth(ctx context.Context) (*StoreHealthResponse, error) {
	req := StoreHealthRequest{}
	var resp StoreHealthResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"store-health",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("store-health service call failed: %w", err)
	}
	return &resp, nil
}

// list follows the listing's cursors and concatenates the chunks.
func (a *taskAdapter) list(ctx context.Context, service string) ([]*domain.Task, error) {
	tasks := []*domain.Task{}
	cursor := ""
	for {
		req := ListTasksRequest{Cursor: cursor}
		var resp ListTasksResponse
		if err := helper.CallRequestReplyService(
			ctx,
			a.container,
			service,
			json.Marshal,
			json.Unmarshal,
			&req,
			&resp,
		); err != nil {
			return nil, fmt.Errorf("%s service call failed: %w", service, err)
		}
		if resp.Error != "" {
			return nil, mapServiceError(errors.New(resp.Error))
		}

		tasks = append(tasks, resp.Tasks...)
		if resp.NextCursor == "" {
			return tasks, nil
		}
		if len(resp.Tasks) == 0 {
			return nil, fmt.Errorf("%s service returned an empty chunk", service)
		}
		cursor = resp.NextCursor
	}
}

func callTaskService[Req any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) (*domain.Task, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", service, err)
	}
	if resp.Error != "" {
		return nil, mapServiceError(errors.New(resp.Error))
	}
	if resp.Task == nil {
		return nil, fmt.Errorf("%s service returned no task", service)
	}
	return resp.Task, nil
}

// mapServiceError converts service errors back to sentinel errors
// so callers can use errors.Is across the request-reply boundary.
func mapServiceError(err error) error {
	if err == nil {
		return nil
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, domain.ErrTextTooLong.Error()) {
		return domain.ErrTextTooLong
	}
	if strings.Contains(errMsg, domain.ErrNotFound.Error()) {
		return domain.ErrNotFound
	}
	if strings.Contains(errMsg, domain.ErrInvalidText.Error()) {
		return domain.ErrInvalidText
	}
	if strings.Contains(errMsg, domain.ErrInvalidID.Error()) {
		return domain.ErrInvalidID
	}

	return err
}
