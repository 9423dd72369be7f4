package api

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/gofiber/fiber/v2"
)

// route binds a method and path to a handler.
type route struct {
	method  string
	path    string
	handler fiber.Handler
}

// routes is the route table, registered in order. Static paths come
// before parameterized ones so /tasks/completed never reaches /tasks/:id.
func (m *APIModule) routes() []route {
	return []route{
		{fiber.MethodGet, "/health", m.healthHandler},
		{fiber.MethodGet, "/tasks", m.listTasks},
		{fiber.MethodPost, "/tasks", m.createTask},
		{fiber.MethodGet, "/tasks/completed", m.listCompletedTasks},
		{fiber.MethodPost, "/tasks/:id", m.updateTaskText},
		{fiber.MethodDelete, "/tasks/:id", m.deleteTask},
		{fiber.MethodPost, "/tasks/:id/complete", m.completeTask},
		{fiber.MethodPost, "/tasks/:id/incomplete", m.incompleteTask},
	}
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	resp, err := m.taskPort.StoreHealth(portContext(c))
	if err != nil {
		m.logger.Error("Store health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: map[string]any{"error": err.Error()},
		})
	}

	details := map[string]any{"store": resp.Driver}
	m.addActivityDetails(portContext(c), details)
	if !resp.Healthy {
		details["error"] = resp.Error
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: details,
		})
	}

	return c.JSON(HealthResponse{
		Status:  "healthy",
		Details: details,
	})
}

// addActivityDetails reports the activity ring. The activity log is not
// required for serving tasks, so a failure is reported without changing
// the health status.
func (m *APIModule) addActivityDetails(ctx context.Context, details map[string]any) {
	stats, err := m.activityPort.Stats(ctx)
	if err != nil {
		m.logger.Warn("Activity stats unavailable", "error", err)
		details["activity_error"] = err.Error()
		return
	}

	details["activity_entries"] = stats.Entries
	details["activity_capacity"] = stats.Capacity
	if stats.LastAt != nil {
		details["activity_last_type"] = stats.LastType
		details["activity_last_at"] = stats.LastAt.UnixMilli()
	}
}

// listTasks handles GET /tasks. The response is delayed by ListDelay.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	m.waitListDelay(c.Context())

	tasks, err := m.taskPort.ListTasks(portContext(c))
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	return c.JSON(nonNil(tasks))
}

// createTask handles POST /tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var req TaskTextRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	created, err := m.taskPort.CreateTask(portContext(c), req.Text)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return c.JSON(created)
}

// listCompletedTasks handles GET /tasks/completed.
func (m *APIModule) listCompletedTasks(c *fiber.Ctx) error {
	tasks, err := m.taskPort.ListCompletedTasks(portContext(c))
	if err != nil {
		return fmt.Errorf("list completed tasks: %w", err)
	}
	return c.JSON(nonNil(tasks))
}

// updateTaskText handles POST /tasks/:id.
func (m *APIModule) updateTaskText(c *fiber.Ctx) error {
	taskID := c.Params("id")

	var req TaskTextRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	updated, err := m.taskPort.UpdateTaskText(portContext(c), taskID, req.Text)
	if err != nil {
		return fmt.Errorf("update task %s: %w", taskID, err)
	}
	return c.JSON(updated)
}

// deleteTask handles DELETE /tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	deleted, err := m.taskPort.DeleteTask(portContext(c), taskID)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	return c.JSON(deleted)
}

// completeTask handles POST /tasks/:id/complete.
func (m *APIModule) completeTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	completed, err := m.taskPort.CompleteTask(portContext(c), taskID)
	if err != nil {
		return fmt.Errorf("complete task %s: %w", taskID, err)
	}
	return c.JSON(completed)
}

// incompleteTask handles POST /tasks/:id/incomplete.
func (m *APIModule) incompleteTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	reopened, err := m.taskPort.IncompleteTask(portContext(c), taskID)
	if err != nil {
		return fmt.Errorf("incomplete task %s: %w", taskID, err)
	}
	return c.JSON(reopened)
}

// waitListDelay blocks for the configured list delay. It returns early
// when the module stops or ctx is done; fasthttp closes the request
// context when the server shuts down, so pending lists are still served.
func (m *APIModule) waitListDelay(ctx context.Context) {
	if m.cfg.ListDelay <= 0 {
		return
	}

	timer := time.NewTimer(m.cfg.ListDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-m.shutdown:
	case <-ctx.Done():
	}
}

// portContext is the context for calls into other modules. fasthttp cancels
// the request context when shutdown begins; in-flight requests still finish.
func portContext(c *fiber.Ctx) context.Context {
	return context.WithoutCancel(c.Context())
}

func nonNil(tasks []*domain.Task) []*domain.Task {
	if tasks == nil {
		return []*domain.Task{}
	}
	return tasks
}
