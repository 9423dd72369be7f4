package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/tasks-api/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// TaskModule provides task management services (core domain).
type TaskModule struct {
	store    Store
	driver   string
	eventBus mono.EventBus
	logger   types.Logger
	listings *listSnapshots
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates the task module around an opened store.
// driver is the store driver name reported by health checks.
func NewModule(store Store, driver string, logger types.Logger) *TaskModule {
	return &TaskModule{
		store:    store,
		driver:   driver,
		logger:   logger,
		listings: newListSnapshots(),
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskTextUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskIncompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-completed-tasks", json.Unmarshal, json.Marshal, m.listCompletedTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-completed-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task-text", json.Unmarshal, json.Marshal, m.updateTaskText,
	); err != nil {
		return fmt.Errorf("failed to register update-task-text service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete-task", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "incomplete-task", json.Unmarshal, json.Marshal, m.incompleteTask,
	); err != nil {
		return fmt.Errorf("failed to register incomplete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "store-health", json.Unmarshal, json.Marshal, m.storeHealth,
	); err != nil {
		return fmt.Errorf("failed to register store-health service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", "list-tasks, list-completed-tasks, create-task, get-task, update-task-text, delete-task, complete-task, incomplete-task, store-health")
	return nil
}

func (m *TaskModule) Start(_ context.Context) error {
	if m.store == nil {
		return fmt.Errorf("task store not set")
	}
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, events will not be published")
	}
	m.logger.Info("Module started", "driver", m.driver)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			return fmt.Errorf("failed to close task store: %w", err)
		}
	}
	m.logger.Info("Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
			Details: map[string]any{"driver": m.driver},
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"driver": m.driver},
	}
}
