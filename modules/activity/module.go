package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/example/tasks-api/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 1000

// Entry is one recorded task lifecycle event.
type Entry struct {
	TaskID    string    `json:"task_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityModule records task lifecycle events as a driven adapter.
// It subscribes to domain events using the EventConsumerModule interface
// and keeps the most recent entries in a fixed-size ring.
type ActivityModule struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
	logger  types.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)
var _ mono.HealthCheckableModule = (*ActivityModule)(nil)

// NewModule creates an activity module holding at most capacity entries.
func NewModule(capacity int, logger types.Logger) *ActivityModule {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ActivityModule{
		entries: make([]Entry, capacity),
		logger:  logger,
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

// RegisterServices exposes the ring summary to dependent modules.
func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "activity-stats", json.Unmarshal, json.Marshal, m.stats,
	); err != nil {
		return fmt.Errorf("failed to register activity-stats service: %w", err)
	}
	return nil
}

func (m *ActivityModule) stats(_ context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	resp := StatsResponse{
		Entries:  m.Len(),
		Capacity: len(m.entries),
	}
	if last, ok := m.last(); ok {
		at := last.Timestamp
		resp.LastType = last.Type
		resp.LastAt = &at
	}
	return resp, nil
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskTextUpdatedV1, m.handleTaskTextUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskTextUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskIncompletedV1, m.handleTaskIncompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskIncompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", "TaskCreated, TaskTextUpdated, TaskCompleted, TaskIncompleted, TaskDeleted")
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_created", fmt.Sprintf("Task '%s' created", event.Text), time.UnixMilli(event.CreatedDate))
	return nil
}

func (m *ActivityModule) handleTaskTextUpdated(_ context.Context, event events.TaskTextUpdatedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_text_updated", fmt.Sprintf("Task text changed to '%s'", event.Text), event.UpdatedAt)
	return nil
}

func (m *ActivityModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_completed", fmt.Sprintf("Task %s completed", event.TaskID), time.UnixMilli(event.CompletedDate))
	return nil
}

func (m *ActivityModule) handleTaskIncompleted(_ context.Context, event events.TaskIncompletedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_incompleted", fmt.Sprintf("Task %s reopened", event.TaskID), event.ReopenedAt)
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "task_deleted", fmt.Sprintf("Task %s deleted", event.TaskID), event.DeletedAt)
	return nil
}

// record appends an entry, overwriting the oldest once the ring is full.
func (m *ActivityModule) record(taskID, entryType, message string, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.next] = Entry{
		TaskID:    taskID,
		Type:      entryType,
		Message:   message,
		Timestamp: at,
	}
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	m.logger.Debug("Activity recorded", "task_id", taskID, "type", entryType)
}

// last returns the most recent entry.
func (m *ActivityModule) last() (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.full && m.next == 0 {
		return Entry{}, false
	}
	idx := (m.next - 1 + len(m.entries)) % len(m.entries)
	return m.entries[idx], true
}

// Len returns the number of recorded entries.
func (m *ActivityModule) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.full {
		return len(m.entries)
	}
	return m.next
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Module started - listening for task events", "capacity", len(m.entries))
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped", "entries", m.Len())
	return nil
}

// Health returns the health status of the module.
func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"entries":  m.Len(),
			"capacity": len(m.entries),
		},
	}
}
