package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/tasks-api/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// snapshot returns the recorded entries, oldest first.
func snapshot(m *ActivityModule) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.full {
		return append([]Entry(nil), m.entries[:m.next]...)
	}
	result := make([]Entry, 0, len(m.entries))
	result = append(result, m.entries[m.next:]...)
	return append(result, m.entries[:m.next]...)
}

func TestNewModule(t *testing.T) {
	m := NewModule(0, &mockLogger{})

	assert.Equal(t, "activity", m.Name())
	assert.Len(t, m.entries, DefaultCapacity)
	assert.Empty(t, snapshot(m))
}

func TestHandlers(t *testing.T) {
	m := NewModule(10, &mockLogger{})
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	require.NoError(t, m.handleTaskCreated(ctx, events.TaskCreatedEvent{TaskID: "t1", Text: "buy milk", CreatedDate: now.UnixMilli()}, nil))
	require.NoError(t, m.handleTaskTextUpdated(ctx, events.TaskTextUpdatedEvent{TaskID: "t1", Text: "buy oat milk", UpdatedAt: now}, nil))
	require.NoError(t, m.handleTaskCompleted(ctx, events.TaskCompletedEvent{TaskID: "t1", CompletedDate: now.UnixMilli()}, nil))
	require.NoError(t, m.handleTaskIncompleted(ctx, events.TaskIncompletedEvent{TaskID: "t1", ReopenedAt: now}, nil))
	require.NoError(t, m.handleTaskDeleted(ctx, events.TaskDeletedEvent{TaskID: "t1", DeletedAt: now}, nil))

	entries := snapshot(m)
	require.Len(t, entries, 5)

	var kinds []string
	for _, e := range entries {
		assert.Equal(t, "t1", e.TaskID)
		assert.True(t, e.Timestamp.Equal(now))
		kinds = append(kinds, e.Type)
	}
	assert.Equal(t, []string{
		"task_created",
		"task_text_updated",
		"task_completed",
		"task_incompleted",
		"task_deleted",
	}, kinds)
	assert.Contains(t, entries[0].Message, "buy milk")
	assert.Contains(t, entries[1].Message, "buy oat milk")
}

func TestRingIsBoundedAndOrdered(t *testing.T) {
	m := NewModule(3, &mockLogger{})

	for i := 1; i <= 5; i++ {
		m.record(fmt.Sprintf("t%d", i), "task_created", "created", time.Now())
	}

	entries := snapshot(m)
	require.Len(t, entries, 3)
	assert.Equal(t, "t3", entries[0].TaskID)
	assert.Equal(t, "t4", entries[1].TaskID)
	assert.Equal(t, "t5", entries[2].TaskID)
	assert.Equal(t, 3, m.Len())
}

func TestRingExactlyFull(t *testing.T) {
	m := NewModule(2, &mockLogger{})

	m.record("a", "task_created", "created", time.Now())
	m.record("b", "task_created", "created", time.Now())

	entries := snapshot(m)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].TaskID)
	assert.Equal(t, "b", entries[1].TaskID)
}

func TestZeroTimestampDefaultsToNow(t *testing.T) {
	m := NewModule(2, &mockLogger{})
	before := time.Now()
	m.record("a", "task_deleted", "deleted", time.Time{})

	assert.False(t, snapshot(m)[0].Timestamp.Before(before))
}

func TestHealth(t *testing.T) {
	m := NewModule(4, &mockLogger{})
	m.record("a", "task_created", "created", time.Now())

	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.Details["entries"])
	assert.Equal(t, 4, status.Details["capacity"])
}

func TestStats(t *testing.T) {
	m := NewModule(2, &mockLogger{})
	ctx := context.Background()

	empty, err := m.stats(ctx, StatsRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Entries)
	assert.Equal(t, 2, empty.Capacity)
	assert.Empty(t, empty.LastType)
	assert.Nil(t, empty.LastAt)

	at := time.UnixMilli(1_700_000_000_000)
	m.record("a", "task_created", "created", at.Add(-time.Minute))
	m.record("a", "task_completed", "completed", at.Add(-time.Second))
	m.record("a", "task_deleted", "deleted", at)

	resp, err := m.stats(ctx, StatsRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Entries)
	assert.Equal(t, 2, resp.Capacity)
	assert.Equal(t, "task_deleted", resp.LastType)
	require.NotNil(t, resp.LastAt)
	assert.True(t, resp.LastAt.Equal(at))
}

func TestNewActivityAdapter_NilContainer(t *testing.T) {
	assert.Panics(t, func() { NewActivityAdapter(nil) })
}

func TestStartStop(t *testing.T) {
	m := NewModule(1, &mockLogger{})
	assert.NoError(t, m.Start(context.Background()))
	assert.NoError(t, m.Stop(context.Background()))
}
