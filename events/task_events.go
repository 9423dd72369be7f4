package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	TaskID      string `json:"task_id"`
	Text        string `json:"text"`
	CreatedDate int64  `json:"created_date"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskTextUpdatedEvent is emitted when the text of a task changes.
type TaskTextUpdatedEvent struct {
	TaskID    string    `json:"task_id"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskTextUpdatedV1 is the typed event definition for text updates.
// Subject: events.task.v1.task-text-updated
var TaskTextUpdatedV1 = helper.EventDefinition[TaskTextUpdatedEvent](
	"task", "TaskTextUpdated", "v1",
)

// TaskCompletedEvent is emitted when a task is marked complete.
type TaskCompletedEvent struct {
	TaskID        string `json:"task_id"`
	CompletedDate int64  `json:"completed_date"`
}

// TaskCompletedV1 is the typed event definition for task completion.
// Subject: events.task.v1.task-completed
var TaskCompletedV1 = helper.EventDefinition[TaskCompletedEvent](
	"task", "TaskCompleted", "v1",
)

// TaskIncompletedEvent is emitted when a task is marked incomplete.
type TaskIncompletedEvent struct {
	TaskID     string    `json:"task_id"`
	ReopenedAt time.Time `json:"reopened_at"`
}

// TaskIncompletedV1 is the typed event definition for reopening a task.
// Subject: events.task.v1.task-incompleted
var TaskIncompletedV1 = helper.EventDefinition[TaskIncompletedEvent](
	"task", "TaskIncompleted", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
