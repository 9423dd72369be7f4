package task

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// MaxIDLength bounds the size of a task ID accepted from callers.
const MaxIDLength = 128

// MaxTextLength bounds the size of task text in bytes. A single task,
// JSON encoded with worst-case escaping, stays well under the 1 MB
// message limit of the embedded NATS server.
const MaxTextLength = 64 << 10

// Task is the core domain entity representing a todo item.
// Dates are epoch milliseconds.
type Task struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Completed     bool   `json:"completed"`
	CreatedDate   int64  `json:"createdDate"`
	CompletedDate *int64 `json:"completedDate"`
}

// New creates a pending task created at now.
func New(id, text string, now time.Time) *Task {
	return &Task{
		ID:          id,
		Text:        text,
		CreatedDate: now.UnixMilli(),
	}
}

// Complete marks the task completed at now. Completing an already
// completed task refreshes CompletedDate.
func (t *Task) Complete(now time.Time) {
	ms := now.UnixMilli()
	t.Completed = true
	t.CompletedDate = &ms
}

// Incomplete marks the task as not completed and clears CompletedDate.
func (t *Task) Incomplete() {
	t.Completed = false
	t.CompletedDate = nil
}

// SetCompleted applies Complete or Incomplete.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	if completed {
		t.Complete(now)
		return
	}
	t.Incomplete()
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedDate != nil {
		ms := *t.CompletedDate
		c.CompletedDate = &ms
	}
	return &c
}

// ValidateText checks that text has visible content and is at most
// MaxTextLength bytes.
func ValidateText(text string) error {
	if len(text) > MaxTextLength {
		return fmt.Errorf("%w: max %d bytes", ErrTextTooLong, MaxTextLength)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidText)
	}
	return nil
}

// ValidateID checks that id is usable as a task key.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidID)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: id exceeds %d bytes", ErrInvalidID, MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: id contains whitespace or control characters", ErrInvalidID)
		}
	}
	return nil
}
