package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for task operations.
var (
	// ErrNotFound is returned when no task has the requested ID.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidText is returned when task text is missing or blank.
	ErrInvalidText = errors.New("invalid task text")

	// ErrTextTooLong is returned when task text exceeds MaxTextLength.
	// It wraps ErrInvalidText.
	ErrTextTooLong = fmt.Errorf("%w: text too long", ErrInvalidText)

	// ErrInvalidID is returned when a task ID is malformed.
	ErrInvalidID = errors.New("invalid task id")
)
