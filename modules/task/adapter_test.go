package task

import (
	"errors"
	"fmt"
	"testing"

	domain "github.com/example/tasks-api/domain/task"
	"github.com/stretchr/testify/assert"
)

func TestNewTaskAdapter_NilContainer(t *testing.T) {
	assert.Panics(t, func() { NewTaskAdapter(nil) })
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"not found", fmt.Errorf("%w: abc", domain.ErrNotFound), domain.ErrNotFound},
		{"not found from text", errors.New("task not found: 123"), domain.ErrNotFound},
		{"invalid text", errors.New("invalid task text: text is required"), domain.ErrInvalidText},
		{"text too long", errors.New("invalid task text: text too long: max 65536 bytes"), domain.ErrTextTooLong},
		{"invalid id", errors.New("Invalid Task ID: id is required"), domain.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapServiceError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("unknown errors pass through", func(t *testing.T) {
		err := errors.New("failed to list tasks: connection reset")
		got := mapServiceError(err)
		assert.Equal(t, err, got)
		assert.False(t, errors.Is(got, domain.ErrNotFound))
	})
}
