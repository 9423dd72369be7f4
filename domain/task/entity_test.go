package task

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	task := New("id-1", "buy milk", now)

	assert.Equal(t, "id-1", task.ID)
	assert.Equal(t, "buy milk", task.Text)
	assert.False(t, task.Completed)
	assert.Equal(t, int64(1700000000123), task.CreatedDate)
	assert.Nil(t, task.CompletedDate)
}

func TestTask_CompleteThenIncomplete(t *testing.T) {
	created := time.UnixMilli(1000)
	task := New("id-1", "buy milk", created)

	task.Complete(time.UnixMilli(2000))
	require.True(t, task.Completed)
	require.NotNil(t, task.CompletedDate)
	assert.Equal(t, int64(2000), *task.CompletedDate)

	// Completing again refreshes the completion date
	task.Complete(time.UnixMilli(3000))
	assert.Equal(t, int64(3000), *task.CompletedDate)

	task.Incomplete()
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedDate)
	assert.Equal(t, int64(1000), task.CreatedDate)
}

func TestTask_SetCompleted(t *testing.T) {
	task := New("id-1", "x", time.UnixMilli(1))

	task.SetCompleted(true, time.UnixMilli(5))
	assert.True(t, task.Completed)
	assert.Equal(t, int64(5), *task.CompletedDate)

	task.SetCompleted(false, time.UnixMilli(6))
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedDate)
}

func TestTask_Clone(t *testing.T) {
	task := New("id-1", "x", time.UnixMilli(1))
	task.Complete(time.UnixMilli(2))

	clone := task.Clone()
	*clone.CompletedDate = 99
	clone.Text = "changed"

	assert.Equal(t, int64(2), *task.CompletedDate)
	assert.Equal(t, "x", task.Text)
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "plain text", text: "buy milk"},
		{name: "padded text", text: "  buy milk  "},
		{name: "empty", text: "", wantErr: true},
		{name: "whitespace only", text: " \t\n", wantErr: true},
		{name: "max length", text: strings.Repeat("a", MaxTextLength)},
		{name: "too long", text: strings.Repeat("a", MaxTextLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.text)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidText), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateText_TooLong(t *testing.T) {
	err := ValidateText(strings.Repeat("x", MaxTextLength+1))
	assert.ErrorIs(t, err, ErrTextTooLong)
	assert.ErrorIs(t, err, ErrInvalidText)

	assert.NotErrorIs(t, ValidateText(""), ErrTextTooLong)
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "uuid", id: "6f1c1d9e-8d44-4c55-9d59-3f0e5b1f7a10"},
		{name: "arbitrary token", id: "does-not-exist"},
		{name: "empty", id: "", wantErr: true},
		{name: "blank", id: "   ", wantErr: true},
		{name: "inner space", id: "a b", wantErr: true},
		{name: "control char", id: "a\x00b", wantErr: true},
		{name: "too long", id: strings.Repeat("a", MaxIDLength+1), wantErr: true},
		{name: "max length", id: strings.Repeat("a", MaxIDLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidID), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
