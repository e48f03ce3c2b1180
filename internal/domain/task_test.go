package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	ownerID := uuid.New()

	task, err := NewTask(ownerID, "  buy milk  ", false)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, "buy milk", task.Description)
	assert.False(t, task.Completed)
	assert.Equal(t, ownerID, task.OwnerID)

	_, err = NewTask(ownerID, "   ", false)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = NewTask(uuid.Nil, "buy milk", false)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestTaskApplyPatch(t *testing.T) {
	task, err := NewTask(uuid.New(), "buy milk", false)
	require.NoError(t, err)

	done := true
	updated, err := task.ApplyPatch(TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Description)
	assert.False(t, task.Completed, "receiver is not modified")
	assert.Equal(t, task.OwnerID, updated.OwnerID)

	blank := "  "
	_, err = task.ApplyPatch(TaskPatch{Description: &blank, Completed: &done})
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, task.Completed)
}
