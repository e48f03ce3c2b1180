package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a to-do item owned by exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a validated task for ownerID. The description is trimmed.
func NewTask(ownerID uuid.UUID, description string, completed bool) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Description: strings.TrimSpace(description),
		Completed:   completed,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the task invariants.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if t.OwnerID == uuid.Nil {
		return NewValidationError("owner", "is required", ErrInvalidID)
	}
	if t.Description == "" {
		return NewValidationError("description", "is required", ErrEmptyContent)
	}
	return nil
}

// TaskPatch lists the task fields an owner may change.
type TaskPatch struct {
	Description *string
	Completed   *bool
}

// ApplyPatch returns a validated copy of t with the patch applied.
func (t *Task) ApplyPatch(p TaskPatch) (*Task, error) {
	updated := *t
	if p.Description != nil {
		updated.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		updated.Completed = *p.Completed
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}
