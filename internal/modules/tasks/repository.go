package tasks

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows task listings.
type Filter struct {
	ProjectID  uuid.UUID
	AssigneeID uuid.UUID
	Status     string
	Priority   string
}

// Repository defines task data storage.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, f Filter) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}
