package suppliers

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines supplier data storage.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	List(ctx context.Context, kind string, activeOnly bool) ([]*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
