package quotes

import (
	"context"

	"github.com/google/uuid"
)

// ProductInfo is the slice of a catalog product that pricing needs.
type ProductInfo struct {
	Name      string
	UnitPrice float64
	IsActive  bool
}

// Repository defines quote data storage. Create inserts the header and
// all lines in one transaction.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	List(ctx context.Context, clientID uuid.UUID, status QuoteStatus) ([]*Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status QuoteStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error)
	GetGroupName(ctx context.Context, id uuid.UUID) (string, error)
}
