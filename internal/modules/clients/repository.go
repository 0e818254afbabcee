package clients

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines client data storage.
type Repository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context, search string, activeOnly bool) ([]*Client, error)
	Update(ctx context.Context, c *Client) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
