package groups

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines group and membership storage.
type Repository interface {
	CreateGroup(ctx context.Context, g *Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
	UpdateGroup(ctx context.Context, g *Group) error
	// DeleteGroup removes the group and its membership rows. Inventory
	// items themselves are never touched.
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	AddItem(ctx context.Context, gi *GroupItem) error
	RemoveItem(ctx context.Context, groupID, itemID uuid.UUID) error
	ListItems(ctx context.Context, groupID uuid.UUID) ([]*GroupItem, error)
}
