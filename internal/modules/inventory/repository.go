package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ItemFilter narrows ListItems.
type ItemFilter struct {
	Status ItemStatus
	Type   ItemType
	Search string // serial number, asset tag, or product name substring
}

// MovementFilter narrows ListMovements.
type MovementFilter struct {
	Type   MovementType
	ItemID *uuid.UUID
	From   *time.Time
	To     *time.Time
	Limit  int
}

// MovementInput describes a transition to apply to an item. AllowedFrom,
// when non-empty, is the guard re-checked on the locked row inside the
// transaction; a mismatch fails with a state error.
type MovementInput struct {
	Type        MovementType
	ToStatus    ItemStatus // ignored for TRANSFER, which keeps the current status
	ToLocation  *string    // nil keeps the current location
	Reason      string
	Reference   string
	PerformedBy *uuid.UUID
	AllowedFrom []ItemStatus
}

// ItemRepository is the registry's storage. CreateItem persists the item and
// its ENROLLMENT movement in one transaction; DeleteItem checks dependents
// and deletes in one transaction.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *InventoryItem, enrollment *InventoryMovement) error
	GetItem(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]*InventoryItem, error)
	ListContents(ctx context.Context, containerID uuid.UUID) ([]*InventoryItem, error)
	UpdateItem(ctx context.Context, item *InventoryItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

// MovementRepository is the ledger's storage. ApplyMovement writes the
// movement and updates the item's current state as one atomic unit.
type MovementRepository interface {
	ApplyMovement(ctx context.Context, itemID uuid.UUID, in MovementInput) (*InventoryMovement, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]*InventoryMovement, error)
}

// SummaryRepository computes the read-only dashboard aggregate.
type SummaryRepository interface {
	Summary(ctx context.Context, recentMovements int) (*Summary, error)
}
