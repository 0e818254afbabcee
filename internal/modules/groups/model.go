package groups

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named bundle of inventory items quoted or rented as one package.
type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ItemCount   int64     `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GroupItem is one membership row. An item appears at most once per group.
type GroupItem struct {
	ID              uuid.UUID `json:"id"`
	GroupID         uuid.UUID `json:"group_id"`
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	Quantity        int       `json:"quantity"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined item summary.
	ItemSerial  string `json:"item_serial,omitempty"`
	ItemStatus  string `json:"item_status,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}
