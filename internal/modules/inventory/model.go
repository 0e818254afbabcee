package inventory

import (
	"time"

	"github.com/google/uuid"
)

// ItemType distinguishes serialized units, containers, and bulk stock.
type ItemType string

const (
	TypeUnit      ItemType = "UNIT"
	TypeContainer ItemType = "CONTAINER"
	TypeBulk      ItemType = "BULK"
)

// ValidItemType reports whether t is a known item type.
func ValidItemType(t ItemType) bool {
	switch t {
	case TypeUnit, TypeContainer, TypeBulk:
		return true
	}
	return false
}

// ItemStatus is the current physical state of an item. It always mirrors
// the to_status of the item's most recent movement.
type ItemStatus string

const (
	StatusIn          ItemStatus = "IN"
	StatusOut         ItemStatus = "OUT"
	StatusMaintenance ItemStatus = "MAINTENANCE"
	StatusLost        ItemStatus = "LOST"
)

// ValidItemStatus reports whether s is a known status.
func ValidItemStatus(s ItemStatus) bool {
	switch s {
	case StatusIn, StatusOut, StatusMaintenance, StatusLost:
		return true
	}
	return false
}

// MovementType categorizes ledger entries.
type MovementType string

const (
	MovementCheckIn    MovementType = "CHECK_IN"
	MovementCheckOut   MovementType = "CHECK_OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementEnrollment MovementType = "ENROLLMENT"
	MovementTransfer   MovementType = "TRANSFER"
)

// InventoryItem is a physical or bulk unit of stock.
type InventoryItem struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	SerialNumber   string     `json:"serial_number,omitempty"`
	AssetTag       string     `json:"asset_tag,omitempty"`
	Type           ItemType   `json:"type"`
	Status         ItemStatus `json:"status"`
	Condition      string     `json:"condition,omitempty"`
	Location       string     `json:"location,omitempty"`
	ContainerID    *uuid.UUID `json:"container_id,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice  *float64   `json:"purchase_price,omitempty"`
	WarrantyExpiry *time.Time `json:"warranty_expiry,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Joined fields (not always populated).
	ProductName   string `json:"product_name,omitempty"`
	CategoryName  string `json:"category_name,omitempty"`
	ContainerName string `json:"container_name,omitempty"`
}

// InventoryMovement is one immutable entry in the movement ledger.
type InventoryMovement struct {
	ID              uuid.UUID    `json:"id"`
	InventoryItemID uuid.UUID    `json:"inventory_item_id"`
	Type            MovementType `json:"type"`
	FromStatus      *ItemStatus  `json:"from_status,omitempty"` // nil only for ENROLLMENT
	ToStatus        ItemStatus   `json:"to_status"`
	FromLocation    string       `json:"from_location,omitempty"`
	ToLocation      string       `json:"to_location,omitempty"`
	Reason          string       `json:"reason,omitempty"`
	Reference       string       `json:"reference,omitempty"`
	PerformedBy     *uuid.UUID   `json:"performed_by,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`

	// Joined fields (not always populated).
	SerialNumber string `json:"serial_number,omitempty"`
	ProductName  string `json:"product_name,omitempty"`
}

// CategoryCount is one product-category bucket in the summary.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary is the dashboard aggregate, computed at request time from the
// registry and the ledger.
type Summary struct {
	TotalItems      int                  `json:"total_items"`
	ByStatus        map[ItemStatus]int   `json:"by_status"`
	ByType          map[ItemType]int     `json:"by_type"`
	ByCategory      []CategoryCount      `json:"by_category"`
	RecentMovements []*InventoryMovement `json:"recent_movements"`
}
