package rfid

import (
	"time"

	"github.com/google/uuid"
)

// TagStatus is the enrollment state of a tag.
type TagStatus string

const (
	// StatusEnrolled means the tag is bound to exactly one inventory item.
	StatusEnrolled TagStatus = "ENROLLED"
	// StatusUnassigned means the tag is registered but bound to nothing.
	StatusUnassigned TagStatus = "UNASSIGNED"
	// StatusUnknown means the EPC was seen by a reader but has never been
	// triaged by an operator.
	StatusUnknown TagStatus = "UNKNOWN"
)

// Tag is a physical RFID tag identified by its EPC.
type Tag struct {
	ID              uuid.UUID  `json:"id"`
	EPC             string     `json:"epc"`
	TID             string     `json:"tid,omitempty"`
	Status          TagStatus  `json:"status"`
	InventoryItemID *uuid.UUID `json:"inventory_item_id,omitempty"`
	FirstSeenAt     time.Time  `json:"first_seen_at"`
	LastSeenAt      time.Time  `json:"last_seen_at"`
	DetectionCount  int64      `json:"detection_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Joined fields (not always populated).
	ItemSerial  string `json:"item_serial,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

// Detection is one reader sighting of a tag.
type Detection struct {
	ID         uuid.UUID `json:"id"`
	TagID      uuid.UUID `json:"tag_id"`
	EPC        string    `json:"epc"`
	DetectedAt time.Time `json:"detected_at"`
}
