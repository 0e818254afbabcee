package suppliers

import (
	"time"

	"github.com/google/uuid"
)

// Supplier kinds.
const (
	KindSupplier   = "SUPPLIER"
	KindContractor = "CONTRACTOR"
)

// Supplier represents an external provider of goods or labor.
type Supplier struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	ContactName string    `json:"contact_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	TaxID       string    `json:"tax_id"`
	Notes       string    `json:"notes"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
