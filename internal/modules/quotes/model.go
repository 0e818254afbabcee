package quotes

import (
	"time"

	"github.com/google/uuid"
)

// QuoteStatus represents the lifecycle state of a quotation.
type QuoteStatus string

const (
	StatusDraft    QuoteStatus = "DRAFT"
	StatusSent     QuoteStatus = "SENT"
	StatusAccepted QuoteStatus = "ACCEPTED"
	StatusRejected QuoteStatus = "REJECTED"
	StatusExpired  QuoteStatus = "EXPIRED"
)

// LineKind indicates what a quote line refers to.
type LineKind string

const (
	LineProduct LineKind = "PRODUCT"
	LineGroup   LineKind = "GROUP"
	LineCustom  LineKind = "CUSTOM"
)

// Quote is a priced offer to a client, optionally tied to a project.
type Quote struct {
	ID          uuid.UUID   `json:"id"`
	ClientID    uuid.UUID   `json:"client_id"`
	ProjectID   *uuid.UUID  `json:"project_id,omitempty"`
	QuoteNumber string      `json:"quote_number"`
	Status      QuoteStatus `json:"status"`
	Currency    string      `json:"currency"`
	Subtotal    float64     `json:"subtotal"`
	Tax         float64     `json:"tax"`
	Total       float64     `json:"total"`
	ValidUntil  *time.Time  `json:"valid_until,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Lines       []*Line     `json:"lines,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`

	ClientName string `json:"client_name,omitempty"`
}

// Line is a single priced row in a quote. PRODUCT lines reference the
// catalog, GROUP lines reference an item group, CUSTOM lines stand alone.
type Line struct {
	ID          uuid.UUID  `json:"id"`
	QuoteID     uuid.UUID  `json:"quote_id"`
	Kind        LineKind   `json:"kind"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	GroupID     *uuid.UUID `json:"group_id,omitempty"`
	Description string     `json:"description"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	LineTotal   float64    `json:"line_total"`
	CreatedAt   time.Time  `json:"created_at"`
}
