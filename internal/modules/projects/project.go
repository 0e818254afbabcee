package projects

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses.
const (
	StatusPlanned   = "PLANNED"
	StatusActive    = "ACTIVE"
	StatusOnHold    = "ON_HOLD"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

func validStatus(s string) bool {
	switch s {
	case StatusPlanned, StatusActive, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Project represents an engagement performed for a client.
type Project struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    uuid.UUID  `json:"client_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Notes       string     `json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	ClientName string `json:"client_name,omitempty"`
}
