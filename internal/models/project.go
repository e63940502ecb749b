package models

import (
	"time"

	"github.com/google/uuid"
)

// Project groups parcels and properties under a single development.
type Project struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	ID          uuid.UUID `json:"id"`
}
