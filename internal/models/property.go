package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing types for properties.
const (
	ListingSale = "sale"
	ListingRent = "rent"
)

// Property represents a sellable or rentable unit, optionally situated on a
// parcel. PlotID and PlotNumber are denormalized back-pointers owned by the
// linkage manager; PlotNumber is a display copy of the linked parcel's number
// and is never edited independently.
type Property struct {
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Title       string     `json:"title"`
	ListingType string     `json:"listingType"`
	CreatedBy   string     `json:"createdBy"`
	PlotNumber  *string    `json:"plotNumber,omitempty"`
	PriceAmount *float64   `json:"price,omitempty"`
	ProjectID   *uuid.UUID `json:"projectId,omitempty"`
	PlotID      *uuid.UUID `json:"plotId,omitempty"`
	ID          uuid.UUID  `json:"id"`
}
