package models

import (
	"time"

	"github.com/google/uuid"
)

// ParcelStatus is the sales state of a parcel.
type ParcelStatus string

const (
	StatusAvailable ParcelStatus = "available"
	StatusReserved  ParcelStatus = "reserved"
	StatusSold      ParcelStatus = "sold"
)

// Valid reports whether the status is one of the known states.
func (s ParcelStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusSold:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from s to target is allowed.
// Allowed: available→reserved, available→sold, reserved→sold,
// reserved→available (cancellation). Sold is terminal.
func (s ParcelStatus) CanTransitionTo(target ParcelStatus) bool {
	switch s {
	case StatusAvailable:
		return target == StatusReserved || target == StatusSold
	case StatusReserved:
		return target == StatusAvailable || target == StatusSold
	}
	return false
}

// Parcel represents a surveyed or planned subdivision of land.
// All nullable fields use pointers to distinguish between zero values and NULL.
//
// ComputedAreaSqm/ComputedPerimeterM and the diff percentages are derived
// fields, re-resolved whenever geometry, manual figures, or the manual-first
// flag change, and persisted so aggregate queries can sum them directly.
// LinkedPropertyIDs is mutated only through the linkage repository, never by
// a whole-row update.
type Parcel struct {
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	Number             string       `json:"number"`
	CreatedBy          string       `json:"createdBy"`
	Status             ParcelStatus `json:"status"`
	Geometry           Ring         `json:"geometry,omitempty"`
	Dimensions         *Dimensions  `json:"dimensions,omitempty"`
	ManualAreaSqm      *float64     `json:"manualAreaSqm,omitempty"`
	ManualPerimeterM   *float64     `json:"manualPerimeterM,omitempty"`
	ComputedAreaSqm    *float64     `json:"computedAreaSqm,omitempty"`
	ComputedPerimeterM *float64     `json:"computedPerimeterM,omitempty"`
	AreaDiffPct        *float64     `json:"areaDiffPct,omitempty"`
	PerimeterDiffPct   *float64     `json:"perimeterDiffPct,omitempty"`
	ProjectID          *uuid.UUID   `json:"projectId,omitempty"`
	LinkedPropertyIDs  []uuid.UUID  `json:"linkedPropertyIds"`
	ID                 uuid.UUID    `json:"id"`
	UseManualMetrics   bool         `json:"useManualMetrics"`
}

// IsLinked reports whether the given property id is in the parcel's list.
func (p *Parcel) IsLinked(propertyID uuid.UUID) bool {
	for _, id := range p.LinkedPropertyIDs {
		if id == propertyID {
			return true
		}
	}
	return false
}
