package models

import (
	"time"

	"github.com/google/uuid"
)

// InquiryKind distinguishes general contact requests from property
// evaluation requests.
type InquiryKind string

const (
	InquiryContact    InquiryKind = "contact"
	InquiryEvaluation InquiryKind = "evaluation"
)

// Valid reports whether the kind is one of the known kinds.
func (k InquiryKind) Valid() bool {
	return k == InquiryContact || k == InquiryEvaluation
}

// InquiryStatus is the triage state of an inquiry.
type InquiryStatus string

const (
	InquiryNew        InquiryStatus = "new"
	InquiryInProgress InquiryStatus = "in_progress"
	InquiryClosed     InquiryStatus = "closed"
)

// Valid reports whether the status is one of the known states.
func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryNew, InquiryInProgress, InquiryClosed:
		return true
	}
	return false
}

// CanTransitionTo reports whether a triage transition is allowed.
// Closed inquiries cannot be reopened.
func (s InquiryStatus) CanTransitionTo(target InquiryStatus) bool {
	switch s {
	case InquiryNew:
		return target == InquiryInProgress || target == InquiryClosed
	case InquiryInProgress:
		return target == InquiryClosed
	}
	return false
}

// Inquiry is a visitor-submitted contact or evaluation request, triaged by
// back-office staff.
type Inquiry struct {
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	Kind       InquiryKind   `json:"kind"`
	Status     InquiryStatus `json:"status"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone,omitempty"`
	Message    string        `json:"message,omitempty"`
	PropertyID *uuid.UUID    `json:"propertyId,omitempty"`
	ID         uuid.UUID     `json:"id"`
}
