package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/landdesk/api/internal/logger"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
)

// SubmitInquiryInput carries a visitor-submitted contact or evaluation
// request.
type SubmitInquiryInput struct {
	Kind       models.InquiryKind
	Name       string
	Email      string
	Phone      string
	Message    string
	PropertyID *uuid.UUID
}

// InquiryService defines the interface for inquiry submission and triage.
type InquiryService interface {
	// SubmitInquiry records a new inquiry with status new. Public: the only
	// unauthenticated mutation in the system.
	// Returns ErrInvalidKind for an unknown kind, or ErrPropertyNotFound if
	// the referenced property does not exist.
	SubmitInquiry(ctx context.Context, in SubmitInquiryInput) (*models.Inquiry, error)

	// ListInquiries retrieves inquiries matching the filter, for triage.
	ListInquiries(ctx context.Context, filter repository.InquiryFilter) ([]models.Inquiry, error)

	// ChangeStatus advances an inquiry through triage. Closed inquiries
	// cannot be reopened.
	// Returns ErrInquiryNotFound, ErrInvalidStatus, or ErrInvalidTransition.
	ChangeStatus(ctx context.Context, id uuid.UUID, target models.InquiryStatus) (*models.Inquiry, error)
}

// inquiryService is the concrete implementation of InquiryService.
type inquiryService struct {
	repo       repository.InquiryRepository
	properties repository.PropertyRepository
	log        *logger.Logger
}

// NewInquiryService creates a new instance of InquiryService.
func NewInquiryService(repo repository.InquiryRepository, properties repository.PropertyRepository, log *logger.Logger) InquiryService {
	return &inquiryService{
		repo:       repo,
		properties: properties,
		log:        log,
	}
}

// SubmitInquiry validates the optional property reference and records the
// inquiry.
func (s *inquiryService) SubmitInquiry(ctx context.Context, in SubmitInquiryInput) (*models.Inquiry, error) {
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, in.Kind)
	}

	if in.PropertyID != nil {
		property, err := s.properties.GetByID(ctx, *in.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("failed to check property: %w", err)
		}
		if property == nil {
			return nil, ErrPropertyNotFound
		}
	}

	inquiry := &models.Inquiry{
		ID:         uuid.New(),
		Kind:       in.Kind,
		Status:     models.InquiryNew,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Message:    in.Message,
		PropertyID: in.PropertyID,
	}

	if err := s.repo.Create(ctx, inquiry); err != nil {
		s.log.Error("Failed to create inquiry", err, map[string]interface{}{
			"kind": in.Kind,
		})
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	s.log.Info("Inquiry submitted", map[string]interface{}{
		"inquiry_id": inquiry.ID,
		"kind":       inquiry.Kind,
	})

	return inquiry, nil
}

// ListInquiries retrieves inquiries matching the filter.
func (s *inquiryService) ListInquiries(ctx context.Context, filter repository.InquiryFilter) ([]models.Inquiry, error) {
	inquiries, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list inquiries", err, nil)
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, nil
}

// ChangeStatus applies a triage transition after checking it is allowed.
func (s *inquiryService) ChangeStatus(ctx context.Context, id uuid.UUID, target models.InquiryStatus) (*models.Inquiry, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	inquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query inquiry", err, map[string]interface{}{
			"inquiry_id": id,
		})
		return nil, fmt.Errorf("failed to query inquiry: %w", err)
	}
	if inquiry == nil {
		return nil, ErrInquiryNotFound
	}

	if !inquiry.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, inquiry.Status, target)
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, repository.ErrInquiryNotFound) {
			return nil, ErrInquiryNotFound
		}
		s.log.Error("Failed to update inquiry status", err, map[string]interface{}{
			"inquiry_id": id,
			"target":     target,
		})
		return nil, fmt.Errorf("failed to update inquiry status: %w", err)
	}

	s.log.Info("Inquiry status changed", map[string]interface{}{
		"inquiry_id": id,
		"from":       inquiry.Status,
		"to":         target,
	})

	inquiry.Status = target
	return inquiry, nil
}
