package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/landdesk/api/internal/logger"
	"github.com/landdesk/api/internal/repository"
)

// LinkageService maintains the parcel↔property association. Both sides are
// written transactionally by the repository; this layer re-checks nothing in
// memory, so a retried operation re-reads current state at the storage layer
// and remains safe.
type LinkageService interface {
	// Link associates a property with a parcel. A property already linked
	// to a different parcel is moved, not duplicated. Linking a property
	// that is already linked to this parcel fails with ErrAlreadyLinked.
	// Returns ErrParcelNotFound, ErrPropertyNotFound, or ErrAlreadyLinked.
	Link(ctx context.Context, parcelID, propertyID uuid.UUID) error

	// Unlink removes the association. Unlinking a property that is not
	// linked to the parcel is a no-op, not an error.
	// Returns ErrParcelNotFound or ErrPropertyNotFound.
	Unlink(ctx context.Context, parcelID, propertyID uuid.UUID) error
}

// linkageService is the concrete implementation of LinkageService.
type linkageService struct {
	repo repository.LinkageRepository
	log  *logger.Logger
}

// NewLinkageService creates a new instance of LinkageService.
func NewLinkageService(repo repository.LinkageRepository, log *logger.Logger) LinkageService {
	return &linkageService{
		repo: repo,
		log:  log,
	}
}

// Link associates a property with a parcel.
func (s *linkageService) Link(ctx context.Context, parcelID, propertyID uuid.UUID) error {
	err := s.repo.Link(ctx, parcelID, propertyID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrParcelNotFound):
			return ErrParcelNotFound
		case errors.Is(err, repository.ErrPropertyNotFound):
			return ErrPropertyNotFound
		case errors.Is(err, repository.ErrAlreadyLinked):
			return ErrAlreadyLinked
		}
		s.log.Error("Failed to link property", err, map[string]interface{}{
			"parcel_id":   parcelID,
			"property_id": propertyID,
		})
		return fmt.Errorf("failed to link property: %w", err)
	}

	s.log.Info("Property linked to parcel", map[string]interface{}{
		"parcel_id":   parcelID,
		"property_id": propertyID,
	})

	return nil
}

// Unlink removes the association between a parcel and a property.
func (s *linkageService) Unlink(ctx context.Context, parcelID, propertyID uuid.UUID) error {
	err := s.repo.Unlink(ctx, parcelID, propertyID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrParcelNotFound):
			return ErrParcelNotFound
		case errors.Is(err, repository.ErrPropertyNotFound):
			return ErrPropertyNotFound
		}
		s.log.Error("Failed to unlink property", err, map[string]interface{}{
			"parcel_id":   parcelID,
			"property_id": propertyID,
		})
		return fmt.Errorf("failed to unlink property: %w", err)
	}

	s.log.Info("Property unlinked from parcel", map[string]interface{}{
		"parcel_id":   parcelID,
		"property_id": propertyID,
	})

	return nil
}
