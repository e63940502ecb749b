package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/landdesk/api/internal/logger"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
)

// CreatePropertyInput carries the fields for a new property listing.
type CreatePropertyInput struct {
	Title       string
	ListingType string
	CreatedBy   string
	PriceAmount *float64
	ProjectID   *uuid.UUID
}

// PropertyService defines the interface for property business logic.
// Plot back-pointers are owned by the LinkageService and are read-only here.
type PropertyService interface {
	// CreateProperty creates an unlinked property listing.
	// Returns ErrProjectNotFound if the referenced project does not exist.
	CreateProperty(ctx context.Context, in CreatePropertyInput) (*models.Property, error)

	// GetProperty retrieves a property by id.
	// Returns ErrPropertyNotFound if it does not exist.
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)

	// ListProperties retrieves properties matching the filter.
	ListProperties(ctx context.Context, filter repository.PropertyFilter) ([]models.Property, error)
}

// propertyService is the concrete implementation of PropertyService.
type propertyService struct {
	repo     repository.PropertyRepository
	projects repository.ProjectRepository
	log      *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(repo repository.PropertyRepository, projects repository.ProjectRepository, log *logger.Logger) PropertyService {
	return &propertyService{
		repo:     repo,
		projects: projects,
		log:      log,
	}
}

// CreateProperty validates the project reference and persists a new listing.
func (s *propertyService) CreateProperty(ctx context.Context, in CreatePropertyInput) (*models.Property, error) {
	if in.ProjectID != nil {
		project, err := s.projects.GetByID(ctx, *in.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to check project: %w", err)
		}
		if project == nil {
			return nil, ErrProjectNotFound
		}
	}

	property := &models.Property{
		ID:          uuid.New(),
		Title:       in.Title,
		ListingType: in.ListingType,
		PriceAmount: in.PriceAmount,
		ProjectID:   in.ProjectID,
		CreatedBy:   in.CreatedBy,
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.log.Error("Failed to create property", err, map[string]interface{}{
			"title": in.Title,
		})
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	s.log.Info("Property created", map[string]interface{}{
		"property_id": property.ID,
		"title":       property.Title,
	})

	return property, nil
}

// GetProperty retrieves a property, transforming the repository's nil
// result into a business-level error.
func (s *propertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query property", err, map[string]interface{}{
			"property_id": id,
		})
		return nil, fmt.Errorf("failed to query property: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	return property, nil
}

// ListProperties retrieves properties matching the filter.
func (s *propertyService) ListProperties(ctx context.Context, filter repository.PropertyFilter) ([]models.Property, error) {
	properties, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list properties", err, nil)
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}
