package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/landdesk/api/internal/geometry"
	"github.com/landdesk/api/internal/logger"
	"github.com/landdesk/api/internal/metrics"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
)

// Service-level errors
var (
	ErrParcelNotFound    = errors.New("parcel not found")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrInquiryNotFound   = errors.New("inquiry not found")
	ErrAlreadyLinked     = errors.New("property is already linked to this parcel")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidKind       = errors.New("invalid inquiry kind")
	ErrInvalidGeometry   = geometry.ErrInvalidGeometry
)

// CreateParcelInput carries the operator-supplied fields for a new parcel.
type CreateParcelInput struct {
	Number           string
	CreatedBy        string
	ProjectID        *uuid.UUID
	Geometry         models.Ring
	Dimensions       *models.Dimensions
	ManualAreaSqm    *float64
	ManualPerimeterM *float64
	UseManualMetrics bool
}

// UpdateParcelMetricsInput carries a partial metrics edit. Nil fields are
// left unchanged; the Clear flags remove the corresponding inputs.
// ClearGeometry wins over a supplied Geometry.
type UpdateParcelMetricsInput struct {
	Number           *string
	Geometry         *models.Ring
	Dimensions       *models.Dimensions
	ManualAreaSqm    *float64
	ManualPerimeterM *float64
	UseManualMetrics *bool
	ClearGeometry    bool
	ClearManual      bool
}

// ParcelService defines the interface for parcel business logic operations.
type ParcelService interface {
	// CreateParcel creates a parcel with status available, resolving its
	// metrics from geometry and manual inputs.
	// Returns ErrProjectNotFound or ErrInvalidGeometry.
	CreateParcel(ctx context.Context, in CreateParcelInput) (*models.Parcel, error)

	// GetParcel retrieves a parcel by id.
	// Returns ErrParcelNotFound if it does not exist.
	GetParcel(ctx context.Context, id uuid.UUID) (*models.Parcel, error)

	// ListParcels retrieves parcels matching the filter.
	ListParcels(ctx context.Context, filter repository.ParcelFilter) ([]models.Parcel, error)

	// UpdateMetrics applies a partial metrics edit and re-resolves the
	// parcel's computed figures and deltas before persisting, so the stored
	// delta is never stale relative to its inputs.
	// Returns ErrParcelNotFound or ErrInvalidGeometry.
	UpdateMetrics(ctx context.Context, id uuid.UUID, in UpdateParcelMetricsInput) (*models.Parcel, error)

	// ChangeStatus transitions the parcel's sales state.
	// Returns ErrParcelNotFound, ErrInvalidStatus, or ErrInvalidTransition.
	ChangeStatus(ctx context.Context, id uuid.UUID, target models.ParcelStatus) (*models.Parcel, error)

	// FleetStats aggregates authoritative areas over parcels, optionally
	// restricted to one project.
	FleetStats(ctx context.Context, projectID *uuid.UUID) (metrics.FleetStats, error)
}

// parcelService is the concrete implementation of ParcelService.
type parcelService struct {
	repo     repository.ParcelRepository
	projects repository.ProjectRepository
	log      *logger.Logger
}

// NewParcelService creates a new instance of ParcelService.
func NewParcelService(repo repository.ParcelRepository, projects repository.ProjectRepository, log *logger.Logger) ParcelService {
	return &parcelService{
		repo:     repo,
		projects: projects,
		log:      log,
	}
}

// CreateParcel validates references, resolves metrics, and persists a new
// parcel with status available.
func (s *parcelService) CreateParcel(ctx context.Context, in CreateParcelInput) (*models.Parcel, error) {
	if in.ProjectID != nil {
		project, err := s.projects.GetByID(ctx, *in.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to check project: %w", err)
		}
		if project == nil {
			return nil, ErrProjectNotFound
		}
	}

	parcel := &models.Parcel{
		ID:               uuid.New(),
		Number:           in.Number,
		ProjectID:        in.ProjectID,
		Geometry:         in.Geometry,
		Dimensions:       in.Dimensions,
		ManualAreaSqm:    in.ManualAreaSqm,
		ManualPerimeterM: in.ManualPerimeterM,
		UseManualMetrics: in.UseManualMetrics,
		Status:           models.StatusAvailable,
		CreatedBy:        in.CreatedBy,
	}

	if err := resolveParcelMetrics(parcel); err != nil {
		s.log.Warn("Rejected parcel geometry", map[string]interface{}{
			"number": in.Number,
			"points": len(in.Geometry),
		})
		return nil, err
	}

	if err := s.repo.Create(ctx, parcel); err != nil {
		s.log.Error("Failed to create parcel", err, map[string]interface{}{
			"number": in.Number,
		})
		return nil, fmt.Errorf("failed to create parcel: %w", err)
	}

	s.log.Info("Parcel created", map[string]interface{}{
		"parcel_id": parcel.ID,
		"number":    parcel.Number,
	})

	return parcel, nil
}

// GetParcel retrieves a parcel, transforming the repository's nil result
// into a business-level error.
func (s *parcelService) GetParcel(ctx context.Context, id uuid.UUID) (*models.Parcel, error) {
	parcel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query parcel", err, map[string]interface{}{
			"parcel_id": id,
		})
		return nil, fmt.Errorf("failed to query parcel: %w", err)
	}
	if parcel == nil {
		return nil, ErrParcelNotFound
	}
	return parcel, nil
}

// ListParcels retrieves parcels matching the filter.
func (s *parcelService) ListParcels(ctx context.Context, filter repository.ParcelFilter) ([]models.Parcel, error) {
	parcels, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list parcels", err, nil)
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}
	return parcels, nil
}

// UpdateMetrics re-reads the parcel, applies the edit, re-resolves metrics,
// and persists the result.
func (s *parcelService) UpdateMetrics(ctx context.Context, id uuid.UUID, in UpdateParcelMetricsInput) (*models.Parcel, error) {
	parcel, err := s.GetParcel(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Number != nil {
		parcel.Number = *in.Number
	}
	if in.ClearGeometry {
		parcel.Geometry = nil
	} else if in.Geometry != nil {
		parcel.Geometry = *in.Geometry
	}
	if in.ClearManual {
		parcel.ManualAreaSqm = nil
		parcel.ManualPerimeterM = nil
	} else {
		if in.ManualAreaSqm != nil {
			parcel.ManualAreaSqm = in.ManualAreaSqm
		}
		if in.ManualPerimeterM != nil {
			parcel.ManualPerimeterM = in.ManualPerimeterM
		}
	}
	if in.UseManualMetrics != nil {
		parcel.UseManualMetrics = *in.UseManualMetrics
	}
	if in.Dimensions != nil {
		parcel.Dimensions = in.Dimensions
	}

	if err := resolveParcelMetrics(parcel); err != nil {
		s.log.Warn("Rejected parcel geometry", map[string]interface{}{
			"parcel_id": id,
		})
		return nil, err
	}

	if err := s.repo.Update(ctx, parcel); err != nil {
		if errors.Is(err, repository.ErrParcelNotFound) {
			return nil, ErrParcelNotFound
		}
		s.log.Error("Failed to update parcel", err, map[string]interface{}{
			"parcel_id": id,
		})
		return nil, fmt.Errorf("failed to update parcel: %w", err)
	}

	s.log.Info("Parcel metrics updated", map[string]interface{}{
		"parcel_id":     parcel.ID,
		"computed_area": parcel.ComputedAreaSqm,
		"manual_area":   parcel.ManualAreaSqm,
		"area_diff_pct": parcel.AreaDiffPct,
	})

	return parcel, nil
}

// ChangeStatus applies a sales-state transition after checking it is
// allowed from the parcel's current state. Status is independent of linkage:
// a parcel may be sold with zero linked properties.
func (s *parcelService) ChangeStatus(ctx context.Context, id uuid.UUID, target models.ParcelStatus) (*models.Parcel, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	parcel, err := s.GetParcel(ctx, id)
	if err != nil {
		return nil, err
	}

	if !parcel.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, parcel.Status, target)
	}

	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		if errors.Is(err, repository.ErrParcelNotFound) {
			return nil, ErrParcelNotFound
		}
		s.log.Error("Failed to update parcel status", err, map[string]interface{}{
			"parcel_id": id,
			"target":    target,
		})
		return nil, fmt.Errorf("failed to update parcel status: %w", err)
	}

	s.log.Info("Parcel status changed", map[string]interface{}{
		"parcel_id": id,
		"from":      parcel.Status,
		"to":        target,
	})

	parcel.Status = target
	return parcel, nil
}

// FleetStats lists the matching parcels and aggregates their authoritative
// areas with the same resolution rule used per parcel.
func (s *parcelService) FleetStats(ctx context.Context, projectID *uuid.UUID) (metrics.FleetStats, error) {
	parcels, err := s.repo.List(ctx, repository.ParcelFilter{ProjectID: projectID})
	if err != nil {
		s.log.Error("Failed to list parcels for stats", err, nil)
		return metrics.FleetStats{}, fmt.Errorf("failed to list parcels: %w", err)
	}

	return metrics.Aggregate(parcels), nil
}

// resolveParcelMetrics recomputes the derived metric fields on the parcel:
// geometry-derived figures, then the authoritative-vs-manual deltas. Called
// on every create and metrics edit so the persisted figures are never stale.
func resolveParcelMetrics(parcel *models.Parcel) error {
	parcel.ComputedAreaSqm = nil
	parcel.ComputedPerimeterM = nil

	if len(parcel.Geometry) > 0 {
		m, err := geometry.Evaluate(parcel.Geometry)
		if err != nil {
			return fmt.Errorf("failed to evaluate parcel geometry: %w", err)
		}
		parcel.ComputedAreaSqm = &m.AreaSqm
		parcel.ComputedPerimeterM = &m.PerimeterM
	}

	res := metrics.Resolve(metrics.FromParcel(parcel))
	parcel.AreaDiffPct = res.AreaDiffPct
	parcel.PerimeterDiffPct = res.PerimeterDiffPct

	return nil
}
