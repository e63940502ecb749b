package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/landdesk/api/internal/database"
	"github.com/landdesk/api/internal/models"
)

// PropertyFilter narrows List results. Nil fields match everything.
type PropertyFilter struct {
	ProjectID *uuid.UUID
	PlotID    *uuid.UUID
}

// PropertyRepository defines the interface for property data access.
// The plot_id/plot_number back-pointers are written only by the
// LinkageRepository and the parcel number propagation in ParcelRepository.
type PropertyRepository interface {
	// Create inserts a new property. Timestamps are set by the repository.
	Create(ctx context.Context, property *models.Property) error

	// GetByID returns the property with the given id.
	// Returns nil, nil if no property is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)

	// List returns properties matching the filter, newest first.
	List(ctx context.Context, filter PropertyFilter) ([]models.Property, error)
}

// propertyRepository is the concrete implementation of PropertyRepository.
type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a new instance of PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{
		db: db,
	}
}

const propertyColumns = `
	id,
	project_id,
	plot_id,
	plot_number,
	title,
	listing_type,
	price,
	created_by,
	created_at,
	updated_at
`

// Create inserts a new property row. New properties start unlinked; the
// linkage manager owns plot_id/plot_number.
func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (
			id, project_id, title, listing_type, price, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now

	_, err := r.db.Pool.Exec(ctx, query,
		property.ID,
		property.ProjectID,
		property.Title,
		property.ListingType,
		property.PriceAmount,
		property.CreatedBy,
		property.CreatedAt,
		property.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert property %s: %w", property.ID, err)
	}

	return nil
}

// GetByID queries the database for a single property.
func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	var property models.Property
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&property.ID,
		&property.ProjectID,
		&property.PlotID,
		&property.PlotNumber,
		&property.Title,
		&property.ListingType,
		&property.PriceAmount,
		&property.CreatedBy,
		&property.CreatedAt,
		&property.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query property %s: %w", id, err)
	}

	return &property, nil
}

// List queries properties matching the filter, newest first.
func (r *propertyRepository) List(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties`

	var (
		clauses []string
		args    []interface{}
	)
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.PlotID != nil {
		args = append(args, *filter.PlotID)
		clauses = append(clauses, fmt.Sprintf("plot_id = $%d", len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		var property models.Property
		err := rows.Scan(
			&property.ID,
			&property.ProjectID,
			&property.PlotID,
			&property.PlotNumber,
			&property.Title,
			&property.ListingType,
			&property.PriceAmount,
			&property.CreatedBy,
			&property.CreatedAt,
			&property.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}

	return properties, nil
}
