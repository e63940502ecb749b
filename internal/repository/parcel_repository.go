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

// Storage-level errors returned by write operations that need to distinguish
// which precondition failed. Services translate these into business errors.
var (
	ErrParcelNotFound   = errors.New("parcel not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrAlreadyLinked    = errors.New("property already linked to parcel")
)

// ParcelFilter narrows List results. Nil fields match everything.
type ParcelFilter struct {
	ProjectID *uuid.UUID
	Status    *models.ParcelStatus
}

// ParcelRepository defines the interface for parcel data access operations.
//
// The linked_property_ids column is intentionally absent from Update: the
// list is mutated only by the LinkageRepository with field-level atomic
// operations, never rewritten from an in-memory copy.
type ParcelRepository interface {
	// Create inserts a new parcel. Timestamps are set by the repository.
	Create(ctx context.Context, parcel *models.Parcel) error

	// GetByID returns the parcel with the given id.
	// Returns nil, nil if no parcel is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.Parcel, error)

	// List returns parcels matching the filter, newest first.
	// Returns an empty slice if none match (not an error).
	List(ctx context.Context, filter ParcelFilter) ([]models.Parcel, error)

	// Update persists a parcel's mutable fields (everything except the
	// linked property list) and propagates a changed parcel number to the
	// plot_number of linked properties in the same transaction.
	// Returns ErrParcelNotFound if the parcel does not exist.
	Update(ctx context.Context, parcel *models.Parcel) error

	// UpdateStatus sets the parcel's status.
	// Returns ErrParcelNotFound if the parcel does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ParcelStatus) error
}

// parcelRepository is the concrete implementation of ParcelRepository.
type parcelRepository struct {
	db *database.Database
}

// NewParcelRepository creates a new instance of ParcelRepository.
func NewParcelRepository(db *database.Database) ParcelRepository {
	return &parcelRepository{
		db: db,
	}
}

// parcelColumns is the select list shared by GetByID and List.
const parcelColumns = `
	id,
	project_id,
	number,
	geometry,
	use_manual_metrics,
	manual_area_sqm,
	manual_perimeter_m,
	dimensions,
	computed_area_sqm,
	computed_perimeter_m,
	area_diff_pct,
	perimeter_diff_pct,
	status,
	linked_property_ids,
	created_by,
	created_at,
	updated_at
`

// Create inserts a new parcel row.
func (r *parcelRepository) Create(ctx context.Context, parcel *models.Parcel) error {
	query := `
		INSERT INTO parcels (
			id, project_id, number, geometry, use_manual_metrics,
			manual_area_sqm, manual_perimeter_m, dimensions,
			computed_area_sqm, computed_perimeter_m,
			area_diff_pct, perimeter_diff_pct,
			status, linked_property_ids, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
	`

	now := time.Now().UTC()
	parcel.CreatedAt = now
	parcel.UpdatedAt = now
	if parcel.LinkedPropertyIDs == nil {
		parcel.LinkedPropertyIDs = []uuid.UUID{}
	}

	_, err := r.db.Pool.Exec(ctx, query,
		parcel.ID,
		parcel.ProjectID,
		parcel.Number,
		parcel.Geometry,
		parcel.UseManualMetrics,
		parcel.ManualAreaSqm,
		parcel.ManualPerimeterM,
		dimensionsArg(parcel.Dimensions),
		parcel.ComputedAreaSqm,
		parcel.ComputedPerimeterM,
		parcel.AreaDiffPct,
		parcel.PerimeterDiffPct,
		parcel.Status,
		parcel.LinkedPropertyIDs,
		parcel.CreatedBy,
		parcel.CreatedAt,
		parcel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert parcel %s: %w", parcel.ID, err)
	}

	return nil
}

// GetByID queries the database for a single parcel.
func (r *parcelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Parcel, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels WHERE id = $1`

	parcel, err := scanParcel(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query parcel %s: %w", id, err)
	}

	return parcel, nil
}

// List queries parcels matching the filter, newest first.
func (r *parcelRepository) List(ctx context.Context, filter ParcelFilter) ([]models.Parcel, error) {
	query := `SELECT ` + parcelColumns + ` FROM parcels`

	var (
		clauses []string
		args    []interface{}
	)
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
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
		return nil, fmt.Errorf("failed to query parcels: %w", err)
	}
	defer rows.Close()

	parcels := []models.Parcel{}
	for rows.Next() {
		parcel, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parcel row: %w", err)
		}
		parcels = append(parcels, *parcel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel rows: %w", err)
	}

	return parcels, nil
}

// Update persists all parcel fields except the linked property list, and
// refreshes plot_number on linked properties so the denormalized display
// copy never diverges from the parcel's own number.
func (r *parcelRepository) Update(ctx context.Context, parcel *models.Parcel) error {
	parcel.UpdatedAt = time.Now().UTC()

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE parcels SET
				project_id = $2,
				number = $3,
				geometry = $4,
				use_manual_metrics = $5,
				manual_area_sqm = $6,
				manual_perimeter_m = $7,
				dimensions = $8,
				computed_area_sqm = $9,
				computed_perimeter_m = $10,
				area_diff_pct = $11,
				perimeter_diff_pct = $12,
				status = $13,
				updated_at = $14
			WHERE id = $1
		`

		tag, err := tx.Exec(ctx, query,
			parcel.ID,
			parcel.ProjectID,
			parcel.Number,
			parcel.Geometry,
			parcel.UseManualMetrics,
			parcel.ManualAreaSqm,
			parcel.ManualPerimeterM,
			dimensionsArg(parcel.Dimensions),
			parcel.ComputedAreaSqm,
			parcel.ComputedPerimeterM,
			parcel.AreaDiffPct,
			parcel.PerimeterDiffPct,
			parcel.Status,
			parcel.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update parcel %s: %w", parcel.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrParcelNotFound
		}

		_, err = tx.Exec(ctx,
			`UPDATE properties SET plot_number = $2, updated_at = $3 WHERE plot_id = $1`,
			parcel.ID, parcel.Number, parcel.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to propagate parcel number %s: %w", parcel.ID, err)
		}

		return nil
	})
}

// UpdateStatus sets the parcel's status. Transition legality is checked by
// the service before calling.
func (r *parcelRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ParcelStatus) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE parcels SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update parcel status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrParcelNotFound
	}
	return nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanParcel reads one parcel row, decoding the JSONB geometry and
// dimensions columns through their sql.Scanner implementations.
func scanParcel(row rowScanner) (*models.Parcel, error) {
	var (
		parcel   models.Parcel
		geomJSON []byte
		dimsJSON []byte
	)

	err := row.Scan(
		&parcel.ID,
		&parcel.ProjectID,
		&parcel.Number,
		&geomJSON,
		&parcel.UseManualMetrics,
		&parcel.ManualAreaSqm,
		&parcel.ManualPerimeterM,
		&dimsJSON,
		&parcel.ComputedAreaSqm,
		&parcel.ComputedPerimeterM,
		&parcel.AreaDiffPct,
		&parcel.PerimeterDiffPct,
		&parcel.Status,
		&parcel.LinkedPropertyIDs,
		&parcel.CreatedBy,
		&parcel.CreatedAt,
		&parcel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(geomJSON) > 0 {
		if err := parcel.Geometry.Scan(geomJSON); err != nil {
			return nil, fmt.Errorf("failed to parse geometry for parcel %s: %w", parcel.ID, err)
		}
	}
	if len(dimsJSON) > 0 {
		dims := &models.Dimensions{}
		if err := dims.Scan(dimsJSON); err != nil {
			return nil, fmt.Errorf("failed to parse dimensions for parcel %s: %w", parcel.ID, err)
		}
		parcel.Dimensions = dims
	}
	if parcel.LinkedPropertyIDs == nil {
		parcel.LinkedPropertyIDs = []uuid.UUID{}
	}

	return &parcel, nil
}

// dimensionsArg avoids handing pgx a typed nil pointer.
func dimensionsArg(d *models.Dimensions) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
