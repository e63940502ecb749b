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

// ErrInquiryNotFound is returned by inquiry write operations when the
// referenced inquiry does not exist.
var ErrInquiryNotFound = errors.New("inquiry not found")

// InquiryFilter narrows List results. Nil fields match everything.
type InquiryFilter struct {
	Status *models.InquiryStatus
	Kind   *models.InquiryKind
}

// InquiryRepository defines the interface for inquiry data access.
type InquiryRepository interface {
	// Create inserts a new inquiry. Timestamps are set by the repository.
	Create(ctx context.Context, inquiry *models.Inquiry) error

	// GetByID returns the inquiry with the given id.
	// Returns nil, nil if no inquiry is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)

	// List returns inquiries matching the filter, newest first.
	List(ctx context.Context, filter InquiryFilter) ([]models.Inquiry, error)

	// UpdateStatus sets the inquiry's triage status.
	// Returns ErrInquiryNotFound if the inquiry does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InquiryStatus) error
}

// inquiryRepository is the concrete implementation of InquiryRepository.
type inquiryRepository struct {
	db *database.Database
}

// NewInquiryRepository creates a new instance of InquiryRepository.
func NewInquiryRepository(db *database.Database) InquiryRepository {
	return &inquiryRepository{
		db: db,
	}
}

const inquiryColumns = `
	id,
	kind,
	status,
	name,
	email,
	phone,
	message,
	property_id,
	created_at,
	updated_at
`

// Create inserts a new inquiry row.
func (r *inquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	query := `
		INSERT INTO inquiries (
			id, kind, status, name, email, phone, message, property_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now().UTC()
	inquiry.CreatedAt = now
	inquiry.UpdatedAt = now

	_, err := r.db.Pool.Exec(ctx, query,
		inquiry.ID,
		inquiry.Kind,
		inquiry.Status,
		inquiry.Name,
		inquiry.Email,
		inquiry.Phone,
		inquiry.Message,
		inquiry.PropertyID,
		inquiry.CreatedAt,
		inquiry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert inquiry %s: %w", inquiry.ID, err)
	}

	return nil
}

// GetByID queries the database for a single inquiry.
func (r *inquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = $1`

	var inquiry models.Inquiry
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&inquiry.ID,
		&inquiry.Kind,
		&inquiry.Status,
		&inquiry.Name,
		&inquiry.Email,
		&inquiry.Phone,
		&inquiry.Message,
		&inquiry.PropertyID,
		&inquiry.CreatedAt,
		&inquiry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query inquiry %s: %w", id, err)
	}

	return &inquiry, nil
}

// List queries inquiries matching the filter, newest first.
func (r *inquiryRepository) List(ctx context.Context, filter InquiryFilter) ([]models.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries`

	var (
		clauses []string
		args    []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		clauses = append(clauses, fmt.Sprintf("kind = $%d", len(args)))
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
		return nil, fmt.Errorf("failed to query inquiries: %w", err)
	}
	defer rows.Close()

	inquiries := []models.Inquiry{}
	for rows.Next() {
		var inquiry models.Inquiry
		err := rows.Scan(
			&inquiry.ID,
			&inquiry.Kind,
			&inquiry.Status,
			&inquiry.Name,
			&inquiry.Email,
			&inquiry.Phone,
			&inquiry.Message,
			&inquiry.PropertyID,
			&inquiry.CreatedAt,
			&inquiry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inquiry row: %w", err)
		}
		inquiries = append(inquiries, inquiry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inquiry rows: %w", err)
	}

	return inquiries, nil
}

// UpdateStatus sets the inquiry's triage status. Transition legality is
// checked by the service before calling.
func (r *inquiryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InquiryStatus) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE inquiries SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update inquiry status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInquiryNotFound
	}
	return nil
}
