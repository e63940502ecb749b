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

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	// Create inserts a new project. Timestamps are set by the repository.
	Create(ctx context.Context, project *models.Project) error

	// GetByID returns the project with the given id.
	// Returns nil, nil if no project is found (not an error).
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// List returns all projects, newest first.
	List(ctx context.Context) ([]models.Project, error)
}

// projectRepository is the concrete implementation of ProjectRepository.
type projectRepository struct {
	db *database.Database
}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository(db *database.Database) ProjectRepository {
	return &projectRepository{
		db: db,
	}
}

// Create inserts a new project row.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, location, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := r.db.Pool.Exec(ctx, query,
		project.ID,
		project.Name,
		project.Location,
		project.Description,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project %s: %w", project.ID, err)
	}

	return nil
}

// GetByID queries the database for a single project.
func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, name, location, description, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project models.Project
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.Location,
		&project.Description,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query project %s: %w", id, err)
	}

	return &project, nil
}

// List queries all projects, newest first.
func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := `
		SELECT id, name, location, description, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID,
			&project.Name,
			&project.Location,
			&project.Description,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}
