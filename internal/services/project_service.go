package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/landdesk/api/internal/logger"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
)

// CreateProjectInput carries the fields for a new project.
type CreateProjectInput struct {
	Name        string
	Location    string
	Description string
}

// ProjectService defines the interface for project business logic.
type ProjectService interface {
	// CreateProject persists a new project.
	CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error)

	// GetProject retrieves a project by id.
	// Returns ErrProjectNotFound if it does not exist.
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)

	// ListProjects retrieves all projects.
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// projectService is the concrete implementation of ProjectService.
type projectService struct {
	repo repository.ProjectRepository
	log  *logger.Logger
}

// NewProjectService creates a new instance of ProjectService.
func NewProjectService(repo repository.ProjectRepository, log *logger.Logger) ProjectService {
	return &projectService{
		repo: repo,
		log:  log,
	}
}

func (s *projectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	project := &models.Project{
		ID:          uuid.New(),
		Name:        in.Name,
		Location:    in.Location,
		Description: in.Description,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		s.log.Error("Failed to create project", err, map[string]interface{}{
			"name": in.Name,
		})
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.log.Info("Project created", map[string]interface{}{
		"project_id": project.ID,
		"name":       project.Name,
	})

	return project, nil
}

func (s *projectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to query project", err, map[string]interface{}{
			"project_id": id,
		})
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (s *projectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list projects", err, nil)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}
