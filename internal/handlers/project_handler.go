package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/landdesk/api/internal/errors"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/services"
)

// ProjectHandler handles project HTTP requests.
type ProjectHandler struct {
	service services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler instance.
func NewProjectHandler(service services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		service: service,
	}
}

// CreateProjectRequest represents the body for POST /projects.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Location    string `json:"location" binding:"omitempty,max=500"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// ProjectResponse wraps a single project.
type ProjectResponse struct {
	Project *models.Project `json:"project"`
}

// ProjectListResponse wraps a project listing.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
	Count    int              `json:"count"`
}

// Create handles POST /api/v1/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	project, err := h.service.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		apierrors.InternalServerError(c, "Failed to create project", err)
		return
	}

	c.JSON(http.StatusCreated, ProjectResponse{Project: project})
}

// Get handles GET /api/v1/projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	project, err := h.service.GetProject(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			apierrors.NotFound(c, "Project not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to query project", err)
		return
	}

	c.JSON(http.StatusOK, ProjectResponse{Project: project})
}

// List handles GET /api/v1/projects.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.service.ListProjects(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list projects", err)
		return
	}

	c.JSON(http.StatusOK, ProjectListResponse{Projects: projects, Count: len(projects)})
}
