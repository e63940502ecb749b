package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/landdesk/api/internal/errors"
	"github.com/landdesk/api/internal/middleware"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
	"github.com/landdesk/api/internal/services"
)

// PropertyHandler handles property listing HTTP requests.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		service: service,
	}
}

// CreatePropertyRequest represents the body for POST /properties.
type CreatePropertyRequest struct {
	Title       string   `json:"title" binding:"required,max=500"`
	ListingType string   `json:"listingType" binding:"required,oneof=sale rent"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0"`
	ProjectID   *string  `json:"projectId" binding:"omitempty,uuid"`
}

// ListPropertiesRequest represents the query parameters for GET /properties.
type ListPropertiesRequest struct {
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	PlotID    string `form:"plot_id" binding:"omitempty,uuid"`
}

// PropertyData represents a property in API responses.
type PropertyData struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Title       string    `json:"title"`
	ListingType string    `json:"listingType"`
	ID          string    `json:"id"`
	ProjectID   *string   `json:"projectId,omitempty"`
	PlotID      *string   `json:"plotId,omitempty"`
	PlotNumber  *string   `json:"plotNumber,omitempty"`
	Price       *float64  `json:"price,omitempty"`
}

// PropertyResponse wraps a single property.
type PropertyResponse struct {
	Property *PropertyData `json:"property"`
}

// PropertyListResponse wraps a property listing.
type PropertyListResponse struct {
	Properties []PropertyData `json:"properties"`
	Count      int            `json:"count"`
}

// Create handles POST /api/v1/properties.
func (h *PropertyHandler) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	projectID, ok := parseOptionalUUID(c, req.ProjectID, "projectId")
	if !ok {
		return
	}

	property, err := h.service.CreateProperty(c.Request.Context(), services.CreatePropertyInput{
		Title:       req.Title,
		ListingType: req.ListingType,
		PriceAmount: req.Price,
		ProjectID:   projectID,
		CreatedBy:   middleware.GetUserID(c),
	})
	if err != nil {
		h.writePropertyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PropertyResponse{Property: mapPropertyToDTO(property)})
}

// Get handles GET /api/v1/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	property, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.writePropertyError(c, err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: mapPropertyToDTO(property)})
}

// List handles GET /api/v1/properties.
func (h *PropertyHandler) List(c *gin.Context) {
	var req ListPropertiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	var filter repository.PropertyFilter
	if req.ProjectID != "" {
		id, err := uuid.Parse(req.ProjectID)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id", nil)
			return
		}
		filter.ProjectID = &id
	}
	if req.PlotID != "" {
		id, err := uuid.Parse(req.PlotID)
		if err != nil {
			apierrors.BadRequest(c, "Invalid plot_id", nil)
			return
		}
		filter.PlotID = &id
	}

	properties, err := h.service.ListProperties(c.Request.Context(), filter)
	if err != nil {
		h.writePropertyError(c, err)
		return
	}

	data := make([]PropertyData, 0, len(properties))
	for i := range properties {
		data = append(data, *mapPropertyToDTO(&properties[i]))
	}

	c.JSON(http.StatusOK, PropertyListResponse{Properties: data, Count: len(data)})
}

// writePropertyError maps service-level errors to HTTP responses.
func (h *PropertyHandler) writePropertyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		apierrors.NotFound(c, "Property not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	default:
		apierrors.InternalServerError(c, "Failed to process property request", err)
	}
}

// mapPropertyToDTO converts a Property model to its response shape.
func mapPropertyToDTO(property *models.Property) *PropertyData {
	if property == nil {
		return nil
	}

	dto := &PropertyData{
		ID:          property.ID.String(),
		Title:       property.Title,
		ListingType: property.ListingType,
		Price:       property.PriceAmount,
		PlotNumber:  property.PlotNumber,
		CreatedAt:   property.CreatedAt,
		UpdatedAt:   property.UpdatedAt,
	}

	if property.ProjectID != nil {
		id := property.ProjectID.String()
		dto.ProjectID = &id
	}
	if property.PlotID != nil {
		id := property.PlotID.String()
		dto.PlotID = &id
	}

	return dto
}
