package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "github.com/landdesk/api/internal/errors"
	"github.com/landdesk/api/internal/metrics"
	"github.com/landdesk/api/internal/middleware"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
	"github.com/landdesk/api/internal/services"
)

// ParcelHandler handles parcel-related HTTP requests, including linkage.
type ParcelHandler struct {
	service services.ParcelService
	linkage services.LinkageService
}

// NewParcelHandler creates a new ParcelHandler instance.
func NewParcelHandler(service services.ParcelService, linkage services.LinkageService) *ParcelHandler {
	return &ParcelHandler{
		service: service,
		linkage: linkage,
	}
}

// DimensionsPayload is the request shape for the advisory dimension hint.
type DimensionsPayload struct {
	Shape   string   `json:"shape" binding:"required,oneof=rectangle custom"`
	LengthM *float64 `json:"lengthM" binding:"omitempty,gt=0"`
	WidthM  *float64 `json:"widthM" binding:"omitempty,gt=0"`
}

// CreateParcelRequest represents the body for POST /parcels.
type CreateParcelRequest struct {
	Number           string             `json:"number" binding:"required,max=100"`
	ProjectID        *string            `json:"projectId" binding:"omitempty,uuid"`
	Geometry         [][2]float64       `json:"geometry" binding:"omitempty,min=3"`
	ManualAreaSqm    *float64           `json:"manualAreaSqm" binding:"omitempty,gt=0"`
	ManualPerimeterM *float64           `json:"manualPerimeterM" binding:"omitempty,gt=0"`
	Dimensions       *DimensionsPayload `json:"dimensions"`
	UseManualMetrics bool               `json:"useManualMetrics"`
}

// UpdateParcelMetricsRequest represents the body for PATCH /parcels/:id/metrics.
// Absent fields are left unchanged; the clear flags remove inputs.
type UpdateParcelMetricsRequest struct {
	Number           *string            `json:"number" binding:"omitempty,max=100"`
	Geometry         *[][2]float64      `json:"geometry" binding:"omitempty,min=3"`
	ManualAreaSqm    *float64           `json:"manualAreaSqm" binding:"omitempty,gt=0"`
	ManualPerimeterM *float64           `json:"manualPerimeterM" binding:"omitempty,gt=0"`
	UseManualMetrics *bool              `json:"useManualMetrics"`
	Dimensions       *DimensionsPayload `json:"dimensions"`
	ClearGeometry    bool               `json:"clearGeometry"`
	ClearManual      bool               `json:"clearManualMetrics"`
}

// ChangeStatusRequest represents the body for POST /parcels/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available reserved sold"`
}

// LinkPropertyRequest represents the body for POST /parcels/:id/links.
type LinkPropertyRequest struct {
	PropertyID string `json:"propertyId" binding:"required,uuid"`
}

// ListParcelsRequest represents the query parameters for GET /parcels.
type ListParcelsRequest struct {
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=available reserved sold"`
}

// MetricsDelta is the manual-vs-computed discrepancy report in responses.
type MetricsDelta struct {
	AreaDiffPct      *float64 `json:"areaDiffPct"`
	PerimeterDiffPct *float64 `json:"perimeterDiffPct"`
}

// ParcelData represents a parcel in API responses. AreaSqm/PerimeterM carry
// the authoritative figures chosen between manual entry and computation.
type ParcelData struct {
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	Number             string             `json:"number"`
	Status             string             `json:"status"`
	CreatedBy          string             `json:"createdBy"`
	ProjectID          *string            `json:"projectId,omitempty"`
	Geometry           [][2]float64       `json:"geometry,omitempty"`
	Dimensions         *models.Dimensions `json:"dimensions,omitempty"`
	ManualAreaSqm      *float64           `json:"manualAreaSqm,omitempty"`
	ManualPerimeterM   *float64           `json:"manualPerimeterM,omitempty"`
	ComputedAreaSqm    *float64           `json:"computedAreaSqm,omitempty"`
	ComputedPerimeterM *float64           `json:"computedPerimeterM,omitempty"`
	AreaSqm            *float64           `json:"areaSqm"`
	PerimeterM         *float64           `json:"perimeterM"`
	MetricsDelta       *MetricsDelta      `json:"metricsDelta"`
	LinkedPropertyIDs  []string           `json:"linkedPropertyIds"`
	ID                 string             `json:"id"`
	UseManualMetrics   bool               `json:"useManualMetrics"`
}

// ParcelResponse wraps a single parcel.
type ParcelResponse struct {
	Parcel *ParcelData `json:"parcel"`
}

// ParcelListResponse wraps a parcel listing.
type ParcelListResponse struct {
	Parcels []ParcelData `json:"parcels"`
	Count   int          `json:"count"`
}

// Create handles POST /api/v1/parcels.
func (h *ParcelHandler) Create(c *gin.Context) {
	var req CreateParcelRequest
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

	in := services.CreateParcelInput{
		Number:           req.Number,
		ProjectID:        projectID,
		Geometry:         models.Ring(req.Geometry),
		ManualAreaSqm:    req.ManualAreaSqm,
		ManualPerimeterM: req.ManualPerimeterM,
		Dimensions:       mapDimensions(req.Dimensions),
		UseManualMetrics: req.UseManualMetrics,
		CreatedBy:        middleware.GetUserID(c),
	}

	parcel, err := h.service.CreateParcel(c.Request.Context(), in)
	if err != nil {
		h.writeParcelError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ParcelResponse{Parcel: mapParcelToDTO(parcel)})
}

// Get handles GET /api/v1/parcels/:id.
func (h *ParcelHandler) Get(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	parcel, err := h.service.GetParcel(c.Request.Context(), id)
	if err != nil {
		h.writeParcelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParcelResponse{Parcel: mapParcelToDTO(parcel)})
}

// List handles GET /api/v1/parcels.
func (h *ParcelHandler) List(c *gin.Context) {
	var req ListParcelsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	var filter repository.ParcelFilter
	if req.ProjectID != "" {
		id, err := uuid.Parse(req.ProjectID)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id", nil)
			return
		}
		filter.ProjectID = &id
	}
	if req.Status != "" {
		status := models.ParcelStatus(req.Status)
		filter.Status = &status
	}

	parcels, err := h.service.ListParcels(c.Request.Context(), filter)
	if err != nil {
		h.writeParcelError(c, err)
		return
	}

	data := make([]ParcelData, 0, len(parcels))
	for i := range parcels {
		data = append(data, *mapParcelToDTO(&parcels[i]))
	}

	c.JSON(http.StatusOK, ParcelListResponse{Parcels: data, Count: len(data)})
}

// UpdateMetrics handles PATCH /api/v1/parcels/:id/metrics.
func (h *ParcelHandler) UpdateMetrics(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateParcelMetricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	in := services.UpdateParcelMetricsInput{
		Number:           req.Number,
		ManualAreaSqm:    req.ManualAreaSqm,
		ManualPerimeterM: req.ManualPerimeterM,
		UseManualMetrics: req.UseManualMetrics,
		Dimensions:       mapDimensions(req.Dimensions),
		ClearGeometry:    req.ClearGeometry,
		ClearManual:      req.ClearManual,
	}
	if req.Geometry != nil {
		ring := models.Ring(*req.Geometry)
		in.Geometry = &ring
	}

	parcel, err := h.service.UpdateMetrics(c.Request.Context(), id, in)
	if err != nil {
		h.writeParcelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParcelResponse{Parcel: mapParcelToDTO(parcel)})
}

// ChangeStatus handles POST /api/v1/parcels/:id/status.
func (h *ParcelHandler) ChangeStatus(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	parcel, err := h.service.ChangeStatus(c.Request.Context(), id, models.ParcelStatus(req.Status))
	if err != nil {
		h.writeParcelError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParcelResponse{Parcel: mapParcelToDTO(parcel)})
}

// Link handles POST /api/v1/parcels/:id/links.
func (h *ParcelHandler) Link(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	var req LinkPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid propertyId", nil)
		return
	}

	if err := h.linkage.Link(c.Request.Context(), id, propertyID); err != nil {
		h.writeParcelError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Unlink handles DELETE /api/v1/parcels/:id/links/:propertyId.
func (h *ParcelHandler) Unlink(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid property id in path", nil)
		return
	}

	if err := h.linkage.Unlink(c.Request.Context(), id, propertyID); err != nil {
		h.writeParcelError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Stats handles GET /api/v1/stats/parcels.
func (h *ParcelHandler) Stats(c *gin.Context) {
	var projectID *uuid.UUID
	if raw := c.Query("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id", nil)
			return
		}
		projectID = &id
	}

	stats, err := h.service.FleetStats(c.Request.Context(), projectID)
	if err != nil {
		h.writeParcelError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// writeParcelError maps service-level errors to HTTP responses.
func (h *ParcelHandler) writeParcelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidGeometry),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrParcelNotFound):
		apierrors.NotFound(c, "Parcel not found")
	case errors.Is(err, services.ErrPropertyNotFound):
		apierrors.NotFound(c, "Property not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrAlreadyLinked),
		errors.Is(err, services.ErrInvalidTransition):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalServerError(c, "Failed to process parcel request", err)
	}
}

// mapParcelToDTO converts a Parcel model to its response shape, resolving
// the authoritative figures with the same rule used for aggregation.
func mapParcelToDTO(parcel *models.Parcel) *ParcelData {
	if parcel == nil {
		return nil
	}

	res := metrics.Resolve(metrics.FromParcel(parcel))

	dto := &ParcelData{
		ID:                 parcel.ID.String(),
		Number:             parcel.Number,
		Status:             string(parcel.Status),
		Geometry:           parcel.Geometry,
		Dimensions:         parcel.Dimensions,
		ManualAreaSqm:      parcel.ManualAreaSqm,
		ManualPerimeterM:   parcel.ManualPerimeterM,
		ComputedAreaSqm:    parcel.ComputedAreaSqm,
		ComputedPerimeterM: parcel.ComputedPerimeterM,
		AreaSqm:            res.AreaSqm,
		PerimeterM:         res.PerimeterM,
		UseManualMetrics:   parcel.UseManualMetrics,
		CreatedBy:          parcel.CreatedBy,
		CreatedAt:          parcel.CreatedAt,
		UpdatedAt:          parcel.UpdatedAt,
	}

	if parcel.ProjectID != nil {
		id := parcel.ProjectID.String()
		dto.ProjectID = &id
	}

	if res.AreaDiffPct != nil || res.PerimeterDiffPct != nil {
		dto.MetricsDelta = &MetricsDelta{
			AreaDiffPct:      res.AreaDiffPct,
			PerimeterDiffPct: res.PerimeterDiffPct,
		}
	}

	dto.LinkedPropertyIDs = make([]string, 0, len(parcel.LinkedPropertyIDs))
	for _, pid := range parcel.LinkedPropertyIDs {
		dto.LinkedPropertyIDs = append(dto.LinkedPropertyIDs, pid.String())
	}

	return dto
}

// mapDimensions converts the request payload to the model type.
func mapDimensions(payload *DimensionsPayload) *models.Dimensions {
	if payload == nil {
		return nil
	}
	return &models.Dimensions{
		Shape:   payload.Shape,
		LengthM: payload.LengthM,
		WidthM:  payload.WidthM,
	}
}

// parsePathUUID parses a UUID path parameter, writing a 400 on failure.
func parsePathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" in path", nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalUUID parses an optional UUID body field, writing a 400 on
// failure. The bool result is false when a response has been written.
func parseOptionalUUID(c *gin.Context, raw *string, field string) (*uuid.UUID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+field, nil)
		return nil, false
	}
	return &id, true
}
