package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/landdesk/api/internal/errors"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
	"github.com/landdesk/api/internal/services"
)

// InquiryHandler handles inquiry submission and triage HTTP requests.
type InquiryHandler struct {
	service services.InquiryService
}

// NewInquiryHandler creates a new InquiryHandler instance.
func NewInquiryHandler(service services.InquiryService) *InquiryHandler {
	return &InquiryHandler{
		service: service,
	}
}

// SubmitInquiryRequest represents the body for the public POST /inquiries.
type SubmitInquiryRequest struct {
	Kind       string  `json:"kind" binding:"required,oneof=contact evaluation"`
	Name       string  `json:"name" binding:"required,max=200"`
	Email      string  `json:"email" binding:"required,email"`
	Phone      string  `json:"phone" binding:"omitempty,max=50"`
	Message    string  `json:"message" binding:"omitempty,max=5000"`
	PropertyID *string `json:"propertyId" binding:"omitempty,uuid"`
}

// ListInquiriesRequest represents the query parameters for GET /inquiries.
type ListInquiriesRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=new in_progress closed"`
	Kind   string `form:"kind" binding:"omitempty,oneof=contact evaluation"`
}

// TriageRequest represents the body for PATCH /inquiries/:id/status.
type TriageRequest struct {
	Status string `json:"status" binding:"required,oneof=new in_progress closed"`
}

// InquiryResponse wraps a single inquiry.
type InquiryResponse struct {
	Inquiry *models.Inquiry `json:"inquiry"`
}

// InquiryListResponse wraps an inquiry listing.
type InquiryListResponse struct {
	Inquiries []models.Inquiry `json:"inquiries"`
	Count     int              `json:"count"`
}

// Submit handles the public POST /api/v1/inquiries.
func (h *InquiryHandler) Submit(c *gin.Context) {
	var req SubmitInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	propertyID, ok := parseOptionalUUID(c, req.PropertyID, "propertyId")
	if !ok {
		return
	}

	inquiry, err := h.service.SubmitInquiry(c.Request.Context(), services.SubmitInquiryInput{
		Kind:       models.InquiryKind(req.Kind),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
		PropertyID: propertyID,
	})
	if err != nil {
		h.writeInquiryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, InquiryResponse{Inquiry: inquiry})
}

// List handles GET /api/v1/inquiries (admin).
func (h *InquiryHandler) List(c *gin.Context) {
	var req ListInquiriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	var filter repository.InquiryFilter
	if req.Status != "" {
		status := models.InquiryStatus(req.Status)
		filter.Status = &status
	}
	if req.Kind != "" {
		kind := models.InquiryKind(req.Kind)
		filter.Kind = &kind
	}

	inquiries, err := h.service.ListInquiries(c.Request.Context(), filter)
	if err != nil {
		h.writeInquiryError(c, err)
		return
	}

	c.JSON(http.StatusOK, InquiryListResponse{Inquiries: inquiries, Count: len(inquiries)})
}

// Triage handles PATCH /api/v1/inquiries/:id/status (admin).
func (h *InquiryHandler) Triage(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	var req TriageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	inquiry, err := h.service.ChangeStatus(c.Request.Context(), id, models.InquiryStatus(req.Status))
	if err != nil {
		h.writeInquiryError(c, err)
		return
	}

	c.JSON(http.StatusOK, InquiryResponse{Inquiry: inquiry})
}

// writeInquiryError maps service-level errors to HTTP responses.
func (h *InquiryHandler) writeInquiryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidKind):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrInquiryNotFound):
		apierrors.NotFound(c, "Inquiry not found")
	case errors.Is(err, services.ErrPropertyNotFound):
		apierrors.NotFound(c, "Property not found")
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalServerError(c, "Failed to process inquiry request", err)
	}
}
