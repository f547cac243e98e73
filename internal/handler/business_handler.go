package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"rackleblock/racklerush/internal/service"
	"rackleblock/racklerush/pkg/response"
)

type BusinessHandler struct {
	businessService service.BusinessService
}

func NewBusinessHandler(businessService service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

type CreateBusinessRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug"`
	PrimaryColor string `json:"primary_color"`
}

func (h *BusinessHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	business, err := h.businessService.Create(c.Request.Context(), userID, req.Name, req.Slug, req.PrimaryColor)
	if err != nil {
		if errors.Is(err, service.ErrSlugTaken) {
			response.Conflict(c, "this URL slug is already taken")
			return
		}
		response.InternalError(c, "failed to create business")
		return
	}

	response.Success(c, business)
}

func (h *BusinessHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}

	businesses, err := h.businessService.List(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to list businesses")
		return
	}
	response.Success(c, businesses)
}

func (h *BusinessHandler) Get(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	businessID, ok := parseIDParam(c, "business_id")
	if !ok {
		response.BadRequest(c, "invalid business id")
		return
	}

	business, err := h.businessService.Get(c.Request.Context(), userID, businessID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to get business")
		return
	}
	response.Success(c, business)
}

func (h *BusinessHandler) Usage(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	businessID, ok := parseIDParam(c, "business_id")
	if !ok {
		response.BadRequest(c, "invalid business id")
		return
	}

	usage, err := h.businessService.Usage(c.Request.Context(), userID, businessID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to compute usage")
		return
	}
	response.Success(c, usage)
}

func (h *BusinessHandler) RotateAPIKey(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	businessID, ok := parseIDParam(c, "business_id")
	if !ok {
		response.BadRequest(c, "invalid business id")
		return
	}

	newKey, err := h.businessService.RotateAPIKey(c.Request.Context(), userID, businessID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to rotate api key")
		return
	}
	response.Success(c, gin.H{"api_key": newKey})
}
