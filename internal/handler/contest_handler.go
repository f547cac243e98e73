package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"rackleblock/racklerush/internal/service"
	"rackleblock/racklerush/pkg/response"
)

type ContestHandler struct {
	contestService service.ContestService
}

func NewContestHandler(contestService service.ContestService) *ContestHandler {
	return &ContestHandler{contestService: contestService}
}

func (h *ContestHandler) Create(c *gin.Context) {
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

	var req service.ContestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Title == "" {
		response.BadRequest(c, "title is required")
		return
	}

	contest, err := h.contestService.Create(c.Request.Context(), userID, businessID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrContestLimitReached):
			response.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrEndDateInPast),
			errors.Is(err, service.ErrInvalidLeaderboardLimit),
			errors.Is(err, service.ErrWhatsAppNumberRequired):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to create contest")
		}
		return
	}

	response.Success(c, contest)
}

func (h *ContestHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	contestID, ok := parseIDParam(c, "contest_id")
	if !ok {
		response.BadRequest(c, "invalid contest id")
		return
	}

	var req service.ContestUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	contest, err := h.contestService.Update(c.Request.Context(), userID, contestID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContestNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrInvalidLeaderboardLimit),
			errors.Is(err, service.ErrWhatsAppNumberRequired):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to update contest")
		}
		return
	}

	response.Success(c, contest)
}

func (h *ContestHandler) Get(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	contestID, ok := parseIDParam(c, "contest_id")
	if !ok {
		response.BadRequest(c, "invalid contest id")
		return
	}

	contest, err := h.contestService.Get(c.Request.Context(), userID, contestID)
	if err != nil {
		if errors.Is(err, service.ErrContestNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to get contest")
		return
	}
	response.Success(c, contest)
}

func (h *ContestHandler) ListByBusiness(c *gin.Context) {
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

	contests, err := h.contestService.ListByBusiness(c.Request.Context(), userID, businessID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to list contests")
		return
	}
	response.Success(c, contests)
}

func (h *ContestHandler) Leaderboard(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	contestID, ok := parseIDParam(c, "contest_id")
	if !ok {
		response.BadRequest(c, "invalid contest id")
		return
	}

	entries, err := h.contestService.Leaderboard(c.Request.Context(), userID, contestID)
	if err != nil {
		if errors.Is(err, service.ErrContestNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to build leaderboard")
		return
	}
	response.Success(c, entries)
}
