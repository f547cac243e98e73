package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"rackleblock/racklerush/internal/service"
	"rackleblock/racklerush/pkg/response"
)

type ParticipantHandler struct {
	participantService service.ParticipantService
}

func NewParticipantHandler(participantService service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: participantService}
}

func (h *ParticipantHandler) Add(c *gin.Context) {
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

	var req service.ParticipantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Email == "" {
		response.BadRequest(c, "email is required")
		return
	}

	participant, err := h.participantService.Add(c.Request.Context(), userID, contestID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContestNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrParticipantExists):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "failed to add participant")
		}
		return
	}

	response.Success(c, participant)
}

type SetReferralCountRequest struct {
	ReferralCount *int `json:"referral_count" binding:"required"`
}

func (h *ParticipantHandler) SetReferralCount(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "missing authentication")
		return
	}
	participantID, ok := parseIDParam(c, "participant_id")
	if !ok {
		response.BadRequest(c, "invalid participant id")
		return
	}

	var req SetReferralCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.participantService.SetReferralCount(c.Request.Context(), userID, participantID, *req.ReferralCount); err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to update referral count")
		return
	}
	response.Success(c, nil)
}

func (h *ParticipantHandler) List(c *gin.Context) {
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

	filter := service.ListFilter{
		Search: c.Query("search"),
		SortBy: c.DefaultQuery("sort_by", "created_at"),
		Desc:   c.DefaultQuery("order", "desc") == "desc",
	}
	switch c.Query("joined") {
	case "joined":
		joined := true
		filter.Joined = &joined
	case "not_joined":
		joined := false
		filter.Joined = &joined
	}

	views, err := h.participantService.List(c.Request.Context(), userID, contestID, filter)
	if err != nil {
		if errors.Is(err, service.ErrContestNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to list participants")
		return
	}
	response.Success(c, views)
}

func (h *ParticipantHandler) Analytics(c *gin.Context) {
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

	analytics, err := h.participantService.Analytics(c.Request.Context(), userID, contestID)
	if err != nil {
		if errors.Is(err, service.ErrContestNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to compute analytics")
		return
	}
	response.Success(c, analytics)
}
