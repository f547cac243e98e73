package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"rackleblock/racklerush/internal/service"
	"rackleblock/racklerush/pkg/response"
)

type WaitlistHandler struct {
	waitlistService service.WaitlistService
}

func NewWaitlistHandler(waitlistService service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService}
}

type JoinWaitlistRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	ReferredByCode string `json:"referred_by_code"`
}

func (h *WaitlistHandler) Join(c *gin.Context) {
	var req JoinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	entry, err := h.waitlistService.Join(c.Request.Context(), req.Name, req.Email, req.ReferredByCode)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyOnWaitlist) {
			response.Conflict(c, "you're already on the list")
			return
		}
		response.InternalError(c, "failed to join waitlist")
		return
	}

	response.Success(c, gin.H{
		"queue_position": entry.QueuePosition,
		"referral_code":  entry.ReferralCode,
	})
}
