package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rackleblock/racklerush/internal/service"
)

// TrackingHandler serves the public referral-increment endpoint. Its wire
// contract is fixed and versioned with embedded widgets, so responses use the
// bare {"error": ...} / {"success": ...} shapes rather than the dashboard's
// response envelope.
type TrackingHandler struct {
	trackingService service.TrackingService
	logger          *zap.Logger
}

func NewTrackingHandler(trackingService service.TrackingService, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService, logger: logger}
}

type trackRequest struct {
	ReferralCode string `json:"referral_code"`
	ContestID    string `json:"contest_id"`
}

func (h *TrackingHandler) Track(c *gin.Context) {
	apiKey := c.GetHeader("x-api-key")
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing x-api-key header"})
		return
	}

	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReferralCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing referral_code in request body"})
		return
	}

	var contestID *uuid.UUID
	if req.ContestID != "" {
		id, err := uuid.Parse(req.ContestID)
		if err != nil {
			// An unparseable contest id can never match a participant.
			c.JSON(http.StatusNotFound, gin.H{"error": "Referral code not found or not active for this business"})
			return
		}
		contestID = &id
	}

	result, err := h.trackingService.Track(c.Request.Context(), apiKey, req.ReferralCode, contestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAPIKey):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
		case errors.Is(err, service.ErrReferralCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Referral code not found or not active for this business"})
		default:
			h.logger.Error("tracking failed", zap.String("referral_code", req.ReferralCode), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": trackingErrorMessage(err)})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"referral_code": result.ReferralCode,
		"new_count":     result.NewCount,
	})
}

// MethodNotAllowed matches the endpoint's documented 405 body.
func (h *TrackingHandler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}

// trackingErrorMessage keeps internal detail out of 500 bodies while making
// the failing phase distinguishable for integrators.
func trackingErrorMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "find participant"):
		return "Failed to find participant"
	case strings.HasPrefix(msg, "increment referral count"):
		return "Failed to increment referral count"
	default:
		return "Internal server error"
	}
}
