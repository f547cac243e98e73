package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"rackleblock/racklerush/internal/service"
	"rackleblock/racklerush/pkg/response"
)

type BillingHandler struct {
	billingService service.BillingService
}

func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

func (h *BillingHandler) VerifyPayment(c *gin.Context) {
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

	var req service.VerifyPaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.TxRef == "" {
		response.BadRequest(c, "tx_ref is required")
		return
	}

	business, err := h.billingService.VerifyAndApply(c.Request.Context(), userID, businessID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrTierNotPayable):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrPaymentNotSuccessful):
			response.PaymentRequired(c, err.Error())
		case errors.Is(err, service.ErrPaymentAlreadyRecorded):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "failed to verify payment")
		}
		return
	}

	response.Success(c, business)
}

func (h *BillingHandler) ListPayments(c *gin.Context) {
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

	payments, err := h.billingService.ListPayments(c.Request.Context(), userID, businessID)
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to list payments")
		return
	}
	response.Success(c, payments)
}
