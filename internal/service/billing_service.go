package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
	"rackleblock/racklerush/internal/plan"
	"rackleblock/racklerush/internal/repository"
	"rackleblock/racklerush/pkg/flutterwave"
)

// VerifyPaymentInput carries the checkout result the dashboard reports after
// the gateway modal closes.
type VerifyPaymentInput struct {
	TxRef    string                 `json:"tx_ref"`
	Tier     model.SubscriptionTier `json:"tier"`
	Currency string                 `json:"currency"`
	Amount   float64                `json:"amount"`
}

// BillingService verifies a gateway transaction and applies the subscription
// change: payment record, tier, currency, API access flag, and a one-month
// subscription window.
type BillingService interface {
	VerifyAndApply(ctx context.Context, ownerID, businessID uuid.UUID, in VerifyPaymentInput) (*model.Business, error)
	ListPayments(ctx context.Context, ownerID, businessID uuid.UUID) ([]model.Payment, error)
}

type billingService struct {
	businessRepo repository.BusinessRepository
	paymentRepo  repository.PaymentRepository
	verifier     flutterwave.Verifier
}

func NewBillingService(
	businessRepo repository.BusinessRepository,
	paymentRepo repository.PaymentRepository,
	verifier flutterwave.Verifier,
) BillingService {
	return &billingService{
		businessRepo: businessRepo,
		paymentRepo:  paymentRepo,
		verifier:     verifier,
	}
}

func (s *billingService) VerifyAndApply(ctx context.Context, ownerID, businessID uuid.UUID, in VerifyPaymentInput) (*model.Business, error) {
	business, err := s.ownedBusiness(ctx, ownerID, businessID)
	if err != nil {
		return nil, err
	}

	// Spark is the free plan; only paid tiers go through the gateway.
	if in.Tier != model.TierGrowth && in.Tier != model.TierVelocity {
		return nil, ErrTierNotPayable
	}

	tx, err := s.verifier.VerifyByReference(ctx, in.TxRef)
	if err != nil {
		return nil, fmt.Errorf("verify transaction: %w", err)
	}
	if !tx.Successful() || tx.TxRef != in.TxRef {
		return nil, ErrPaymentNotSuccessful
	}

	payment := &model.Payment{
		BusinessID: businessID,
		Amount:     tx.Amount,
		Currency:   tx.Currency,
		Tier:       in.Tier,
		TxRef:      tx.TxRef,
		FlwRef:     tx.FlwRef,
		Status:     tx.Status,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPaymentAlreadyRecorded
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}

	now := time.Now()
	endsAt := now.AddDate(0, 1, 0) // monthly subscription
	business.SubscriptionTier = in.Tier
	business.Currency = tx.Currency
	business.PaymentStatus = model.PaymentStatusActive
	business.APIAccessEnabled = plan.APIAccessEnabled(in.Tier)
	business.FlutterwaveTxRef = tx.TxRef
	business.SubscriptionStartedAt = &now
	business.SubscriptionEndsAt = &endsAt
	business.LastPaymentAt = &now

	if err := s.businessRepo.Update(ctx, business); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return business, nil
}

func (s *billingService) ListPayments(ctx context.Context, ownerID, businessID uuid.UUID) ([]model.Payment, error) {
	if _, err := s.ownedBusiness(ctx, ownerID, businessID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByBusiness(ctx, businessID)
}

func (s *billingService) ownedBusiness(ctx context.Context, ownerID, businessID uuid.UUID) (*model.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	if business.UserID != ownerID {
		return nil, ErrBusinessNotFound
	}
	return business, nil
}
