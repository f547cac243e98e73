package repository

import (
	"context"

	"github.com/google/uuid"

	"rackleblock/racklerush/internal/model"
)

type BusinessRepository interface {
	Create(ctx context.Context, business *model.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Business, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*model.Business, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Business, error)
	Update(ctx context.Context, business *model.Business) error
	UpdateAPIKey(ctx context.Context, id uuid.UUID, apiKey string) error
	// SumReferralCounts aggregates referral_count over all joined participants
	// of the business's contests; the dashboard usage view reads this instead
	// of trusting the denormalized counter.
	SumReferralCounts(ctx context.Context, id uuid.UUID) (int, error)
	SetReferralCountTotal(ctx context.Context, id uuid.UUID, total int) error
}
