package repository

import (
	"context"

	"github.com/google/uuid"

	"rackleblock/racklerush/internal/model"
)

// TrackingFilter scopes a referral-code lookup to the authenticated business.
// ContestID is optional; when set, the match is further restricted to that
// contest.
type TrackingFilter struct {
	ReferralCode string
	BusinessID   uuid.UUID
	ContestID    *uuid.UUID
}

type ParticipantRepository interface {
	Create(ctx context.Context, participant *model.Participant, values []model.ParticipantFieldValue) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Participant, error)
	ListByContest(ctx context.Context, contestID uuid.UUID) ([]model.Participant, error)
	// FindForTracking resolves a joined participant by referral code within
	// the given business (cross-tenant isolation). Returns gorm.ErrRecordNotFound
	// when no row matches, including codes owned by other businesses.
	FindForTracking(ctx context.Context, f TrackingFilter) (*model.Participant, error)
	// IncrementReferralCount atomically adds 1 to the participant's counter
	// and returns the new value. Safe under concurrent callers.
	IncrementReferralCount(ctx context.Context, id uuid.UUID) (int, error)
	// SetReferralCount is the admin override path, the only place the counter
	// may move backwards.
	SetReferralCount(ctx context.Context, id uuid.UUID, count int) error
	ListFieldValues(ctx context.Context, participantIDs []uuid.UUID) ([]model.ParticipantFieldValue, error)
}
