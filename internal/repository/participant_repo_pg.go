package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
)

type pgParticipantRepository struct {
	db *gorm.DB
}

func NewPGParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &pgParticipantRepository{db: db}
}

// Create inserts a participant and its custom field values in one transaction.
func (r *pgParticipantRepository) Create(ctx context.Context, participant *model.Participant, values []model.ParticipantFieldValue) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(participant).Error; err != nil {
			return err
		}
		for i := range values {
			values[i].ParticipantID = participant.ID
		}
		if len(values) > 0 {
			if err := tx.Create(&values).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *pgParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Participant, error) {
	var participant model.Participant
	if err := r.db.WithContext(ctx).First(&participant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *pgParticipantRepository) ListByContest(ctx context.Context, contestID uuid.UUID) ([]model.Participant, error) {
	var participants []model.Participant
	if err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("created_at DESC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *pgParticipantRepository) FindForTracking(ctx context.Context, f TrackingFilter) (*model.Participant, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN contests ON contests.id = participants.contest_id").
		Where("participants.referral_code = ?", f.ReferralCode).
		Where("participants.joined_contest = ?", true).
		Where("contests.business_id = ?", f.BusinessID)
	if f.ContestID != nil {
		q = q.Where("participants.contest_id = ?", *f.ContestID)
	}

	var participant model.Participant
	if err := q.First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *pgParticipantRepository) IncrementReferralCount(ctx context.Context, id uuid.UUID) (int, error) {
	// Single conditional UPDATE with RETURNING: concurrent calls serialize at
	// the row and each observes its own incremented value.
	var newCount int
	tx := r.db.WithContext(ctx).Raw(
		"UPDATE participants SET referral_count = referral_count + 1, updated_at = CURRENT_TIMESTAMP "+
			"WHERE id = ? AND deleted_at IS NULL RETURNING referral_count",
		id,
	).Scan(&newCount)
	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return newCount, nil
}

func (r *pgParticipantRepository) SetReferralCount(ctx context.Context, id uuid.UUID, count int) error {
	return r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Where("id = ?", id).
		UpdateColumn("referral_count", count).
		Error
}

func (r *pgParticipantRepository) ListFieldValues(ctx context.Context, participantIDs []uuid.UUID) ([]model.ParticipantFieldValue, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}
	var values []model.ParticipantFieldValue
	if err := r.db.WithContext(ctx).
		Where("participant_id IN ?", participantIDs).
		Find(&values).Error; err != nil {
		return nil, err
	}
	return values, nil
}
