package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
)

type pgBusinessRepository struct {
	db *gorm.DB
}

func NewPGBusinessRepository(db *gorm.DB) BusinessRepository {
	return &pgBusinessRepository{db: db}
}

func (r *pgBusinessRepository) Create(ctx context.Context, business *model.Business) error {
	return r.db.WithContext(ctx).Create(business).Error
}

func (r *pgBusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Business, error) {
	var business model.Business
	if err := r.db.WithContext(ctx).First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *pgBusinessRepository) GetByAPIKey(ctx context.Context, apiKey string) (*model.Business, error) {
	var business model.Business
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *pgBusinessRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Business, error) {
	var businesses []model.Business
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *pgBusinessRepository) Update(ctx context.Context, business *model.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}

func (r *pgBusinessRepository) UpdateAPIKey(ctx context.Context, id uuid.UUID, apiKey string) error {
	return r.db.WithContext(ctx).
		Model(&model.Business{}).
		Where("id = ?", id).
		UpdateColumn("api_key", apiKey).
		Error
}

func (r *pgBusinessRepository) SumReferralCounts(ctx context.Context, id uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Joins("JOIN contests ON contests.id = participants.contest_id").
		Where("contests.business_id = ? AND participants.joined_contest = ?", id, true).
		Select("COALESCE(SUM(participants.referral_count), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *pgBusinessRepository) SetReferralCountTotal(ctx context.Context, id uuid.UUID, total int) error {
	return r.db.WithContext(ctx).
		Model(&model.Business{}).
		Where("id = ?", id).
		UpdateColumn("referral_count_total", total).
		Error
}
