package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
)

type pgPaymentRepository struct {
	db *gorm.DB
}

func NewPGPaymentRepository(db *gorm.DB) PaymentRepository {
	return &pgPaymentRepository{db: db}
}

func (r *pgPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *pgPaymentRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
