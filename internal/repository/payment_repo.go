package repository

import (
	"context"

	"github.com/google/uuid"

	"rackleblock/racklerush/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Payment, error)
}
