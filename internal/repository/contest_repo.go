package repository

import (
	"context"

	"github.com/google/uuid"

	"rackleblock/racklerush/internal/model"
)

type ContestRepository interface {
	Create(ctx context.Context, contest *model.Contest, fields []model.ContestField) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contest, error)
	GetByIDWithFields(ctx context.Context, id uuid.UUID) (*model.Contest, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Contest, error)
	Update(ctx context.Context, contest *model.Contest) error
	ListFields(ctx context.Context, contestID uuid.UUID) ([]model.ContestField, error)
}
