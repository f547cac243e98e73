package repository

import (
	"context"

	"rackleblock/racklerush/internal/model"
)

type WaitlistRepository interface {
	// Join inserts the entry and assigns the next sequential queue position
	// atomically. A duplicate email surfaces as gorm.ErrDuplicatedKey.
	Join(ctx context.Context, entry *model.WaitlistEntry) error
	GetByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error)
	Count(ctx context.Context) (int64, error)
}
