package repository

import (
	"context"

	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
)

type pgWaitlistRepository struct {
	db *gorm.DB
}

func NewPGWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &pgWaitlistRepository{db: db}
}

func (r *pgWaitlistRepository) Join(ctx context.Context, entry *model.WaitlistEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Next ordinal inside the transaction; the unique index on
		// queue_position rejects a concurrent writer that read the same max.
		var maxPos int
		if err := tx.Model(&model.WaitlistEntry{}).
			Select("COALESCE(MAX(queue_position), 0)").
			Scan(&maxPos).Error; err != nil {
			return err
		}
		entry.QueuePosition = maxPos + 1
		return tx.Create(entry).Error
	})
}

func (r *pgWaitlistRepository) GetByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *pgWaitlistRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.WaitlistEntry{}).Count(&n).Error
	return n, err
}
