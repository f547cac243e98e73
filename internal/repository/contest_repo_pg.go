package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
)

type pgContestRepository struct {
	db *gorm.DB
}

func NewPGContestRepository(db *gorm.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

// Create inserts a contest with its custom form fields and bumps the owning
// business's lifetime contest counter, all in one transaction so the quota
// counter can never drift from the rows it counts.
func (r *pgContestRepository) Create(ctx context.Context, contest *model.Contest, fields []model.ContestField) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contest).Error; err != nil {
			return err
		}
		for i := range fields {
			fields[i].ContestID = contest.ID
		}
		if len(fields) > 0 {
			if err := tx.Create(&fields).Error; err != nil {
				return err
			}
		}
		contest.Fields = fields
		return tx.Model(&model.Business{}).
			Where("id = ?", contest.BusinessID).
			UpdateColumn("contest_count_total", gorm.Expr("contest_count_total + 1")).
			Error
	})
}

func (r *pgContestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contest, error) {
	var contest model.Contest
	if err := r.db.WithContext(ctx).First(&contest, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func (r *pgContestRepository) GetByIDWithFields(ctx context.Context, id uuid.UUID) (*model.Contest, error) {
	var contest model.Contest
	if err := r.db.WithContext(ctx).
		Preload("Fields", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&contest, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contest, nil
}

func (r *pgContestRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Contest, error) {
	var contests []model.Contest
	if err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&contests).Error; err != nil {
		return nil, err
	}
	return contests, nil
}

func (r *pgContestRepository) Update(ctx context.Context, contest *model.Contest) error {
	return r.db.WithContext(ctx).Save(contest).Error
}

func (r *pgContestRepository) ListFields(ctx context.Context, contestID uuid.UUID) ([]model.ContestField, error) {
	var fields []model.ContestField
	if err := r.db.WithContext(ctx).
		Where("contest_id = ?", contestID).
		Order("sort_order ASC").
		Find(&fields).Error; err != nil {
		return nil, err
	}
	return fields, nil
}
