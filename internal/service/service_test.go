package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOwner(t *testing.T, db *gorm.DB) (model.User, model.Business) {
	t.Helper()
	user := model.User{Email: "owner@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	business := model.Business{
		UserID:           user.ID,
		Name:             "Ada Cakes",
		Slug:             "ada-cakes",
		APIKey:           "rr_test_key_1",
		SubscriptionTier: model.TierSpark,
	}
	if err := db.Create(&business).Error; err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return user, business
}

func seedContest(t *testing.T, db *gorm.DB, businessID uuid.UUID) model.Contest {
	t.Helper()
	contest := model.Contest{
		BusinessID:      businessID,
		Title:           "Launch Giveaway",
		EndDate:         time.Now().Add(30 * 24 * time.Hour),
		Active:          true,
		ReferralEnabled: true,
	}
	if err := db.Create(&contest).Error; err != nil {
		t.Fatalf("seed contest: %v", err)
	}
	return contest
}

func seedParticipant(t *testing.T, db *gorm.DB, contestID uuid.UUID, email, code string, count int, joined bool) model.Participant {
	t.Helper()
	p := model.Participant{
		ContestID:     contestID,
		Email:         email,
		ReferralCode:  code,
		ReferralCount: count,
		JoinedContest: joined,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed participant %s: %v", email, err)
	}
	return p
}
