package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
	"rackleblock/racklerush/internal/repository"
)

func newParticipantService(db *gorm.DB) ParticipantService {
	return NewParticipantService(
		repository.NewPGBusinessRepository(db),
		repository.NewPGContestRepository(db),
		repository.NewPGParticipantRepository(db),
	)
}

func TestParticipantAdd(t *testing.T) {
	db := newTestDB(t)
	user, business := seedOwner(t, db)
	contest := seedContest(t, db, business.ID)
	svc := newParticipantService(db)
	ctx := context.Background()

	field := model.ContestField{ContestID: contest.ID, Label: "Phone", FieldType: model.FieldTypePhone}
	if err := db.Create(&field).Error; err != nil {
		t.Fatalf("seed field: %v", err)
	}

	p, err := svc.Add(ctx, user.ID, contest.ID, ParticipantInput{
		Email:         "  Fan@Example.COM ",
		ReferralCount: 3,
		JoinedContest: true,
		FieldValues: map[uuid.UUID]string{
			field.ID:   " 08065550199 ",
			uuid.New(): "   ", // blank answers are not stored
		},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.Email != "fan@example.com" {
		t.Errorf("email = %q", p.Email)
	}
	if len(p.ReferralCode) != 8 {
		t.Errorf("referral code = %q, want 8 chars", p.ReferralCode)
	}
	if p.ReferralCount != 3 {
		t.Errorf("referral_count = %d, want 3", p.ReferralCount)
	}

	var values []model.ParticipantFieldValue
	if err := db.Where("participant_id = ?", p.ID).Find(&values).Error; err != nil {
		t.Fatalf("load values: %v", err)
	}
	if len(values) != 1 || values[0].Value != "08065550199" {
		t.Errorf("values = %+v", values)
	}
}

func TestParticipantAdd_NegativeSeedCountClamps(t *testing.T) {
	db := newTestDB(t)
	user, business := seedOwner(t, db)
	contest := seedContest(t, db, business.ID)
	svc := newParticipantService(db)

	p, err := svc.Add(context.Background(), user.ID, contest.ID, ParticipantInput{
		Email:         "fan@example.com",
		ReferralCount: -3,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.ReferralCount != 0 {
		t.Errorf("referral_count = %d, want 0", p.ReferralCount)
	}
}

func TestParticipantAdd_DuplicateEmailInContest(t *testing.T) {
	db := newTestDB(t)
	user, business := seedOwner(t, db)
	contest := seedContest(t, db, business.ID)
	svc := newParticipantService(db)
	ctx := context.Background()

	if _, err := svc.Add(ctx, user.ID, contest.ID, ParticipantInput{Email: "fan@example.com"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := svc.Add(ctx, user.ID, contest.ID, ParticipantInput{Email: "FAN@example.com"})
	if !errors.Is(err, ErrParticipantExists) {
		t.Fatalf("err = %v, want ErrParticipantExists", err)
	}

	// Same email in a different contest is fine.
	other := seedContest(t, db, business.ID)
	if _, err := svc.Add(ctx, user.ID, other.ID, ParticipantInput{Email: "fan@example.com"}); err != nil {
		t.Fatalf("add to other contest: %v", err)
	}
}

func TestParticipantSetReferralCount(t *testing.T) {
	db := newTestDB(t)
	user, business := seedOwner(t, db)
	contest := seedContest(t, db, business.ID)
	p := seedParticipant(t, db, contest.ID, "fan@example.com", "abc123", 10, true)
	svc := newParticipantService(db)
	ctx := context.Background()

	if err := svc.SetReferralCount(ctx, user.ID, p.ID, -5); err != nil {
		t.Fatalf("set: %v", err)
	}
	var stored model.Participant
	if err := db.First(&stored, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.ReferralCount != 0 {
		t.Errorf("referral_count = %d, want 0 (negative clamps)", stored.ReferralCount)
	}

	if err := svc.SetReferralCount(ctx, uuid.New(), p.ID, 3); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("stranger err = %v, want ErrParticipantNotFound", err)
	}
}

func TestParticipantList_FilterAndSort(t *testing.T) {
	db := newTestDB(t)
	user, business := seedOwner(t, db)
	contest := seedContest(t, db, business.ID)
	seedParticipant(t, db, contest.ID, "ada@example.com", "code-a", 12, true)
	seedParticipant(t, db, contest.ID, "bode@example.com", "code-b", 30, true)
	seedParticipant(t, db, contest.ID, "chidi@example.com", "code-c", 5, false)
	svc := newParticipantService(db)
	ctx := context.Background()

	joined := true
	views, err := svc.List(ctx, user.ID, contest.ID, ListFilter{Joined: &joined, SortBy: "referral_count", Desc: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len = %d, want 2", len(views))
	}
	if views[0].Email != "bode@example.com" || views[1].Email != "ada@example.com" {
		t.Errorf("order = %s, %s", views[0].Email, views[1].Email)
	}

	views, err = svc.List(ctx, user.ID, contest.ID, ListFilter{Search: "CHIDI"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(views) != 1 || views[0].Email != "chidi@example.com" {
		t.Errorf("search results = %+v", views)
	}
}

func TestParticipantAnalytics(t *testing.T) {
	db := newTestDB(t)
	user, business := seedOwner(t, db)
	contest := seedContest(t, db, business.ID)
	seedParticipant(t, db, contest.ID, "ada@example.com", "code-a", 12, true)
	seedParticipant(t, db, contest.ID, "bode@example.com", "code-b", 30, true)
	seedParticipant(t, db, contest.ID, "chidi@example.com", "code-c", 0, false)
	svc := newParticipantService(db)

	a, err := svc.Analytics(context.Background(), user.ID, contest.ID)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if a.TotalParticipants != 3 || a.JoinedCount != 2 {
		t.Errorf("totals = %d/%d", a.TotalParticipants, a.JoinedCount)
	}
	if a.TotalReferrals != 42 {
		t.Errorf("total_referrals = %d", a.TotalReferrals)
	}
	if a.ConversionRate != 67 {
		t.Errorf("conversion_rate = %d, want 67", a.ConversionRate)
	}
	if a.AvgReferrals != 21 {
		t.Errorf("avg_referrals = %v, want 21", a.AvgReferrals)
	}
	if a.TopReferrerEmail != "bode@example.com" {
		t.Errorf("top_referrer = %q", a.TopReferrerEmail)
	}
}
