package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
	"rackleblock/racklerush/internal/repository"
)

func TestWaitlistJoin_AssignsSequentialPositions(t *testing.T) {
	db := newTestDB(t)
	svc := NewWaitlistService(repository.NewPGWaitlistRepository(db))
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 1; i <= 3; i++ {
		entry, err := svc.Join(ctx, fmt.Sprintf("Person %d", i), fmt.Sprintf("p%d@example.com", i), "")
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		if entry.QueuePosition != i {
			t.Errorf("join %d: queue_position = %d", i, entry.QueuePosition)
		}
		if len(entry.ReferralCode) != 8 {
			t.Errorf("join %d: referral code %q, want 8 chars", i, entry.ReferralCode)
		}
		if seen[entry.ReferralCode] {
			t.Errorf("join %d: referral code %q reused", i, entry.ReferralCode)
		}
		seen[entry.ReferralCode] = true
	}
}

func TestWaitlistJoin_NormalizesAndStoresReferrer(t *testing.T) {
	db := newTestDB(t)
	svc := NewWaitlistService(repository.NewPGWaitlistRepository(db))

	entry, err := svc.Join(context.Background(), "  Ada  ", "  Ada@Example.COM ", " friend01 ")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if entry.Email != "ada@example.com" {
		t.Errorf("email = %q", entry.Email)
	}
	if entry.Name != "Ada" {
		t.Errorf("name = %q", entry.Name)
	}
	if entry.ReferredByCode != "friend01" {
		t.Errorf("referred_by_code = %q", entry.ReferredByCode)
	}
}

// collidingWaitlistRepo makes the first n Join calls fail with the unique
// violation a lost queue-position race produces, then delegates.
type collidingWaitlistRepo struct {
	repository.WaitlistRepository
	collisions int
}

func (r *collidingWaitlistRepo) Join(ctx context.Context, entry *model.WaitlistEntry) error {
	if r.collisions > 0 {
		r.collisions--
		return gorm.ErrDuplicatedKey
	}
	return r.WaitlistRepository.Join(ctx, entry)
}

// A lost race on queue_position must not masquerade as a duplicate email:
// the join retries with the next position instead of returning 409.
func TestWaitlistJoin_RetriesPositionCollision(t *testing.T) {
	db := newTestDB(t)
	repo := &collidingWaitlistRepo{
		WaitlistRepository: repository.NewPGWaitlistRepository(db),
		collisions:         2,
	}
	svc := NewWaitlistService(repo)

	entry, err := svc.Join(context.Background(), "Ada", "ada@example.com", "")
	if err != nil {
		t.Fatalf("join after collisions: %v", err)
	}
	if entry.QueuePosition != 1 {
		t.Errorf("queue_position = %d, want 1", entry.QueuePosition)
	}
}

func TestWaitlistJoin_CollisionRetriesAreBounded(t *testing.T) {
	db := newTestDB(t)
	repo := &collidingWaitlistRepo{
		WaitlistRepository: repository.NewPGWaitlistRepository(db),
		collisions:         maxJoinAttempts + 1,
	}
	svc := NewWaitlistService(repo)

	_, err := svc.Join(context.Background(), "Ada", "ada@example.com", "")
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if errors.Is(err, ErrAlreadyOnWaitlist) {
		t.Fatalf("err = %v; a fresh email must not be reported as already on the list", err)
	}
}

func TestWaitlistJoin_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewWaitlistService(repository.NewPGWaitlistRepository(db))
	ctx := context.Background()

	if _, err := svc.Join(ctx, "Ada", "ada@example.com", ""); err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err := svc.Join(ctx, "Ada Again", "Ada@example.com", "")
	if !errors.Is(err, ErrAlreadyOnWaitlist) {
		t.Fatalf("err = %v, want ErrAlreadyOnWaitlist", err)
	}
}
