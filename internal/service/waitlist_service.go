package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
	"rackleblock/racklerush/internal/repository"
	"rackleblock/racklerush/pkg/crypto"
)

// Concurrent joiners can read the same MAX(queue_position) and collide on the
// unique index; the loser just takes the next position on retry.
const maxJoinAttempts = 5

// WaitlistService implements the marketing-site join procedure: each signup
// gets the next sequential queue position and a fresh unique referral code.
// A duplicate email fails with ErrAlreadyOnWaitlist so the caller can present
// "already on the list" rather than a generic failure.
type WaitlistService interface {
	Join(ctx context.Context, name, email, referredByCode string) (*model.WaitlistEntry, error)
}

type waitlistService struct {
	waitlistRepo repository.WaitlistRepository
}

func NewWaitlistService(waitlistRepo repository.WaitlistRepository) WaitlistService {
	return &waitlistService{waitlistRepo: waitlistRepo}
}

func (s *waitlistService) Join(ctx context.Context, name, email, referredByCode string) (*model.WaitlistEntry, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var lastErr error
	for attempt := 0; attempt < maxJoinAttempts; attempt++ {
		code, err := crypto.GenerateReferralCode()
		if err != nil {
			return nil, fmt.Errorf("generate referral code: %w", err)
		}

		entry := &model.WaitlistEntry{
			Name:           strings.TrimSpace(name),
			Email:          email,
			ReferralCode:   code,
			ReferredByCode: strings.TrimSpace(referredByCode),
		}
		err = s.waitlistRepo.Join(ctx, entry)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("join waitlist: %w", err)
		}

		// A unique violation is either a duplicate email or a lost race on
		// queue_position/referral_code. Only the email case is terminal.
		if _, lookupErr := s.waitlistRepo.GetByEmail(ctx, email); lookupErr == nil {
			return nil, ErrAlreadyOnWaitlist
		} else if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("join waitlist: %w", lookupErr)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("join waitlist: %w", lastErr)
}
