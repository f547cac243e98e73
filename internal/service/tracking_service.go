package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/repository"
)

// TrackResult echoes the referral code and the persisted post-increment count.
type TrackResult struct {
	ReferralCode string `json:"referral_code"`
	NewCount     int    `json:"new_count"`
}

// TrackingService handles the API-key-authenticated referral increment.
//
// A call is deliberately not idempotent: replaying the same request body
// increments again. The subscription referral quota is not consulted here
// either; the dashboard surfaces over-quota state but the endpoint keeps
// counting.
type TrackingService interface {
	Track(ctx context.Context, apiKey, referralCode string, contestID *uuid.UUID) (*TrackResult, error)
}

type trackingService struct {
	businessRepo    repository.BusinessRepository
	participantRepo repository.ParticipantRepository
	stateStore      repository.StateStore
	apiKeyTTL       time.Duration
}

func NewTrackingService(
	businessRepo repository.BusinessRepository,
	participantRepo repository.ParticipantRepository,
	stateStore repository.StateStore,
	apiKeyTTL time.Duration,
) TrackingService {
	if apiKeyTTL <= 0 {
		apiKeyTTL = 5 * time.Minute
	}
	return &trackingService{
		businessRepo:    businessRepo,
		participantRepo: participantRepo,
		stateStore:      stateStore,
		apiKeyTTL:       apiKeyTTL,
	}
}

func (s *trackingService) Track(ctx context.Context, apiKey, referralCode string, contestID *uuid.UUID) (*TrackResult, error) {
	businessID, err := s.resolveBusiness(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	participant, err := s.participantRepo.FindForTracking(ctx, repository.TrackingFilter{
		ReferralCode: referralCode,
		BusinessID:   businessID,
		ContestID:    contestID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Indistinguishable from a code owned by another business.
			return nil, ErrReferralCodeNotFound
		}
		return nil, fmt.Errorf("find participant: %w", err)
	}

	newCount, err := s.participantRepo.IncrementReferralCount(ctx, participant.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralCodeNotFound
		}
		return nil, fmt.Errorf("increment referral count: %w", err)
	}

	return &TrackResult{ReferralCode: participant.ReferralCode, NewCount: newCount}, nil
}

type cachedBusiness struct {
	ID uuid.UUID `json:"id"`
}

func apiKeyCacheKey(apiKey string) string { return "apikey:" + apiKey }

// resolveBusiness authenticates the API key, consulting the state store first
// so the tracking hot path usually skips the database.
func (s *trackingService) resolveBusiness(ctx context.Context, apiKey string) (uuid.UUID, error) {
	if raw, err := s.stateStore.Get(ctx, apiKeyCacheKey(apiKey)); err == nil && raw != nil {
		var cached cachedBusiness
		if json.Unmarshal(raw, &cached) == nil && cached.ID != uuid.Nil {
			return cached.ID, nil
		}
	}

	business, err := s.businessRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrInvalidAPIKey
		}
		return uuid.Nil, fmt.Errorf("lookup api key: %w", err)
	}

	if raw, err := json.Marshal(cachedBusiness{ID: business.ID}); err == nil {
		// Best effort; a cache write failure must not fail the request.
		_ = s.stateStore.Set(ctx, apiKeyCacheKey(apiKey), raw, s.apiKeyTTL)
	}
	return business.ID, nil
}
