package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
	"rackleblock/racklerush/internal/plan"
	"rackleblock/racklerush/internal/repository"
	"rackleblock/racklerush/pkg/crypto"
)

type BusinessService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name, customSlug, primaryColor string) (*model.Business, error)
	Get(ctx context.Context, ownerID, businessID uuid.UUID) (*model.Business, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Business, error)
	// Usage recomputes referral totals from participant rows and returns the
	// plan quota view for the dashboard.
	Usage(ctx context.Context, ownerID, businessID uuid.UUID) (*plan.Usage, error)
	// RotateAPIKey issues a fresh key and invalidates the cached old one, so
	// tracking calls with the previous key fail immediately.
	RotateAPIKey(ctx context.Context, ownerID, businessID uuid.UUID) (string, error)
}

type businessService struct {
	businessRepo repository.BusinessRepository
	stateStore   repository.StateStore
}

func NewBusinessService(businessRepo repository.BusinessRepository, stateStore repository.StateStore) BusinessService {
	return &businessService{businessRepo: businessRepo, stateStore: stateStore}
}

func (s *businessService) Create(ctx context.Context, ownerID uuid.UUID, name, customSlug, primaryColor string) (*model.Business, error) {
	businessSlug := customSlug
	if businessSlug == "" {
		businessSlug = slug.Make(name)
	}

	apiKey, err := crypto.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	business := &model.Business{
		UserID:           ownerID,
		Name:             name,
		Slug:             businessSlug,
		APIKey:           apiKey,
		SubscriptionTier: model.TierSpark,
		PaymentStatus:    model.PaymentStatusNone,
	}
	if primaryColor != "" {
		business.PrimaryColor = primaryColor
	}

	if err := s.businessRepo.Create(ctx, business); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create business: %w", err)
	}
	return business, nil
}

func (s *businessService) Get(ctx context.Context, ownerID, businessID uuid.UUID) (*model.Business, error) {
	return s.getOwned(ctx, ownerID, businessID)
}

func (s *businessService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Business, error) {
	return s.businessRepo.ListByUser(ctx, ownerID)
}

func (s *businessService) Usage(ctx context.Context, ownerID, businessID uuid.UUID) (*plan.Usage, error) {
	business, err := s.getOwned(ctx, ownerID, businessID)
	if err != nil {
		return nil, err
	}

	referrals, err := s.businessRepo.SumReferralCounts(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("sum referral counts: %w", err)
	}
	if referrals != business.ReferralCountTotal {
		if err := s.businessRepo.SetReferralCountTotal(ctx, businessID, referrals); err != nil {
			return nil, fmt.Errorf("sync referral total: %w", err)
		}
	}

	usage := plan.UsageFor(business.SubscriptionTier, business.ContestCountTotal, referrals)
	return &usage, nil
}

func (s *businessService) RotateAPIKey(ctx context.Context, ownerID, businessID uuid.UUID) (string, error) {
	business, err := s.getOwned(ctx, ownerID, businessID)
	if err != nil {
		return "", err
	}

	newKey, err := crypto.GenerateAPIKey()
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	if err := s.businessRepo.UpdateAPIKey(ctx, businessID, newKey); err != nil {
		return "", fmt.Errorf("update api key: %w", err)
	}

	// Drop the cached entry for the retired key.
	_ = s.stateStore.Delete(ctx, apiKeyCacheKey(business.APIKey))
	return newKey, nil
}

// getOwned fetches a business and hides it behind not-found when it belongs
// to a different user.
func (s *businessService) getOwned(ctx context.Context, ownerID, businessID uuid.UUID) (*model.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	if business.UserID != ownerID {
		return nil, ErrBusinessNotFound
	}
	return business, nil
}
