package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
	"rackleblock/racklerush/internal/repository"
	"rackleblock/racklerush/pkg/crypto"
)

// ParticipantInput is the admin "add participant" form: email plus sparse
// answers keyed by field ID. ReferralCount seeds the counter (admin only).
type ParticipantInput struct {
	Email          string               `json:"email"`
	ReferralCount  int                  `json:"referral_count"`
	ReferredByCode string               `json:"referred_by_code"`
	JoinedContest  bool                 `json:"joined_contest"`
	FieldValues    map[uuid.UUID]string `json:"field_values"`
}

// ParticipantView joins a participant with its custom field answers.
type ParticipantView struct {
	model.Participant
	CustomData map[uuid.UUID]string `json:"custom_data"`
}

// ListFilter narrows and orders the participants view.
type ListFilter struct {
	Search string
	Joined *bool
	SortBy string // "created_at" | "referral_count"
	Desc   bool
}

// Analytics is the per-contest rollup shown on the dashboard.
type Analytics struct {
	TotalParticipants int     `json:"total_participants"`
	JoinedCount       int     `json:"joined_count"`
	TotalReferrals    int     `json:"total_referrals"`
	ConversionRate    int     `json:"conversion_rate"`
	AvgReferrals      float64 `json:"avg_referrals"`
	TopReferrerEmail  string  `json:"top_referrer_email,omitempty"`
}

type ParticipantService interface {
	Add(ctx context.Context, ownerID, contestID uuid.UUID, in ParticipantInput) (*model.Participant, error)
	// SetReferralCount is the explicit admin override, the only mutation that
	// may decrease a referral counter.
	SetReferralCount(ctx context.Context, ownerID, participantID uuid.UUID, count int) error
	List(ctx context.Context, ownerID, contestID uuid.UUID, filter ListFilter) ([]ParticipantView, error)
	Analytics(ctx context.Context, ownerID, contestID uuid.UUID) (*Analytics, error)
}

type participantService struct {
	businessRepo    repository.BusinessRepository
	contestRepo     repository.ContestRepository
	participantRepo repository.ParticipantRepository
}

func NewParticipantService(
	businessRepo repository.BusinessRepository,
	contestRepo repository.ContestRepository,
	participantRepo repository.ParticipantRepository,
) ParticipantService {
	return &participantService{
		businessRepo:    businessRepo,
		contestRepo:     contestRepo,
		participantRepo: participantRepo,
	}
}

func (s *participantService) Add(ctx context.Context, ownerID, contestID uuid.UUID, in ParticipantInput) (*model.Participant, error) {
	if _, err := s.ownedContest(ctx, ownerID, contestID); err != nil {
		return nil, err
	}

	code, err := crypto.GenerateReferralCode()
	if err != nil {
		return nil, fmt.Errorf("generate referral code: %w", err)
	}

	if in.ReferralCount < 0 {
		in.ReferralCount = 0
	}
	participant := &model.Participant{
		ContestID:      contestID,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		ReferralCode:   code,
		ReferralCount:  in.ReferralCount,
		ReferredByCode: strings.TrimSpace(in.ReferredByCode),
		JoinedContest:  in.JoinedContest,
	}

	values := make([]model.ParticipantFieldValue, 0, len(in.FieldValues))
	for fieldID, v := range in.FieldValues {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		values = append(values, model.ParticipantFieldValue{FieldID: fieldID, Value: v})
	}

	if err := s.participantRepo.Create(ctx, participant, values); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrParticipantExists
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}
	return participant, nil
}

func (s *participantService) SetReferralCount(ctx context.Context, ownerID, participantID uuid.UUID, count int) error {
	if count < 0 {
		count = 0
	}
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("get participant: %w", err)
	}
	if _, err := s.ownedContest(ctx, ownerID, participant.ContestID); err != nil {
		return ErrParticipantNotFound
	}
	return s.participantRepo.SetReferralCount(ctx, participantID, count)
}

func (s *participantService) List(ctx context.Context, ownerID, contestID uuid.UUID, filter ListFilter) ([]ParticipantView, error) {
	if _, err := s.ownedContest(ctx, ownerID, contestID); err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	ids := make([]uuid.UUID, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	values, err := s.participantRepo.ListFieldValues(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list field values: %w", err)
	}
	byParticipant := make(map[uuid.UUID]map[uuid.UUID]string)
	for _, v := range values {
		if byParticipant[v.ParticipantID] == nil {
			byParticipant[v.ParticipantID] = make(map[uuid.UUID]string)
		}
		byParticipant[v.ParticipantID][v.FieldID] = v.Value
	}

	views := make([]ParticipantView, 0, len(participants))
	for _, p := range participants {
		custom := byParticipant[p.ID]
		if custom == nil {
			custom = map[uuid.UUID]string{}
		}
		view := ParticipantView{Participant: p, CustomData: custom}
		if !matchesFilter(view, filter) {
			continue
		}
		views = append(views, view)
	}

	sortViews(views, filter)
	return views, nil
}

func (s *participantService) Analytics(ctx context.Context, ownerID, contestID uuid.UUID) (*Analytics, error) {
	if _, err := s.ownedContest(ctx, ownerID, contestID); err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	a := &Analytics{TotalParticipants: len(participants)}
	var top *model.Participant
	for i, p := range participants {
		if p.JoinedContest {
			a.JoinedCount++
		}
		a.TotalReferrals += p.ReferralCount
		if top == nil || p.ReferralCount > top.ReferralCount {
			top = &participants[i]
		}
	}
	if a.TotalParticipants > 0 {
		a.ConversionRate = int(float64(a.JoinedCount)/float64(a.TotalParticipants)*100 + 0.5)
	}
	if a.JoinedCount > 0 {
		a.AvgReferrals = float64(a.TotalReferrals) / float64(a.JoinedCount)
	}
	if top != nil && top.ReferralCount > 0 {
		a.TopReferrerEmail = top.Email
	}
	return a, nil
}

func matchesFilter(v ParticipantView, filter ListFilter) bool {
	if filter.Joined != nil && v.JoinedContest != *filter.Joined {
		return false
	}
	if filter.Search == "" {
		return true
	}
	term := strings.ToLower(filter.Search)
	if strings.Contains(strings.ToLower(v.Email), term) ||
		strings.Contains(strings.ToLower(v.ReferralCode), term) {
		return true
	}
	for _, val := range v.CustomData {
		if strings.Contains(strings.ToLower(val), term) {
			return true
		}
	}
	return false
}

func sortViews(views []ParticipantView, filter ListFilter) {
	byCount := filter.SortBy == "referral_count"
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if filter.Desc {
			a, b = b, a
		}
		if byCount {
			return a.ReferralCount < b.ReferralCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (s *participantService) ownedContest(ctx context.Context, ownerID, contestID uuid.UUID) (*model.Contest, error) {
	contest, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("get contest: %w", err)
	}
	business, err := s.businessRepo.GetByID(ctx, contest.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}
	if business.UserID != ownerID {
		return nil, ErrContestNotFound
	}
	return contest, nil
}
