package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rackleblock/racklerush/internal/model"
	"rackleblock/racklerush/internal/plan"
	"rackleblock/racklerush/internal/repository"
)

// DefaultWhatsAppTemplate mirrors the template offered in the contest form.
const DefaultWhatsAppTemplate = `Hi! I just joined the contest.

{participant_details}

My referral link: {referral_link}`

const DefaultSuccessMessage = "Thank you for joining! Share your referral link to climb the leaderboard and win!"

var leaderboardLimits = map[int]bool{3: true, 5: true, 10: true, 15: true, 20: true, 25: true, 50: true}

var whatsappNumberStrip = regexp.MustCompile(`[^0-9+]`)

// ContestFieldInput describes one custom signup field in creation order.
type ContestFieldInput struct {
	Label      string          `json:"label"`
	FieldType  model.FieldType `json:"field_type"`
	IsRequired bool            `json:"is_required"`
}

type ContestInput struct {
	Title                   string              `json:"title"`
	Description             string              `json:"description"`
	PrizeInfo               string              `json:"prize_info"`
	EndDate                 time.Time           `json:"end_date"`
	ReferralEnabled         *bool               `json:"referral_enabled"`
	WhatsAppEnabled         bool                `json:"whatsapp_enabled"`
	WhatsAppNumber          string              `json:"whatsapp_number"`
	WhatsAppMessageTemplate string              `json:"whatsapp_message_template"`
	ShowReferralCount       *bool               `json:"show_referral_count"`
	LeaderboardLimit        int                 `json:"leaderboard_limit"`
	SuccessMessage          string              `json:"success_message"`
	Fields                  []ContestFieldInput `json:"fields"`
}

type ContestUpdate struct {
	ContestInput
	Active *bool `json:"active"`
}

type ContestService interface {
	// Create validates the input, checks the plan contest quota BEFORE any
	// insert, and bumps the business contest counter on success.
	Create(ctx context.Context, ownerID, businessID uuid.UUID, in ContestInput) (*model.Contest, error)
	Update(ctx context.Context, ownerID, contestID uuid.UUID, in ContestUpdate) (*model.Contest, error)
	Get(ctx context.Context, ownerID, contestID uuid.UUID) (*model.Contest, error)
	ListByBusiness(ctx context.Context, ownerID, businessID uuid.UUID) ([]model.Contest, error)
	Leaderboard(ctx context.Context, ownerID, contestID uuid.UUID) ([]model.Participant, error)
}

type contestService struct {
	businessRepo    repository.BusinessRepository
	contestRepo     repository.ContestRepository
	participantRepo repository.ParticipantRepository
}

func NewContestService(
	businessRepo repository.BusinessRepository,
	contestRepo repository.ContestRepository,
	participantRepo repository.ParticipantRepository,
) ContestService {
	return &contestService{
		businessRepo:    businessRepo,
		contestRepo:     contestRepo,
		participantRepo: participantRepo,
	}
}

func (s *contestService) Create(ctx context.Context, ownerID, businessID uuid.UUID, in ContestInput) (*model.Contest, error) {
	business, err := s.ownedBusiness(ctx, ownerID, businessID)
	if err != nil {
		return nil, err
	}

	// Quota check happens before any insert is attempted.
	if !plan.ForTier(business.SubscriptionTier).Contests.Allows(business.ContestCountTotal) {
		return nil, ErrContestLimitReached
	}

	if err := validateContestInput(&in); err != nil {
		return nil, err
	}
	// End date validated at creation only. Edits do not re-check it.
	if !in.EndDate.After(time.Now()) {
		return nil, ErrEndDateInPast
	}

	contest := &model.Contest{
		BusinessID:              businessID,
		Title:                   in.Title,
		Description:             in.Description,
		PrizeInfo:               in.PrizeInfo,
		EndDate:                 in.EndDate,
		Active:                  true,
		ReferralEnabled:         boolOrDefault(in.ReferralEnabled, true),
		WhatsAppEnabled:         in.WhatsAppEnabled,
		WhatsAppNumber:          in.WhatsAppNumber,
		WhatsAppMessageTemplate: in.WhatsAppMessageTemplate,
		ShowReferralCount:       boolOrDefault(in.ShowReferralCount, true),
		LeaderboardLimit:        in.LeaderboardLimit,
		SuccessMessage:          in.SuccessMessage,
	}
	if contest.SuccessMessage == "" {
		contest.SuccessMessage = DefaultSuccessMessage
	}

	fields := buildFields(in.Fields)
	if err := s.contestRepo.Create(ctx, contest, fields); err != nil {
		return nil, fmt.Errorf("create contest: %w", err)
	}
	return contest, nil
}

func (s *contestService) Update(ctx context.Context, ownerID, contestID uuid.UUID, in ContestUpdate) (*model.Contest, error) {
	contest, err := s.ownedContest(ctx, ownerID, contestID)
	if err != nil {
		return nil, err
	}

	if err := validateContestInput(&in.ContestInput); err != nil {
		return nil, err
	}

	contest.Title = in.Title
	contest.Description = in.Description
	contest.PrizeInfo = in.PrizeInfo
	contest.EndDate = in.EndDate
	contest.ReferralEnabled = boolOrDefault(in.ReferralEnabled, contest.ReferralEnabled)
	contest.WhatsAppEnabled = in.WhatsAppEnabled
	contest.WhatsAppNumber = in.WhatsAppNumber
	contest.WhatsAppMessageTemplate = in.WhatsAppMessageTemplate
	contest.ShowReferralCount = boolOrDefault(in.ShowReferralCount, contest.ShowReferralCount)
	contest.LeaderboardLimit = in.LeaderboardLimit
	if in.SuccessMessage != "" {
		contest.SuccessMessage = in.SuccessMessage
	}
	if in.Active != nil {
		contest.Active = *in.Active
	}

	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, fmt.Errorf("update contest: %w", err)
	}
	return contest, nil
}

func (s *contestService) Get(ctx context.Context, ownerID, contestID uuid.UUID) (*model.Contest, error) {
	contest, err := s.ownedContest(ctx, ownerID, contestID)
	if err != nil {
		return nil, err
	}
	return s.contestRepo.GetByIDWithFields(ctx, contest.ID)
}

func (s *contestService) ListByBusiness(ctx context.Context, ownerID, businessID uuid.UUID) ([]model.Contest, error) {
	if _, err := s.ownedBusiness(ctx, ownerID, businessID); err != nil {
		return nil, err
	}
	return s.contestRepo.ListByBusiness(ctx, businessID)
}

// Leaderboard returns the top joined participants by referral count, capped
// by the contest's configured leaderboard limit.
func (s *contestService) Leaderboard(ctx context.Context, ownerID, contestID uuid.UUID) ([]model.Participant, error) {
	contest, err := s.ownedContest(ctx, ownerID, contestID)
	if err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	joined := participants[:0:0]
	for _, p := range participants {
		if p.JoinedContest {
			joined = append(joined, p)
		}
	}
	sort.SliceStable(joined, func(i, j int) bool {
		return joined[i].ReferralCount > joined[j].ReferralCount
	})

	limit := contest.LeaderboardLimit
	if limit <= 0 {
		limit = 10
	}
	if len(joined) > limit {
		joined = joined[:limit]
	}
	return joined, nil
}

// RenderWhatsAppMessage fills the contest's redirect template. Placeholders:
// {participant_details} and {referral_link}.
func RenderWhatsAppMessage(contest *model.Contest, participantDetails, referralLink string) string {
	tpl := contest.WhatsAppMessageTemplate
	if tpl == "" {
		tpl = DefaultWhatsAppTemplate
	}
	return strings.NewReplacer(
		"{participant_details}", participantDetails,
		"{referral_link}", referralLink,
	).Replace(tpl)
}

func validateContestInput(in *ContestInput) error {
	if in.LeaderboardLimit == 0 {
		in.LeaderboardLimit = 10
	}
	if !leaderboardLimits[in.LeaderboardLimit] {
		return ErrInvalidLeaderboardLimit
	}
	if in.WhatsAppEnabled {
		in.WhatsAppNumber = whatsappNumberStrip.ReplaceAllString(strings.TrimSpace(in.WhatsAppNumber), "")
		if in.WhatsAppNumber == "" {
			return ErrWhatsAppNumberRequired
		}
		if in.WhatsAppMessageTemplate == "" {
			in.WhatsAppMessageTemplate = DefaultWhatsAppTemplate
		}
	} else {
		in.WhatsAppNumber = ""
		in.WhatsAppMessageTemplate = ""
	}
	return nil
}

func buildFields(inputs []ContestFieldInput) []model.ContestField {
	fields := make([]model.ContestField, 0, len(inputs))
	order := 0
	for _, f := range inputs {
		if strings.TrimSpace(f.Label) == "" {
			continue
		}
		fieldType := f.FieldType
		if fieldType == "" {
			fieldType = model.FieldTypeText
		}
		fields = append(fields, model.ContestField{
			Label:      f.Label,
			FieldType:  fieldType,
			IsRequired: f.IsRequired,
			SortOrder:  order,
		})
		order++
	}
	return fields
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (s *contestService) ownedBusiness(ctx context.Context, ownerID, businessID uuid.UUID) (*model.Business, error) {
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

func (s *contestService) ownedContest(ctx context.Context, ownerID, contestID uuid.UUID) (*model.Contest, error) {
	contest, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("get contest: %w", err)
	}
	if _, err := s.ownedBusiness(ctx, ownerID, contest.BusinessID); err != nil {
		return nil, ErrContestNotFound
	}
	return contest, nil
}
