// Package plan holds the pure subscription-tier limit model. It has no
// storage or transport dependencies; services consult it before creating
// contests or accepting referrals.
package plan

import (
	"math"

	"rackleblock/racklerush/internal/model"
)

// Limit is either unbounded or capped at N. The zero value is Limited(0).
type Limit struct {
	unlimited bool
	max       int
}

func Limited(n int) Limit { return Limit{max: n} }

var Unlimited = Limit{unlimited: true}

func (l Limit) IsUnlimited() bool { return l.unlimited }

// Max returns the cap. Only meaningful when IsUnlimited is false.
func (l Limit) Max() int { return l.max }

// Allows reports whether adding one more to used stays within the limit.
func (l Limit) Allows(used int) bool {
	return l.unlimited || used < l.max
}

// UsagePercent returns min(100, round(100*used/max)); unlimited reports 0.
func (l Limit) UsagePercent(used int) int {
	if l.unlimited || l.max <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(used) / float64(l.max)))
	if pct > 100 {
		return 100
	}
	return pct
}

// Limits are the quotas attached to a subscription tier.
type Limits struct {
	Contests  Limit
	Referrals Limit
	APIAccess bool
}

var tierLimits = map[model.SubscriptionTier]Limits{
	model.TierSpark:    {Contests: Limited(1), Referrals: Limited(50)},
	model.TierGrowth:   {Contests: Limited(2), Referrals: Limited(100)},
	model.TierVelocity: {Contests: Unlimited, Referrals: Unlimited, APIAccess: true},
}

// ForTier returns the limits for a tier. Unknown tiers fall back to Spark,
// the free plan every business starts on.
func ForTier(tier model.SubscriptionTier) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[model.TierSpark]
}

// Usage is the derived per-business quota view shown on the dashboard.
type Usage struct {
	Tier                 model.SubscriptionTier `json:"tier"`
	IsUnlimited          bool                   `json:"is_unlimited"`
	MaxContests          int                    `json:"max_contests"`
	MaxReferrals         int                    `json:"max_referrals"`
	APIAccess            bool                   `json:"api_access"`
	ContestsUsed         int                    `json:"contests_used"`
	ReferralsUsed        int                    `json:"referrals_used"`
	CanCreateContest     bool                   `json:"can_create_contest"`
	CanAcceptReferral    bool                   `json:"can_accept_referral"`
	ContestUsagePercent  int                    `json:"contest_usage_percent"`
	ReferralUsagePercent int                    `json:"referral_usage_percent"`
}

// UsageFor computes the quota view for a tier and current counters.
func UsageFor(tier model.SubscriptionTier, contestsUsed, referralsUsed int) Usage {
	l := ForTier(tier)
	return Usage{
		Tier:                 tier,
		IsUnlimited:          l.Contests.IsUnlimited(),
		MaxContests:          l.Contests.Max(),
		MaxReferrals:         l.Referrals.Max(),
		APIAccess:            l.APIAccess,
		ContestsUsed:         contestsUsed,
		ReferralsUsed:        referralsUsed,
		CanCreateContest:     l.Contests.Allows(contestsUsed),
		CanAcceptReferral:    l.Referrals.Allows(referralsUsed),
		ContestUsagePercent:  l.Contests.UsagePercent(contestsUsed),
		ReferralUsagePercent: l.Referrals.UsagePercent(referralsUsed),
	}
}

// APIAccessEnabled reports whether a tier includes tracking-API access.
// Businesses carry this as a derived column; it must equal this function.
func APIAccessEnabled(tier model.SubscriptionTier) bool {
	return ForTier(tier).APIAccess
}
