package service

import "errors"

var (
	// auth
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrRefreshTokenInvalid    = errors.New("refresh token invalid or revoked")

	// businesses
	ErrBusinessNotFound = errors.New("business not found")
	ErrSlugTaken        = errors.New("slug already taken")

	// contests
	ErrContestNotFound         = errors.New("contest not found")
	ErrContestLimitReached     = errors.New("contest limit reached for current plan")
	ErrEndDateInPast           = errors.New("end date must be in the future")
	ErrInvalidLeaderboardLimit = errors.New("invalid leaderboard limit")
	ErrWhatsAppNumberRequired  = errors.New("whatsapp number required when redirect is enabled")

	// participants
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantExists   = errors.New("participant with this email already exists in this contest")

	// tracking
	ErrInvalidAPIKey        = errors.New("invalid api key")
	ErrReferralCodeNotFound = errors.New("referral code not found or not active for this business")

	// waitlist
	ErrAlreadyOnWaitlist = errors.New("email already on the waitlist")

	// billing
	ErrPaymentNotSuccessful   = errors.New("payment was not successful")
	ErrPaymentAlreadyRecorded = errors.New("transaction reference already recorded")
	ErrTierNotPayable         = errors.New("tier cannot be purchased")
)
