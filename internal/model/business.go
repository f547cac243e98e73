package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionTier string

const (
	TierSpark    SubscriptionTier = "Spark"
	TierGrowth   SubscriptionTier = "Growth"
	TierVelocity SubscriptionTier = "Velocity"
)

type PaymentStatus string

const (
	PaymentStatusNone   PaymentStatus = "none"
	PaymentStatusActive PaymentStatus = "active"
)

// Business is the tenant entity. All contest and participant queries are
// scoped to a business; the API key is the unit of authentication for the
// tracking endpoint.
type Business struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	APIKey       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"api_key"`
	PrimaryColor string    `gorm:"type:varchar(16);not null;default:'#f97316'" json:"primary_color"`
	LogoURL      string    `gorm:"type:varchar(512)" json:"logo_url,omitempty"`

	SubscriptionTier   SubscriptionTier `gorm:"type:varchar(16);not null;default:'Spark'" json:"subscription_tier"`
	ContestCountTotal  int              `gorm:"not null;default:0" json:"contest_count_total"`
	ReferralCountTotal int              `gorm:"not null;default:0" json:"referral_count_total"`
	Currency           string           `gorm:"type:varchar(3);not null;default:'NGN'" json:"currency"`
	APIAccessEnabled   bool             `gorm:"not null;default:false" json:"api_access_enabled"`
	PaymentStatus      PaymentStatus    `gorm:"type:varchar(16);not null;default:'none'" json:"payment_status"`

	FlutterwaveTxRef      string     `gorm:"type:varchar(128)" json:"flutterwave_tx_ref,omitempty"`
	SubscriptionStartedAt *time.Time `json:"subscription_started_at,omitempty"`
	SubscriptionEndsAt    *time.Time `json:"subscription_ends_at,omitempty"`
	LastPaymentAt         *time.Time `json:"last_payment_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Contests []Contest `gorm:"foreignKey:BusinessID" json:"contests,omitempty"`
}

func (Business) TableName() string { return "businesses" }

func (b *Business) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
