package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment records one verified gateway transaction. TxRef is the
// client-generated transaction reference; FlwRef is assigned by the gateway.
type Payment struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uuid.UUID        `gorm:"type:uuid;not null;index" json:"business_id"`
	Amount     float64          `gorm:"not null" json:"amount"`
	Currency   string           `gorm:"type:varchar(3);not null" json:"currency"`
	Tier       SubscriptionTier `gorm:"type:varchar(16);not null" json:"tier"`
	TxRef      string           `gorm:"type:varchar(128);uniqueIndex;not null" json:"tx_ref"`
	FlwRef     string           `gorm:"type:varchar(128)" json:"flw_ref,omitempty"`
	Status     string           `gorm:"type:varchar(32);not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
