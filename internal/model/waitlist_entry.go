package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitlistEntry is a marketing-site waitlist signup. Queue positions are
// sequential ordinals assigned in signup order; the referral code is unique
// per entry so members can move others onto the list.
type WaitlistEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	QueuePosition  int       `gorm:"uniqueIndex;not null" json:"queue_position"`
	ReferralCode   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"referral_code"`
	ReferredByCode string    `gorm:"type:varchar(64)" json:"referred_by_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (WaitlistEntry) TableName() string { return "waitlist_entries" }

func (w *WaitlistEntry) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
