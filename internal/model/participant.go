package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant is one signup within a contest. Email is unique per contest;
// the referral code is globally unique and never changes once issued.
// JoinedContest distinguishes a bare signup from completion of the contest's
// call-to-action; only joined participants are visible to referral tracking.
type Participant struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContestID      uuid.UUID `gorm:"type:uuid;not null;index" json:"contest_id"`
	Email          string    `gorm:"type:varchar(255);not null" json:"email"`
	ReferralCode   string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"referral_code"`
	ReferralCount  int       `gorm:"not null;default:0" json:"referral_count"`
	ReferredByCode string    `gorm:"type:varchar(64)" json:"referred_by_code,omitempty"`
	JoinedContest  bool      `gorm:"not null;default:false" json:"joined_contest"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	FieldValues []ParticipantFieldValue `gorm:"foreignKey:ParticipantID" json:"field_values,omitempty"`
}

func (Participant) TableName() string { return "participants" }

func (p *Participant) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ParticipantFieldValue is a sparse answer to a contest custom field; one row
// per non-empty answer.
type ParticipantFieldValue struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantID uuid.UUID `gorm:"type:uuid;not null;index" json:"participant_id"`
	FieldID       uuid.UUID `gorm:"type:uuid;not null;index" json:"field_id"`
	Value         string    `gorm:"type:text;not null" json:"value"`

	CreatedAt time.Time `json:"created_at"`
}

func (ParticipantFieldValue) TableName() string { return "participant_field_values" }

func (v *ParticipantFieldValue) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
