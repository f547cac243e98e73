package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeEmail  FieldType = "email"
	FieldTypePhone  FieldType = "phone"
	FieldTypeNumber FieldType = "number"
	FieldTypeURL    FieldType = "url"
)

// Contest is a referral contest (or plain data-collection form when
// ReferralEnabled is false) owned by a business.
type Contest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID  uuid.UUID `gorm:"type:uuid;not null;index" json:"business_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	PrizeInfo   string    `gorm:"type:text" json:"prize_info"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	Active      bool      `gorm:"not null;default:true" json:"active"`

	ReferralEnabled bool `gorm:"not null;default:true" json:"referral_enabled"`

	WhatsAppEnabled         bool   `gorm:"not null;default:false" json:"whatsapp_enabled"`
	WhatsAppNumber          string `gorm:"type:varchar(32)" json:"whatsapp_number,omitempty"`
	WhatsAppMessageTemplate string `gorm:"type:text" json:"whatsapp_message_template,omitempty"`

	ShowReferralCount bool `gorm:"not null;default:true" json:"show_referral_count"`
	LeaderboardLimit  int  `gorm:"not null;default:10" json:"leaderboard_limit"`

	SuccessMessage string `gorm:"type:text" json:"success_message,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Fields []ContestField `gorm:"foreignKey:ContestID" json:"fields,omitempty"`
}

func (Contest) TableName() string { return "contests" }

func (c *Contest) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ContestField defines one entry of a contest's custom signup form,
// ordered by SortOrder.
type ContestField struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContestID  uuid.UUID `gorm:"type:uuid;not null;index" json:"contest_id"`
	Label      string    `gorm:"type:varchar(255);not null" json:"label"`
	FieldType  FieldType `gorm:"type:varchar(16);not null;default:'text'" json:"field_type"`
	IsRequired bool      `gorm:"not null;default:false" json:"is_required"`
	SortOrder  int       `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContestField) TableName() string { return "contest_fields" }

func (f *ContestField) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
