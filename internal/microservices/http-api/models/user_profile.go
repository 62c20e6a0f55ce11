package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile carries the gamification state of one user. Level is always
// derived from XP.
type UserProfile struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Username        string    `json:"username"`
	Level           int       `gorm:"not null;default:1" json:"level"`
	XP              int64     `gorm:"not null;default:0" json:"xp"`
	Streak          int       `gorm:"not null;default:0" json:"streak"`
	LastReadingDate *string   `gorm:"size:10" json:"last_reading_date,omitempty"`
	TotalPagesRead  int64     `gorm:"not null;default:0" json:"total_pages_read"`
	Timezone        string    `json:"timezone,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a UserProfile
func (p *UserProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// LastDate returns LastReadingDate or "" when the user never read.
func (p *UserProfile) LastDate() string {
	if p.LastReadingDate == nil {
		return ""
	}
	return *p.LastReadingDate
}

// Location resolves the profile timezone, falling back to def.
func (p *UserProfile) Location(def *time.Location) *time.Location {
	if p.Timezone != "" {
		if loc, err := time.LoadLocation(p.Timezone); err == nil {
			return loc
		}
	}
	if def == nil {
		return time.UTC
	}
	return def
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
