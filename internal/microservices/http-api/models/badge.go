package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge is an unlock record. BadgeID references the static catalog; the
// (user, type, name) index keeps legacy rows without an id unique too.
type Badge struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_badges_user_type_name;uniqueIndex:idx_badges_user_badge" json:"user_id"`
	BadgeID     string    `gorm:"not null;uniqueIndex:idx_badges_user_badge" json:"badge_id"`
	BadgeType   string    `gorm:"not null;uniqueIndex:idx_badges_user_type_name" json:"badge_type"`
	BadgeName   string    `gorm:"not null;uniqueIndex:idx_badges_user_type_name" json:"badge_name"`
	BadgeTier   int       `gorm:"not null;default:1" json:"badge_tier"`
	RewardXP    int64     `gorm:"not null;default:0" json:"reward_xp"`
	Description string    `json:"description"`
	UnlockedAt  time.Time `gorm:"not null" json:"unlocked_at"`
}

// BeforeCreate hook to set UUID before creating a Badge
func (b *Badge) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

func (Badge) TableName() string {
	return "badges"
}
