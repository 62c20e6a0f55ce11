package models

import "time"

// Notification types
const (
	NotificationLevelUp       = "LEVEL_UP"
	NotificationBadgeUnlocked = "BADGE_UNLOCKED"
	NotificationBookCompleted = "BOOK_COMPLETED"
)

type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string    `gorm:"not null" json:"type"` // LEVEL_UP, BADGE_UNLOCKED, BOOK_COMPLETED
	BookID    *string   `gorm:"type:uuid" json:"book_id,omitempty"`
	BadgeID   string    `json:"badge_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `gorm:"column:is_read;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
