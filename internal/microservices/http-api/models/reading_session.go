package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadingSession is one logged reading event. Date is the user's local
// calendar day (YYYY-MM-DD); ReadAt is the instant it was logged.
type ReadingSession struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;index:idx_sessions_user_date" json:"user_id"`
	BookID        string    `gorm:"type:uuid;not null;index" json:"book_id"`
	PagesRead     int       `gorm:"not null" json:"pages_read"`
	Date          string    `gorm:"size:10;not null;index:idx_sessions_user_date" json:"date"`
	ReadAt        time.Time `gorm:"not null" json:"read_at"`
	StreakBonusXP int64     `gorm:"not null;default:0" json:"streak_bonus_xp"`
	CreatedAt     time.Time `json:"created_at"`

	Book *Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
}

// BeforeCreate hook to set UUID before creating a ReadingSession
func (s *ReadingSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}
