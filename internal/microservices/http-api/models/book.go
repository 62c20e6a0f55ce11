package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Book statuses
const (
	BookStatusWishlist  = "wishlist"
	BookStatusReading   = "reading"
	BookStatusCompleted = "completed"
)

// Book is a title on a user's shelf. Genres are free-form labels.
type Book struct {
	ID          string                      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string                      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string                      `gorm:"not null" json:"title"`
	Author      string                      `json:"author"`
	Genres      datatypes.JSONSlice[string] `json:"genres"`
	TotalPages  int                         `gorm:"not null" json:"total_pages"`
	CurrentPage int                         `gorm:"not null;default:0" json:"current_page"`
	Status      string                      `gorm:"type:text;not null;default:'reading';index" json:"status"`
	CoverURL    *string                     `json:"cover_url,omitempty"`
	CompletedAt *time.Time                  `json:"completed_at,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a Book
func (b *Book) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return
}

// IsCompleted reports whether the book has been finished.
func (b *Book) IsCompleted() bool {
	return b.Status == BookStatusCompleted
}

// PagesLeft is the number of pages between CurrentPage and the end.
func (b *Book) PagesLeft() int {
	left := b.TotalPages - b.CurrentPage
	if left < 0 {
		return 0
	}
	return left
}

func (Book) TableName() string {
	return "books"
}
