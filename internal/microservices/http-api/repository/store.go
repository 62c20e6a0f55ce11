package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that make up one unit of work.
type Store interface {
	Books() BookRepository
	Sessions() SessionRepository
	Profiles() ProfileRepository
	Badges() BadgeRepository
	Notifications() NotificationRepository

	// Transaction runs fn against a Store bound to a single database
	// transaction. Returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Books() BookRepository                 { return NewBookRepository(s.db) }
func (s *gormStore) Sessions() SessionRepository           { return NewSessionRepository(s.db) }
func (s *gormStore) Profiles() ProfileRepository           { return NewProfileRepository(s.db) }
func (s *gormStore) Badges() BadgeRepository               { return NewBadgeRepository(s.db) }
func (s *gormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
