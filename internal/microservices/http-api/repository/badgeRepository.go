package repository

import (
	"context"

	"readhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Badge, error)
	// Insert reports false when the user already holds the badge.
	Insert(ctx context.Context, badge *models.Badge) (bool, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) ListByUser(ctx context.Context, userID string) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC").
		Find(&badges).Error
	if err != nil {
		return nil, translate(err)
	}
	return badges, nil
}

func (r *badgeRepository) Insert(ctx context.Context, badge *models.Badge) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(badge)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}
