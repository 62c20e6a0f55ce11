package repository

import (
	"context"

	"readhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	GetForUpdate(ctx context.Context, userID string) (*models.UserProfile, error)
	// Ensure inserts profile unless one already exists for its user.
	Ensure(ctx context.Context, profile *models.UserProfile) error
	Save(ctx context.Context, profile *models.UserProfile) error
	UpdateXP(ctx context.Context, userID string, xp int64, level int, totalPages int64) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetForUpdate(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profileRepository) Ensure(ctx context.Context, profile *models.UserProfile) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(profile).Error)
}

func (r *profileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	return translate(r.db.WithContext(ctx).Save(profile).Error)
}

func (r *profileRepository) UpdateXP(ctx context.Context, userID string, xp int64, level int, totalPages int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"xp":               xp,
			"level":            level,
			"total_pages_read": totalPages,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *profileRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}
