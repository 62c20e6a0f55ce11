package repository

import (
	"context"

	"readhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// SessionTotals are the XP-relevant sums over a user's sessions.
type SessionTotals struct {
	Pages         int64
	StreakBonusXP int64
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.ReadingSession) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.ReadingSession, error)
	ListSince(ctx context.Context, userID, sinceDate string) ([]models.ReadingSession, error)
	Dates(ctx context.Context, userID string) ([]string, error)
	Totals(ctx context.Context, userID string) (SessionTotals, error)
	DeleteByBook(ctx context.Context, userID, bookID string) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.ReadingSession) error {
	return translate(r.db.WithContext(ctx).Create(session).Error)
}

// ListByUser returns sessions newest first. limit <= 0 means no limit.
func (r *sessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.ReadingSession, error) {
	var sessions []models.ReadingSession
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("read_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, translate(err)
	}
	return sessions, nil
}

// ListSince returns sessions whose local date is on or after sinceDate.
func (r *sessionRepository) ListSince(ctx context.Context, userID, sinceDate string) ([]models.ReadingSession, error) {
	var sessions []models.ReadingSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, sinceDate).
		Order("read_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, translate(err)
	}
	return sessions, nil
}

// Dates returns the distinct local dates the user read on, ascending.
func (r *sessionRepository) Dates(ctx context.Context, userID string) ([]string, error) {
	var dates []string
	err := r.db.WithContext(ctx).
		Model(&models.ReadingSession{}).
		Where("user_id = ?", userID).
		Distinct().
		Order("date ASC").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, translate(err)
	}
	return dates, nil
}

func (r *sessionRepository) Totals(ctx context.Context, userID string) (SessionTotals, error) {
	var row struct {
		Pages         int64
		StreakBonusXP int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ReadingSession{}).
		Select("COALESCE(SUM(pages_read), 0) AS pages, COALESCE(SUM(streak_bonus_xp), 0) AS streak_bonus_xp").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return SessionTotals{}, translate(err)
	}
	return SessionTotals{Pages: row.Pages, StreakBonusXP: row.StreakBonusXP}, nil
}

func (r *sessionRepository) DeleteByBook(ctx context.Context, userID, bookID string) error {
	return translate(r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&models.ReadingSession{}).Error)
}
