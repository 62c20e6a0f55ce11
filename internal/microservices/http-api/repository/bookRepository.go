package repository

import (
	"context"

	"readhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, userID, bookID string) (*models.Book, error)
	GetForUpdate(ctx context.Context, userID, bookID string) (*models.Book, error)
	ListByUser(ctx context.Context, userID, status string) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, userID, bookID string) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return translate(r.db.WithContext(ctx).Create(book).Error)
}

func (r *bookRepository) GetByID(ctx context.Context, userID, bookID string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", bookID, userID).
		First(&book).Error
	if err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

// GetForUpdate locks the row until the surrounding transaction ends.
// sqlite has no row locks and serializes writers instead.
func (r *bookRepository) GetForUpdate(ctx context.Context, userID, bookID string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", bookID, userID).
		First(&book).Error
	if err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

// ListByUser returns the user's books, newest first. An empty status
// returns all of them.
func (r *bookRepository) ListByUser(ctx context.Context, userID, status string) ([]models.Book, error) {
	var books []models.Book
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&books).Error; err != nil {
		return nil, translate(err)
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return translate(r.db.WithContext(ctx).Save(book).Error)
}

func (r *bookRepository) Delete(ctx context.Context, userID, bookID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", bookID, userID).
		Delete(&models.Book{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
