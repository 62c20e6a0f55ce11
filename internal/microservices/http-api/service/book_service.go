package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/repository"

	"github.com/jonboulle/clockwork"
)

type BookInput struct {
	Title       string
	Author      string
	Genres      []string
	TotalPages  int
	CurrentPage int
	Status      string
	CoverURL    *string
}

// BookPatch holds the fields of an update; nil fields are left alone.
type BookPatch struct {
	Title       *string
	Author      *string
	Genres      []string
	TotalPages  *int
	CurrentPage *int
	Status      *string
	CoverURL    *string
}

type BookService interface {
	Create(ctx context.Context, userID string, in BookInput) (*models.Book, error)
	Get(ctx context.Context, userID, bookID string) (*models.Book, error)
	List(ctx context.Context, userID, status string) ([]models.Book, error)
	Update(ctx context.Context, userID, bookID string, patch BookPatch) (*models.Book, error)
	Delete(ctx context.Context, userID, bookID string) error
}

type bookService struct {
	store  repository.Store
	xp     XPSyncService
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewBookService returns a BookService that resyncs the owner's XP after
// every change to a shelf.
func NewBookService(store repository.Store, xp XPSyncService, clock clockwork.Clock, logger *slog.Logger) BookService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bookService{store: store, xp: xp, clock: clock, logger: logger}
}

func validStatus(status string) bool {
	switch status {
	case models.BookStatusWishlist, models.BookStatusReading, models.BookStatusCompleted:
		return true
	}
	return false
}

func cleanGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := map[string]bool{}
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// normalize enforces the shelf invariants on b and stamps completion.
func (s *bookService) normalize(b *models.Book) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	if b.Title == "" {
		return invalid("title", "Title is required.")
	}
	if b.TotalPages < 1 {
		return invalid("total_pages", "Total pages must be at least 1.")
	}
	if b.CurrentPage < 0 {
		return invalid("current_page", "Current page cannot be negative.")
	}
	if b.CurrentPage > b.TotalPages {
		return invalid("current_page", "This book only has %d pages.", b.TotalPages)
	}
	if !validStatus(b.Status) {
		return invalid("status", "Unknown status %q.", b.Status)
	}

	// a book read to its last page counts as completed whatever status was sent
	if b.CurrentPage == b.TotalPages {
		b.Status = models.BookStatusCompleted
	}
	if b.Status == models.BookStatusCompleted {
		b.CurrentPage = b.TotalPages
		if b.CompletedAt == nil {
			now := s.clock.Now()
			b.CompletedAt = &now
		}
	} else {
		b.CompletedAt = nil
	}
	return nil
}

func (s *bookService) Create(ctx context.Context, userID string, in BookInput) (*models.Book, error) {
	if in.Status == "" {
		in.Status = models.BookStatusReading
	}
	book := &models.Book{
		UserID:      userID,
		Title:       in.Title,
		Author:      in.Author,
		Genres:      cleanGenres(in.Genres),
		TotalPages:  in.TotalPages,
		CurrentPage: in.CurrentPage,
		Status:      in.Status,
		CoverURL:    in.CoverURL,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.normalize(book); err != nil {
		return nil, err
	}

	err := inTx(ctx, s.store, func(tx repository.Store) error {
		if err := tx.Profiles().Ensure(ctx, newProfile(userID, "", "")); err != nil {
			return storeErr("create profile", err)
		}
		return storeErr("create book", tx.Books().Create(ctx, book))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("book_created", "user_id", userID, "book_id", book.ID, "status", book.Status)
	s.resync(ctx, userID)
	return book, nil
}

func (s *bookService) Get(ctx context.Context, userID, bookID string) (*models.Book, error) {
	book, err := s.store.Books().GetByID(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, storeErr("load book", err)
	}
	return book, nil
}

func (s *bookService) List(ctx context.Context, userID, status string) ([]models.Book, error) {
	if status != "" && !validStatus(status) {
		return nil, invalid("status", "Unknown status %q.", status)
	}
	books, err := s.store.Books().ListByUser(ctx, userID, status)
	if err != nil {
		return nil, storeErr("list books", err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

func (s *bookService) Update(ctx context.Context, userID, bookID string, patch BookPatch) (*models.Book, error) {
	var book *models.Book
	err := inTx(ctx, s.store, func(tx repository.Store) error {
		var err error
		book, err = tx.Books().GetForUpdate(ctx, userID, bookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return storeErr("load book", err)
		}

		if patch.Title != nil {
			book.Title = *patch.Title
		}
		if patch.Author != nil {
			book.Author = *patch.Author
		}
		if patch.Genres != nil {
			book.Genres = cleanGenres(patch.Genres)
		}
		if patch.TotalPages != nil {
			book.TotalPages = *patch.TotalPages
		}
		if patch.CurrentPage != nil {
			book.CurrentPage = *patch.CurrentPage
		}
		if patch.Status != nil {
			book.Status = *patch.Status
		}
		if patch.CoverURL != nil {
			book.CoverURL = patch.CoverURL
		}
		if err := s.normalize(book); err != nil {
			return err
		}
		return storeErr("update book", tx.Books().Update(ctx, book))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book_updated", "user_id", userID, "book_id", bookID, "status", book.Status)
	s.resync(ctx, userID)
	return book, nil
}

// Delete removes the book's sessions and then the book itself.
func (s *bookService) Delete(ctx context.Context, userID, bookID string) error {
	err := inTx(ctx, s.store, func(tx repository.Store) error {
		if _, err := tx.Books().GetForUpdate(ctx, userID, bookID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookNotFound
			}
			return storeErr("load book", err)
		}
		if err := tx.Sessions().DeleteByBook(ctx, userID, bookID); err != nil {
			return storeErr("delete sessions", err)
		}
		return storeErr("delete book", tx.Books().Delete(ctx, userID, bookID))
	})
	if err != nil {
		return err
	}

	s.logger.Info("book_deleted", "user_id", userID, "book_id", bookID)
	s.resync(ctx, userID)
	return nil
}

// resync failures are logged only; the shelf change has already committed.
func (s *bookService) resync(ctx context.Context, userID string) {
	if s.xp == nil {
		return
	}
	if _, err := s.xp.Resync(ctx, userID); err != nil && !errors.Is(err, ErrProfileNotFound) {
		s.logger.Error("xp_resync_failed", "user_id", userID, "error", err)
	}
}
