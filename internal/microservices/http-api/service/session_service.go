package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"readhub/internal/cache"
	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/repository"

	"github.com/jonboulle/clockwork"
)

// SubmitMode selects how SubmitRequest.Value is interpreted.
type SubmitMode string

const (
	ModePagesRead   SubmitMode = "pages_read"
	ModeCurrentPage SubmitMode = "current_page"
)

type SubmitRequest struct {
	BookID string
	Mode   SubmitMode
	Value  int
}

// XPBreakdown itemises the XP awarded by one submission.
type XPBreakdown struct {
	Pages           int64 `json:"pages"`
	CompletionBonus int64 `json:"completion_bonus"`
	StreakBonus     int64 `json:"streak_bonus"`
	Total           int64 `json:"total"`
}

// Celebration is shown when a submission finishes a book.
type Celebration struct {
	BookID     string   `json:"book_id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	TotalPages int      `json:"total_pages"`
	Genres     []string `json:"genres"`
	FinishedOn string   `json:"finished_on"`
	BonusXP    int64    `json:"bonus_xp"`
	Quote      string   `json:"quote"`
}

type SubmitResult struct {
	Session         models.ReadingSession  `json:"session"`
	ActualPagesRead int                    `json:"actual_pages_read"`
	BookCompleted   bool                   `json:"book_completed"`
	XPAwarded       int64                  `json:"xp_awarded"`
	XP              XPBreakdown            `json:"xp"`
	Streak          int                    `json:"streak"`
	LeveledUp       bool                   `json:"leveled_up"`
	PreviousLevel   int                    `json:"previous_level"`
	Level           gamification.LevelInfo `json:"level"`
	NewBadges       []models.Badge         `json:"new_badges"`
	Quote           string                 `json:"quote"`
	Celebration     *Celebration           `json:"celebration,omitempty"`
}

type SessionService interface {
	Submit(ctx context.Context, userID string, req SubmitRequest) (*SubmitResult, error)
	List(ctx context.Context, userID string, limit int) ([]models.ReadingSession, error)
}

type SessionServiceConfig struct {
	StreakPolicy    gamification.StreakBonusPolicy
	DefaultLocation *time.Location
	Catalog         *gamification.Catalog
	Clock           clockwork.Clock
	PickQuote       func() string
	Logger          *slog.Logger
}

type sessionService struct {
	store  repository.Store
	cache  ProgressCache
	locker UserLocker
	cfg    SessionServiceConfig
}

func NewSessionService(store repository.Store, cache ProgressCache, locker UserLocker, cfg SessionServiceConfig) SessionService {
	if cfg.StreakPolicy == "" {
		cfg.StreakPolicy = gamification.StreakBonusFirstWeek
	}
	if cfg.DefaultLocation == nil {
		cfg.DefaultLocation = time.UTC
	}
	if cfg.Catalog == nil {
		cfg.Catalog = gamification.DefaultCatalog
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.PickQuote == nil {
		cfg.PickQuote = func() string { return gamification.RandomQuote(nil) }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &sessionService{store: store, cache: cache, locker: locker, cfg: cfg}
}

func validateSubmit(req SubmitRequest) error {
	if req.BookID == "" {
		return invalid("book_id", "No book selected.")
	}
	switch req.Mode {
	case ModePagesRead, ModeCurrentPage:
	default:
		return invalid("mode", "Mode must be %q or %q.", ModePagesRead, ModeCurrentPage)
	}
	return nil
}

// pagesFor checks the request against the book and returns the pages read.
func pagesFor(book *models.Book, req SubmitRequest) (int, error) {
	switch req.Mode {
	case ModePagesRead:
		if req.Value < 1 {
			return 0, invalid("pages_read", "Pages read must be at least 1.")
		}
		if left := book.PagesLeft(); req.Value > left {
			return 0, invalid("pages_read", "You only have %d pages left in this book.", left)
		}
		return req.Value, nil
	default:
		if req.Value > book.TotalPages {
			return 0, invalid("current_page", "This book only has %d pages.", book.TotalPages)
		}
		if req.Value <= book.CurrentPage {
			return 0, invalid("current_page", "You've already read past page %d.", book.CurrentPage)
		}
		return req.Value - book.CurrentPage, nil
	}
}

// Submit logs a reading session. Session, book, profile, badge and
// notification writes commit together or not at all.
func (s *sessionService) Submit(ctx context.Context, userID string, req SubmitRequest) (*SubmitResult, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	unlock, err := lockUser(ctx, s.locker, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		result  *SubmitResult
		profile *models.UserProfile
	)
	err = inTx(ctx, s.store, func(tx repository.Store) error {
		var err error
		result, profile, err = s.submitTx(ctx, tx, userID, req)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrValidation) {
			s.cfg.Logger.Error("session_submit_failed", "user_id", userID, "book_id", req.BookID, "error", err)
		}
		return nil, err
	}

	s.refreshCache(ctx, profile)
	s.cfg.Logger.Info("session_submitted",
		"user_id", userID,
		"book_id", req.BookID,
		"pages", result.ActualPagesRead,
		"xp_awarded", result.XPAwarded,
		"streak", result.Streak,
		"level", result.Level.Level,
		"leveled_up", result.LeveledUp,
		"book_completed", result.BookCompleted,
		"new_badges", len(result.NewBadges),
	)
	return result, nil
}

func (s *sessionService) submitTx(ctx context.Context, tx repository.Store, userID string, req SubmitRequest) (*SubmitResult, *models.UserProfile, error) {
	now := s.cfg.Clock.Now()

	profile, err := lockProfile(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	loc := profile.Location(s.cfg.DefaultLocation)
	today := gamification.LocalDate(now, loc)

	book, err := tx.Books().GetForUpdate(ctx, userID, req.BookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrBookNotFound
		}
		return nil, nil, storeErr("load book", err)
	}
	if book.Status != models.BookStatusReading {
		return nil, nil, invalid("book_id", "Only books you are currently reading can be updated.")
	}

	pages, err := pagesFor(book, req)
	if err != nil {
		return nil, nil, err
	}

	newCurrent := book.CurrentPage + pages
	completed := newCurrent >= book.TotalPages

	xp := XPBreakdown{Pages: gamification.PageXP(pages)}
	if completed {
		xp.CompletionBonus = gamification.CompletionBonus(book.TotalPages)
	}
	newStreak := gamification.NextStreak(profile.Streak, profile.LastDate(), today)
	if profile.LastDate() != today {
		xp.StreakBonus = gamification.StreakBonus(newStreak, s.cfg.StreakPolicy)
	}
	xp.Total = xp.Pages + xp.CompletionBonus + xp.StreakBonus

	session := models.ReadingSession{
		UserID:        userID,
		BookID:        book.ID,
		PagesRead:     pages,
		Date:          today,
		ReadAt:        now,
		StreakBonusXP: xp.StreakBonus,
	}
	if err := tx.Sessions().Create(ctx, &session); err != nil {
		return nil, nil, storeErr("insert session", err)
	}

	book.CurrentPage = newCurrent
	if completed {
		book.Status = models.BookStatusCompleted
		book.CompletedAt = &now
	}
	if err := tx.Books().Update(ctx, book); err != nil {
		return nil, nil, storeErr("update book", err)
	}

	previous := gamification.LevelForXP(profile.XP)
	profile.XP += xp.Total
	profile.Streak = newStreak
	profile.LastReadingDate = &today
	profile.TotalPagesRead += int64(pages)
	info := gamification.LevelForXP(profile.XP)
	profile.Level = info.Level
	if err := tx.Profiles().Save(ctx, profile); err != nil {
		return nil, nil, storeErr("update profile", err)
	}

	badges, err := unlockBadges(ctx, tx, s.cfg.Catalog, profile, EventSessionSubmitted, loc, now)
	if err != nil {
		return nil, nil, err
	}

	result := &SubmitResult{
		Session:         session,
		ActualPagesRead: pages,
		BookCompleted:   completed,
		XPAwarded:       xp.Total,
		XP:              xp,
		Streak:          newStreak,
		LeveledUp:       info.Level > previous.Level,
		PreviousLevel:   previous.Level,
		Level:           info,
		NewBadges:       badges,
		Quote:           s.cfg.PickQuote(),
	}
	if result.NewBadges == nil {
		result.NewBadges = []models.Badge{}
	}

	if completed {
		result.Celebration = &Celebration{
			BookID:     book.ID,
			Title:      book.Title,
			Author:     book.Author,
			TotalPages: book.TotalPages,
			Genres:     book.Genres,
			FinishedOn: today,
			BonusXP:    xp.CompletionBonus,
			Quote:      result.Quote,
		}
		bookID := book.ID
		if err := tx.Notifications().Create(ctx, &models.Notification{
			UserID:  userID,
			Type:    models.NotificationBookCompleted,
			BookID:  &bookID,
			Title:   fmt.Sprintf("Finished %s", book.Title),
			Message: fmt.Sprintf("+%d XP completion bonus", xp.CompletionBonus),
		}); err != nil {
			return nil, nil, storeErr("create notification", err)
		}
	}
	if result.LeveledUp {
		if err := tx.Notifications().Create(ctx, &models.Notification{
			UserID:  userID,
			Type:    models.NotificationLevelUp,
			Title:   fmt.Sprintf("Level %d reached", info.Level),
			Message: info.Title,
		}); err != nil {
			return nil, nil, storeErr("create notification", err)
		}
	}
	return result, profile, nil
}

func (s *sessionService) List(ctx context.Context, userID string, limit int) ([]models.ReadingSession, error) {
	sessions, err := s.store.Sessions().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, storeErr("list sessions", err)
	}
	return sessions, nil
}

func (s *sessionService) refreshCache(ctx context.Context, profile *models.UserProfile) {
	if s.cache == nil || profile == nil {
		return
	}
	err := s.cache.Set(ctx, &cache.ProgressSnapshot{
		UserID:          profile.UserID,
		XP:              profile.XP,
		Level:           profile.Level,
		Streak:          profile.Streak,
		LastReadingDate: profile.LastDate(),
		TotalPagesRead:  profile.TotalPagesRead,
		UpdatedAt:       s.cfg.Clock.Now(),
	})
	if err != nil {
		s.cfg.Logger.Warn("progress_cache_set_failed", "user_id", profile.UserID, "error", err)
	}
}

// lockProfile loads the user's profile for update, creating it first if
// this is the user's first activity.
func lockProfile(ctx context.Context, tx repository.Store, userID string) (*models.UserProfile, error) {
	profile, err := tx.Profiles().GetForUpdate(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("load profile", err)
	}
	if err := tx.Profiles().Ensure(ctx, newProfile(userID, "", "")); err != nil {
		return nil, storeErr("create profile", err)
	}
	profile, err = tx.Profiles().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, storeErr("load profile", err)
	}
	return profile, nil
}

func newProfile(userID, username, timezone string) *models.UserProfile {
	return &models.UserProfile{
		UserID:   userID,
		Username: username,
		Level:    1,
		XP:       0,
		Streak:   0,
		Timezone: timezone,
	}
}
