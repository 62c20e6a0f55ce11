package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"readhub/internal/cache"
	"readhub/internal/gamification"
	"readhub/internal/microservices/http-api/models"
	"readhub/internal/microservices/http-api/repository"

	"github.com/jonboulle/clockwork"
)

// Progress is the dashboard view of a profile. Streak is the effective
// streak: it reads 0 once a full day has been missed, even before the next
// submission resets the stored value.
type Progress struct {
	UserID          string                 `json:"user_id"`
	Username        string                 `json:"username,omitempty"`
	XP              int64                  `json:"xp"`
	Level           gamification.LevelInfo `json:"level"`
	Streak          int                    `json:"streak"`
	LastReadingDate string                 `json:"last_reading_date,omitempty"`
	TotalPagesRead  int64                  `json:"total_pages_read"`
	Cached          bool                   `json:"cached"`
}

type DayPages struct {
	Date  string `json:"date"`
	Pages int    `json:"pages"`
}

type Stats struct {
	TotalBooks         int        `json:"total_books"`
	CompletedBooks     int        `json:"completed_books"`
	ReadingBooks       int        `json:"reading_books"`
	TotalPagesRead     int64      `json:"total_pages_read"`
	AveragePagesPerDay int        `json:"average_pages_per_day"`
	TopGenre           string     `json:"top_genre"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	Month              []DayPages `json:"month"`
}

// Activity kinds
const (
	ActivityAddBook        = "add_book"
	ActivityCompleteBook   = "complete_book"
	ActivityReadingSession = "reading_session"
)

type Activity struct {
	Type       string    `json:"type"`
	BookID     string    `json:"book_id"`
	SessionID  string    `json:"session_id,omitempty"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	PagesRead  int       `json:"pages_read,omitempty"`
	TotalPages int       `json:"total_pages,omitempty"`
	Time       time.Time `json:"time"`
}

type ProgressService interface {
	EnsureProfile(ctx context.Context, userID, username, timezone string) (*models.UserProfile, error)
	GetProgress(ctx context.Context, userID string) (*Progress, error)
	Stats(ctx context.Context, userID string) (*Stats, error)
	Activities(ctx context.Context, userID string, limit int) ([]Activity, error)
}

type progressService struct {
	store      repository.Store
	cache      ProgressCache
	defaultLoc *time.Location
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewProgressService(store repository.Store, cache ProgressCache, defaultLoc *time.Location, clock clockwork.Clock, logger *slog.Logger) ProgressService {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &progressService{
		store:      store,
		cache:      cache,
		defaultLoc: defaultLoc,
		clock:      clock,
		logger:     logger,
	}
}

func (s *progressService) EnsureProfile(ctx context.Context, userID, username, timezone string) (*models.UserProfile, error) {
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, invalid("timezone", "Unknown timezone %q.", timezone)
		}
	}
	if err := s.store.Profiles().Ensure(ctx, newProfile(userID, username, timezone)); err != nil {
		return nil, storeErr("create profile", err)
	}
	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr("load profile", err)
	}
	return profile, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID string) (*Progress, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("progress_cache_get_failed", "user_id", userID, "error", err)
		} else if snap != nil {
			p := &Progress{
				UserID:          snap.UserID,
				XP:              snap.XP,
				Level:           gamification.LevelForXP(snap.XP),
				Streak:          snap.Streak,
				LastReadingDate: snap.LastReadingDate,
				TotalPagesRead:  snap.TotalPagesRead,
				Cached:          true,
			}
			p.Streak = s.effectiveStreak(p.Streak, p.LastReadingDate, s.defaultLoc)
			return p, nil
		}
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, &cache.ProgressSnapshot{
			UserID:          profile.UserID,
			XP:              profile.XP,
			Level:           profile.Level,
			Streak:          profile.Streak,
			LastReadingDate: profile.LastDate(),
			TotalPagesRead:  profile.TotalPagesRead,
			UpdatedAt:       s.clock.Now(),
		}); err != nil {
			s.logger.Warn("progress_cache_set_failed", "user_id", userID, "error", err)
		}
	}
	return &Progress{
		UserID:          profile.UserID,
		Username:        profile.Username,
		XP:              profile.XP,
		Level:           gamification.LevelForXP(profile.XP),
		Streak:          s.effectiveStreak(profile.Streak, profile.LastDate(), profile.Location(s.defaultLoc)),
		LastReadingDate: profile.LastDate(),
		TotalPagesRead:  profile.TotalPagesRead,
	}, nil
}

func (s *progressService) effectiveStreak(streak int, last string, loc *time.Location) int {
	if last == "" {
		return 0
	}
	today := gamification.LocalDate(s.clock.Now(), loc)
	if last == today {
		return streak
	}
	if yesterday, err := gamification.PreviousDate(today); err == nil && last == yesterday {
		return streak
	}
	return 0
}

func (s *progressService) Stats(ctx context.Context, userID string) (*Stats, error) {
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	loc := profile.Location(s.defaultLoc)
	now := s.clock.Now().In(loc)

	books, err := s.store.Books().ListByUser(ctx, userID, "")
	if err != nil {
		return nil, storeErr("list books", err)
	}
	totals, err := s.store.Sessions().Totals(ctx, userID)
	if err != nil {
		return nil, storeErr("sum sessions", err)
	}
	dates, err := s.store.Sessions().Dates(ctx, userID)
	if err != nil {
		return nil, storeErr("list session dates", err)
	}

	stats := &Stats{
		TotalBooks:     len(books),
		TotalPagesRead: totals.Pages,
		TopGenre:       "None",
		CurrentStreak:  s.effectiveStreak(profile.Streak, profile.LastDate(), loc),
		LongestStreak:  gamification.LongestStreak(dates),
	}
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}

	genreCounts := map[string]int{}
	var genreOrder []string
	for _, b := range books {
		switch b.Status {
		case models.BookStatusCompleted:
			stats.CompletedBooks++
			for _, g := range b.Genres {
				if genreCounts[g] == 0 {
					genreOrder = append(genreOrder, g)
				}
				genreCounts[g]++
			}
		case models.BookStatusReading:
			stats.ReadingBooks++
		}
	}
	best := 0
	for _, g := range genreOrder {
		if genreCounts[g] > best {
			best = genreCounts[g]
			stats.TopGenre = g
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	since := now.AddDate(0, 0, -30)
	if monthStart.Before(since) {
		since = monthStart
	}
	recent, err := s.store.Sessions().ListSince(ctx, userID, since.Format(gamification.DateLayout))
	if err != nil {
		return nil, storeErr("list recent sessions", err)
	}

	windowStart := now.AddDate(0, 0, -30).Format(gamification.DateLayout)
	perDay := map[string]int{}
	var windowPages int
	activeDays := map[string]struct{}{}
	for _, rs := range recent {
		perDay[rs.Date] += rs.PagesRead
		if rs.Date >= windowStart {
			windowPages += rs.PagesRead
			activeDays[rs.Date] = struct{}{}
		}
	}
	if len(activeDays) > 0 {
		stats.AveragePagesPerDay = int(float64(windowPages)/float64(len(activeDays)) + 0.5)
	}

	for d := monthStart; d.Month() == monthStart.Month(); d = d.AddDate(0, 0, 1) {
		key := d.Format(gamification.DateLayout)
		stats.Month = append(stats.Month, DayPages{Date: key, Pages: perDay[key]})
	}
	return stats, nil
}

// Activities merges book and session events, newest first. limit <= 0
// returns everything.
func (s *progressService) Activities(ctx context.Context, userID string, limit int) ([]Activity, error) {
	books, err := s.store.Books().ListByUser(ctx, userID, "")
	if err != nil {
		return nil, storeErr("list books", err)
	}
	sessions, err := s.store.Sessions().ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, storeErr("list sessions", err)
	}

	byID := make(map[string]models.Book, len(books))
	activities := make([]Activity, 0, len(books)+len(sessions))
	for _, b := range books {
		byID[b.ID] = b
		activities = append(activities, Activity{
			Type:   ActivityAddBook,
			BookID: b.ID,
			Title:  b.Title,
			Author: b.Author,
			Time:   b.CreatedAt,
		})
		if b.IsCompleted() {
			finished := b.UpdatedAt
			if b.CompletedAt != nil {
				finished = *b.CompletedAt
			}
			activities = append(activities, Activity{
				Type:       ActivityCompleteBook,
				BookID:     b.ID,
				Title:      b.Title,
				Author:     b.Author,
				TotalPages: b.TotalPages,
				Time:       finished,
			})
		}
	}
	for _, rs := range sessions {
		a := Activity{
			Type:      ActivityReadingSession,
			BookID:    rs.BookID,
			SessionID: rs.ID,
			Title:     "Unknown Book",
			Author:    "Unknown Author",
			PagesRead: rs.PagesRead,
			Time:      rs.ReadAt,
		}
		if b, ok := byID[rs.BookID]; ok {
			a.Title, a.Author = b.Title, b.Author
		}
		activities = append(activities, a)
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Time.After(activities[j].Time)
	})
	if limit > 0 && len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func (s *progressService) loadProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, storeErr("load profile", err)
	}
	return profile, nil
}
