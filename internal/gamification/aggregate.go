package gamification

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// BookFacts is the slice of a book the evaluator cares about.
type BookFacts struct {
	Genres     []string
	TotalPages int
	Completed  bool
}

// SessionFacts is the slice of a reading session the evaluator cares about.
type SessionFacts struct {
	PagesRead int
	ReadAt    time.Time
}

// Aggregate holds the counters badge targets are compared with.
type Aggregate struct {
	CompletedByGenre map[string]int64 `json:"completed_by_genre"`
	BooksCompleted   int64            `json:"books_completed"`
	BooksTotal       int64            `json:"books_total"`
	PagesRead        int64            `json:"pages_read"`
	Streak           int64            `json:"streak"`
	MorningSessions  int64            `json:"morning_sessions"`
	NightSessions    int64            `json:"night_sessions"`
	WeekendSessions  int64            `json:"weekend_sessions"`
}

// NormalizeGenre produces the key genres are compared by.
func NormalizeGenre(genre string) string {
	return cases.Fold().String(strings.TrimSpace(genre))
}

// BuildAggregate folds a user's books and sessions into badge counters.
// Session hours and weekdays are taken in loc.
func BuildAggregate(books []BookFacts, sessions []SessionFacts, streak int, loc *time.Location) Aggregate {
	if loc == nil {
		loc = time.UTC
	}
	agg := Aggregate{
		CompletedByGenre: make(map[string]int64),
		BooksTotal:       int64(len(books)),
		Streak:           int64(streak),
	}
	for _, b := range books {
		if !b.Completed {
			continue
		}
		agg.BooksCompleted++
		counted := make(map[string]struct{}, len(b.Genres))
		for _, g := range b.Genres {
			key := NormalizeGenre(g)
			if key == "" {
				continue
			}
			if _, ok := counted[key]; ok {
				continue
			}
			counted[key] = struct{}{}
			agg.CompletedByGenre[key]++
		}
	}
	for _, s := range sessions {
		agg.PagesRead += int64(s.PagesRead)
		if s.ReadAt.IsZero() {
			continue
		}
		local := s.ReadAt.In(loc)
		switch h := local.Hour(); {
		case h >= 6 && h < 10:
			agg.MorningSessions++
		case h >= 22 || h < 6:
			agg.NightSessions++
		}
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			agg.WeekendSessions++
		}
	}
	return agg
}

// Value returns the counter a badge's target is measured against.
func (a Aggregate) Value(b MasterBadge) int64 {
	switch b.Metric {
	case MetricGenreCompleted:
		return a.CompletedByGenre[NormalizeGenre(b.Genre)]
	case MetricBooksCompleted:
		return a.BooksCompleted
	case MetricPagesRead:
		return a.PagesRead
	case MetricStreak:
		return a.Streak
	case MetricMorningSessions:
		return a.MorningSessions
	case MetricNightSessions:
		return a.NightSessions
	case MetricWeekendSessions:
		return a.WeekendSessions
	}
	return 0
}
