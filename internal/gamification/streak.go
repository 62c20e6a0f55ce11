package gamification

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the ISO calendar-date format used for reading dates.
const DateLayout = "2006-01-02"

// StreakBonusXP is awarded when a streak hits a weekly milestone.
const StreakBonusXP int64 = 50

// StreakBonusPolicy decides which streak lengths earn the weekly bonus.
type StreakBonusPolicy string

const (
	// StreakBonusFirstWeek pays only when the streak becomes exactly 7.
	StreakBonusFirstWeek StreakBonusPolicy = "first_week"
	// StreakBonusEveryWeek pays on every multiple of 7.
	StreakBonusEveryWeek StreakBonusPolicy = "every_week"
)

// ParseStreakBonusPolicy accepts the config spelling of a policy.
func ParseStreakBonusPolicy(s string) (StreakBonusPolicy, error) {
	switch StreakBonusPolicy(s) {
	case StreakBonusFirstWeek, StreakBonusEveryWeek:
		return StreakBonusPolicy(s), nil
	case "":
		return StreakBonusFirstWeek, nil
	}
	return "", fmt.Errorf("unknown streak bonus policy %q", s)
}

// LocalDate formats t as a calendar date in loc. A nil loc means UTC.
func LocalDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// PreviousDate returns the calendar day before date.
func PreviousDate(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -1).Format(DateLayout), nil
}

// NextStreak computes the streak after reading on today.
// lastReadingDate is empty when the user has never read.
func NextStreak(previous int, lastReadingDate, today string) int {
	if lastReadingDate == "" {
		return 1
	}
	if lastReadingDate == today {
		if previous < 1 {
			return 1
		}
		return previous
	}
	yesterday, err := PreviousDate(today)
	if err == nil && lastReadingDate == yesterday {
		return previous + 1
	}
	return 1
}

// StreakBonus returns the bonus XP earned by reaching newStreak.
// Callers only ask when the streak actually changed today.
func StreakBonus(newStreak int, policy StreakBonusPolicy) int64 {
	if newStreak <= 0 {
		return 0
	}
	switch policy {
	case StreakBonusEveryWeek:
		if newStreak%7 == 0 {
			return StreakBonusXP
		}
	default:
		if newStreak == 7 {
			return StreakBonusXP
		}
	}
	return 0
}

// LongestStreak returns the longest run of consecutive calendar days in dates.
// Duplicates and unparsable values are ignored.
func LongestStreak(dates []string) int {
	seen := make(map[string]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
