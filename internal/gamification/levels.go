package gamification

import "math/bits"

// Breakpoint defines the XP cost of levels starting at StartLevel.
// The cost of level L is BaseXP + (L-StartLevel)*Increment.
type Breakpoint struct {
	StartLevel int
	BaseXP     int64
	Increment  int64
}

// LevelBreakpoints must stay sorted by StartLevel.
var LevelBreakpoints = []Breakpoint{
	{StartLevel: 1, BaseXP: 100, Increment: 20},
	{StartLevel: 6, BaseXP: 200, Increment: 20},
	{StartLevel: 11, BaseXP: 280, Increment: 30},
	{StartLevel: 16, BaseXP: 400, Increment: 40},
	{StartLevel: 21, BaseXP: 600, Increment: 50},
	{StartLevel: 31, BaseXP: 800, Increment: 60},
	{StartLevel: 41, BaseXP: 1100, Increment: 70},
	{StartLevel: 51, BaseXP: 1500, Increment: 100},
	{StartLevel: 71, BaseXP: 2000, Increment: 150},
	{StartLevel: 91, BaseXP: 2500, Increment: 200},
}

// LevelInfo describes where a total XP value sits on the level curve.
type LevelInfo struct {
	Level             int    `json:"level"`
	CurrentXPInLevel  int64  `json:"current_xp_in_level"`
	XPRequiredForNext int64  `json:"xp_required_for_next"`
	TotalXP           int64  `json:"total_xp"`
	Title             string `json:"title"`
}

// LevelStep is one row of a user's level history.
type LevelStep struct {
	Level      int    `json:"level"`
	Title      string `json:"title"`
	CurrentXP  int64  `json:"current_xp"`
	XPToNext   int64  `json:"xp_to_next"`
	IsCurrent  bool   `json:"is_current,omitempty"`
	IsNext     bool   `json:"is_next,omitempty"`
	IsComplete bool   `json:"is_complete,omitempty"`
}

// XPRequiredForLevel returns the XP needed to go from level to level+1.
func XPRequiredForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	bp := LevelBreakpoints[0]
	for _, candidate := range LevelBreakpoints {
		if candidate.StartLevel > level {
			break
		}
		bp = candidate
	}
	return bp.BaseXP + int64(level-bp.StartLevel)*bp.Increment
}

// LevelForXP consumes XP one breakpoint segment at a time, so its cost does
// not grow with the level reached.
func LevelForXP(totalXP int64) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	level := LevelBreakpoints[0].StartLevel
	remaining := totalXP
	for i, bp := range LevelBreakpoints {
		limit := int64(-1)
		if i+1 < len(LevelBreakpoints) {
			limit = int64(LevelBreakpoints[i+1].StartLevel - bp.StartLevel)
		}
		n := affordableLevels(bp, remaining, limit)
		remaining -= segmentCost(bp, n)
		level += int(n)
		if n != limit {
			break
		}
	}
	return LevelInfo{
		Level:             level,
		CurrentXPInLevel:  remaining,
		XPRequiredForNext: XPRequiredForLevel(level),
		TotalXP:           totalXP,
		Title:             LevelTitle(level),
	}
}

// segmentCost is the XP for the first n levels of bp's segment.
func segmentCost(bp Breakpoint, n int64) int64 {
	return n*bp.BaseXP + bp.Increment*(n*(n-1)/2)
}

// fitsBudget reports whether segmentCost(bp, n) <= budget without overflowing.
func fitsBudget(bp Breakpoint, n, budget int64) bool {
	if n > budget/bp.BaseXP {
		return false
	}
	rest := budget - n*bp.BaseXP
	if bp.Increment == 0 || n < 2 {
		return true
	}
	hi, lo := bits.Mul64(uint64(n), uint64(n-1))
	if hi != 0 {
		return false
	}
	return lo/2 <= uint64(rest/bp.Increment)
}

// affordableLevels is the largest n <= limit (unbounded when limit < 0) whose
// segment cost fits in budget. BaseXP must be positive.
func affordableLevels(bp Breakpoint, budget, limit int64) int64 {
	hi := budget/bp.BaseXP + 1
	if limit >= 0 && limit < hi {
		hi = limit
	}
	lo := int64(0)
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if fitsBudget(bp, mid, budget) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// LeveledUp reports whether moving from oldXP to newXP crosses a level boundary.
func LeveledUp(oldXP, newXP int64) bool {
	return LevelForXP(newXP).Level > LevelForXP(oldXP).Level
}

var levelTitles = []struct {
	maxLevel int
	title    string
}{
	{5, "Pustakawan Pemula"},
	{10, "Penjelajah Halaman"},
	{15, "Penggali Ilmu"},
	{20, "Pencinta Buku Sejati"},
	{30, "Ahli Literasi"},
	{40, "Pemburu Cerita"},
	{50, "Cendekiawan"},
	{70, "Sang Guru Bacaan"},
	{90, "Penjaga Warisan Kata"},
}

// LevelTitle returns the display title for a level band.
func LevelTitle(level int) string {
	for _, band := range levelTitles {
		if level <= band.maxLevel {
			return band.title
		}
	}
	return "Legenda Literasi"
}

// LevelHistory lists every completed level, the current level and the next one.
func LevelHistory(totalXP int64) []LevelStep {
	info := LevelForXP(totalXP)
	steps := make([]LevelStep, 0, info.Level+1)
	for level := 1; level < info.Level; level++ {
		required := XPRequiredForLevel(level)
		steps = append(steps, LevelStep{
			Level:      level,
			Title:      LevelTitle(level),
			CurrentXP:  required,
			XPToNext:   required,
			IsComplete: true,
		})
	}
	steps = append(steps, LevelStep{
		Level:     info.Level,
		Title:     info.Title,
		CurrentXP: info.CurrentXPInLevel,
		XPToNext:  info.XPRequiredForNext,
		IsCurrent: true,
	})
	next := info.Level + 1
	steps = append(steps, LevelStep{
		Level:    next,
		Title:    LevelTitle(next),
		XPToNext: XPRequiredForLevel(next),
		IsNext:   true,
	})
	return steps
}
