package gamification

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPRequiredForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{1, 100},
		{2, 120},
		{5, 180},
		{6, 200},
		{10, 280},
		{11, 280},
		{15, 400},
		{16, 400},
		{21, 600},
		{30, 1050},
		{31, 800},
		{41, 1100},
		{51, 1500},
		{70, 3400},
		{71, 2000},
		{91, 2500},
		{100, 4300},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, XPRequiredForLevel(tt.level), "level %d", tt.level)
	}
}

func TestLevelForXP(t *testing.T) {
	t.Run("Zero", func(t *testing.T) {
		info := LevelForXP(0)
		assert.Equal(t, 1, info.Level)
		assert.Equal(t, int64(0), info.CurrentXPInLevel)
		assert.Equal(t, int64(100), info.XPRequiredForNext)
	})

	t.Run("ExactlyFirstLevel", func(t *testing.T) {
		info := LevelForXP(100)
		assert.Equal(t, 2, info.Level)
		assert.Equal(t, int64(0), info.CurrentXPInLevel)
		assert.Equal(t, int64(120), info.XPRequiredForNext)
	})

	t.Run("MidLevel", func(t *testing.T) {
		info := LevelForXP(170)
		assert.Equal(t, 2, info.Level)
		assert.Equal(t, int64(70), info.CurrentXPInLevel)
		assert.Equal(t, int64(120), info.XPRequiredForNext)
	})

	t.Run("OneShort", func(t *testing.T) {
		info := LevelForXP(99)
		assert.Equal(t, 1, info.Level)
		assert.Equal(t, int64(99), info.CurrentXPInLevel)
	})

	t.Run("Negative", func(t *testing.T) {
		assert.Equal(t, LevelForXP(0), LevelForXP(-10))
	})

	t.Run("CrossesBreakpoint", func(t *testing.T) {
		// levels 1..5 cost 100+120+140+160+180 = 700
		info := LevelForXP(700)
		assert.Equal(t, 6, info.Level)
		assert.Equal(t, int64(200), info.XPRequiredForNext)
	})
}

func TestLevelForXPInvariants(t *testing.T) {
	prev := LevelForXP(0)
	for xp := int64(0); xp <= 50000; xp += 37 {
		info := LevelForXP(xp)
		require.GreaterOrEqual(t, info.Level, 1)
		require.GreaterOrEqual(t, info.CurrentXPInLevel, int64(0))
		require.Less(t, info.CurrentXPInLevel, info.XPRequiredForNext)
		require.GreaterOrEqual(t, info.Level, prev.Level, "level must not drop at xp %d", xp)
		prev = info
	}
}

// walkLevels consumes XP one level at a time.
func walkLevels(totalXP int64) (int, int64) {
	level, remaining := 1, totalXP
	for remaining >= XPRequiredForLevel(level) {
		remaining -= XPRequiredForLevel(level)
		level++
	}
	return level, remaining
}

func TestLevelForXPMatchesLevelWalk(t *testing.T) {
	// cumulative XP at every level start, plus the values either side
	var boundaries []int64
	var total int64
	for level := 1; level <= 150; level++ {
		boundaries = append(boundaries, total-1, total, total+1)
		total += XPRequiredForLevel(level)
	}
	for xp := int64(0); xp <= 400000; xp += 997 {
		boundaries = append(boundaries, xp)
	}

	for _, xp := range boundaries {
		if xp < 0 {
			continue
		}
		level, remaining := walkLevels(xp)
		info := LevelForXP(xp)
		require.Equal(t, level, info.Level, "level at xp %d", xp)
		require.Equal(t, remaining, info.CurrentXPInLevel, "xp in level at xp %d", xp)
		require.Equal(t, XPRequiredForLevel(level), info.XPRequiredForNext)
	}
}

func TestLevelForXPHugeValues(t *testing.T) {
	start := time.Now()
	for _, xp := range []int64{1 << 40, 1 << 62, math.MaxInt64} {
		info := LevelForXP(xp)
		assert.Greater(t, info.Level, 100)
		assert.GreaterOrEqual(t, info.CurrentXPInLevel, int64(0))
		assert.Less(t, info.CurrentXPInLevel, info.XPRequiredForNext)
		assert.Equal(t, XPRequiredForLevel(info.Level), info.XPRequiredForNext)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLeveledUp(t *testing.T) {
	assert.True(t, LeveledUp(90, 110))
	assert.False(t, LeveledUp(100, 150))
	assert.False(t, LeveledUp(150, 150))
}

func TestLevelTitle(t *testing.T) {
	assert.Equal(t, "Pustakawan Pemula", LevelTitle(1))
	assert.Equal(t, "Pustakawan Pemula", LevelTitle(5))
	assert.Equal(t, "Penjelajah Halaman", LevelTitle(6))
	assert.Equal(t, "Cendekiawan", LevelTitle(50))
	assert.Equal(t, "Penjaga Warisan Kata", LevelTitle(90))
	assert.Equal(t, "Legenda Literasi", LevelTitle(91))
}

func TestLevelHistory(t *testing.T) {
	steps := LevelHistory(250)
	// 250 = 100 (lv1) + 120 (lv2) + 30 into level 3
	require.Len(t, steps, 4)

	assert.True(t, steps[0].IsComplete)
	assert.Equal(t, int64(100), steps[0].CurrentXP)
	assert.True(t, steps[1].IsComplete)

	current := steps[2]
	assert.True(t, current.IsCurrent)
	assert.Equal(t, 3, current.Level)
	assert.Equal(t, int64(30), current.CurrentXP)
	assert.Equal(t, int64(140), current.XPToNext)

	next := steps[3]
	assert.True(t, next.IsNext)
	assert.Equal(t, 4, next.Level)
	assert.Equal(t, int64(160), next.XPToNext)
}
