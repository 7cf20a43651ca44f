package domain_test

import (
	"testing"
	"time"

	"github.com/lorrc/service-desk-analytics/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{1100, 5},
		{11999, 9},
		{12000, 10},
		{1000000, 10},
		{-5, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.LevelForXP(tt.xp).Level, "xp=%d", tt.xp)
	}
}

func TestLevelForXP_Monotone(t *testing.T) {
	prev := domain.LevelForXP(0).Level
	for xp := 1; xp <= 13000; xp += 7 {
		level := domain.LevelForXP(xp).Level
		require.GreaterOrEqual(t, level, prev, "xp=%d", xp)
		prev = level
	}
}

func TestProgressForXP(t *testing.T) {
	t.Run("mid level", func(t *testing.T) {
		p := domain.ProgressForXP(175)

		assert.Equal(t, 2, p.Current.Level)
		require.NotNil(t, p.Next)
		assert.Equal(t, 3, p.Next.Level)
		assert.InDelta(t, 50.0, p.Percentage, 1e-9)
		assert.Equal(t, 75, p.XPToNext)
	})

	t.Run("top level", func(t *testing.T) {
		p := domain.ProgressForXP(50000)

		assert.Equal(t, 10, p.Current.Level)
		assert.Nil(t, p.Next)
		assert.Equal(t, 100.0, p.Percentage)
		assert.Zero(t, p.XPToNext)
	})

	t.Run("bounded", func(t *testing.T) {
		for _, xp := range []int{-10, 0, 99, 100, 5499, 12000} {
			p := domain.ProgressForXP(xp)
			assert.GreaterOrEqual(t, p.Percentage, 0.0)
			assert.LessOrEqual(t, p.Percentage, 100.0)
		}
	})
}

func TestGamificationProfile_AwardBadges(t *testing.T) {
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	profile := domain.NewGamificationProfile("ana")

	added := profile.AwardBadges([]string{domain.BadgeFirstResolution, domain.BadgeCentury}, at)
	assert.Equal(t, []string{domain.BadgeFirstResolution, domain.BadgeCentury}, added)

	added = profile.AwardBadges([]string{domain.BadgeCentury, domain.BadgeVersatile}, at.Add(time.Hour))
	assert.Equal(t, []string{domain.BadgeVersatile}, added)

	require.Len(t, profile.Badges, 3)
	assert.Equal(t, at, profile.Badges[1].EarnedAt)
	assert.True(t, profile.HasBadge(domain.BadgeVersatile))
	assert.False(t, profile.HasBadge(domain.BadgeMarathon))
}

func TestBadgeByID(t *testing.T) {
	assert.Len(t, domain.Badges, 10)

	b, ok := domain.BadgeByID(domain.BadgeSLAMaster)
	require.True(t, ok)
	assert.Equal(t, domain.RarityRare, b.Rarity)

	_, ok = domain.BadgeByID("unknown")
	assert.False(t, ok)
}
