package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/edustocks/internal/models"
)

func TestRankOf(t *testing.T) {
	tests := []struct {
		xp   int
		want string
	}{
		{0, "Novice"},
		{99, "Novice"},
		{100, "Beginner"},
		{499, "Beginner"},
		{500, "Intermediate"},
		{999, "Intermediate"},
		{1000, "Advanced"},
		{2499, "Advanced"},
		{2500, "Expert"},
		{4999, "Expert"},
		{5000, "Master"},
		{1_000_000, "Master"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RankOf(tt.xp), "xp=%d", tt.xp)
	}
}

func TestRankOf_Monotonic(t *testing.T) {
	order := map[string]int{"Novice": 0, "Beginner": 1, "Intermediate": 2, "Advanced": 3, "Expert": 4, "Master": 5}
	prev := order[RankOf(0)]
	for xp := 1; xp <= 6000; xp++ {
		r, ok := order[RankOf(xp)]
		require.True(t, ok, "xp=%d", xp)
		require.GreaterOrEqual(t, r, prev, "xp=%d", xp)
		prev = r
	}
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, models.Beginner, LevelOf(0))
	assert.Equal(t, models.Beginner, LevelOf(1999))
	assert.Equal(t, models.Intermediate, LevelOf(2000))
	assert.Equal(t, models.Advanced, LevelOf(5000))
}

func TestLevelProgressAndMilestone(t *testing.T) {
	assert.Equal(t, 0.0, LevelProgress(0))
	assert.Equal(t, 25.0, LevelProgress(1250))
	assert.Equal(t, 99.9, LevelProgress(999))
	assert.Equal(t, 0.0, LevelProgress(3000))

	assert.Equal(t, 1000, XPToNextMilestone(0))
	assert.Equal(t, 750, XPToNextMilestone(1250))
	assert.Equal(t, 1, XPToNextMilestone(999))
}

func TestAchievements(t *testing.T) {
	assert.Len(t, Achievements(nil), 2)

	four := &models.UserProgress{CompletedLessons: []string{"a", "b", "c", "d"}}
	assert.Len(t, Achievements(four), 2)
	assert.False(t, KnowledgeSeeker(4))

	five := &models.UserProgress{CompletedLessons: []string{"a", "b", "c", "d", "e"}}
	got := Achievements(five)
	require.Len(t, got, 3)
	assert.Equal(t, "Knowledge Seeker", got[2].Name)
}

func TestBuildProfile(t *testing.T) {
	p := &models.UserProgress{Level: models.Beginner, XP: 1250, Rank: "Beginner", CompletedLessons: []string{"a"}}
	pf := &models.Portfolio{Balance: 8000, TotalValue: 10500, Holdings: []models.Holding{{Symbol: "AAPL", Quantity: 10}}}

	prof := BuildProfile("a@b.c", p, pf)
	assert.Equal(t, "Advanced", prof.Rank, "rank comes from xp")
	assert.Equal(t, models.Beginner, prof.Level, "level comes from the backend")
	assert.Equal(t, 25.0, prof.LevelProgress)
	assert.Equal(t, 750, prof.XPToNext)
	assert.Equal(t, 2500.0, prof.HoldingsValue)
	assert.Equal(t, 1, prof.Positions)
	assert.True(t, RankMismatch(p))
}

func TestBuildProfile_NilInputs(t *testing.T) {
	prof := BuildProfile("a@b.c", nil, nil)
	assert.Equal(t, "Novice", prof.Rank)
	assert.Equal(t, Milestone, prof.XPToNext)
	assert.Zero(t, prof.Balance)
	assert.False(t, RankMismatch(nil))
}

type fakeBackend struct {
	progress     *models.UserProgress
	portfolio    *models.Portfolio
	progressErr  error
	portfolioErr error
}

func (f fakeBackend) Progress(ctx context.Context) (*models.UserProgress, error) {
	return f.progress, f.progressErr
}

func (f fakeBackend) Portfolio(ctx context.Context) (*models.Portfolio, error) {
	return f.portfolio, f.portfolioErr
}

func TestLoadProfile_PartialFailure(t *testing.T) {
	b := fakeBackend{
		progress:     &models.UserProgress{XP: 600, Level: models.Beginner},
		portfolioErr: errors.New("down"),
	}
	prof := LoadProfile(context.Background(), b, "a@b.c", zerolog.Nop())
	assert.Equal(t, "Intermediate", prof.Rank)
	assert.Zero(t, prof.TotalValue)

	b = fakeBackend{
		progressErr: errors.New("down"),
		portfolio:   &models.Portfolio{Balance: 10000, TotalValue: 10000},
	}
	prof = LoadProfile(context.Background(), b, "a@b.c", zerolog.Nop())
	assert.Equal(t, "Novice", prof.Rank)
	assert.Equal(t, 10000.0, prof.Balance)
	assert.Zero(t, prof.HoldingsValue)
}
