package progress

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/atharvakonge/edustocks/internal/models"
)

// Profile is everything the profile page shows
type Profile struct {
	Email            string
	Rank             string
	Level            models.Level
	XP               int
	LevelProgress    float64
	XPToNext         int
	CompletedLessons int
	Balance          float64
	TotalValue       float64
	HoldingsValue    float64
	Positions        int
	Achievements     []Achievement
}

// RankMismatch reports whether the stored rank differs from the one derived from XP.
func RankMismatch(p *models.UserProgress) bool {
	return p != nil && p.Rank != "" && p.Rank != RankOf(p.XP)
}

// BuildProfile combines progress and portfolio, either of which may be nil.
// The rank label is always derived from XP; the level is the backend's.
func BuildProfile(email string, p *models.UserProgress, pf *models.Portfolio) Profile {
	prof := Profile{Email: email, Rank: RankOf(0), XPToNext: Milestone, Achievements: Achievements(p)}
	if p != nil {
		prof.Rank = RankOf(p.XP)
		prof.Level = p.Level
		prof.XP = p.XP
		prof.LevelProgress = LevelProgress(p.XP)
		prof.XPToNext = XPToNextMilestone(p.XP)
		prof.CompletedLessons = len(p.CompletedLessons)
	}
	if pf != nil {
		prof.Balance = pf.Balance
		prof.TotalValue = pf.TotalValue
		prof.HoldingsValue = pf.TotalValue - pf.Balance
		prof.Positions = len(pf.Holdings)
	}
	return prof
}

// Backend is what the profile loader reads
type Backend interface {
	Progress(ctx context.Context) (*models.UserProgress, error)
	Portfolio(ctx context.Context) (*models.Portfolio, error)
}

// LoadProfile fetches progress and portfolio in parallel; each defaults to
// nil on failure.
func LoadProfile(ctx context.Context, backend Backend, email string, log zerolog.Logger) Profile {
	var (
		p  *models.UserProgress
		pf *models.Portfolio
	)
	var g errgroup.Group
	g.Go(func() error {
		v, err := backend.Progress(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Progress unavailable")
			return nil
		}
		p = v
		return nil
	})
	g.Go(func() error {
		v, err := backend.Portfolio(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Portfolio unavailable")
			return nil
		}
		pf = v
		return nil
	})
	_ = g.Wait()

	if RankMismatch(p) {
		log.Debug().Str("stored", p.Rank).Str("derived", RankOf(p.XP)).Msg("Stored rank differs from XP rank")
	}
	return BuildProfile(email, p, pf)
}
