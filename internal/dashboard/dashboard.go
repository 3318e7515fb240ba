// Package dashboard loads the landing overview: portfolio, learning progress
// and the leading quotes.
package dashboard

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/progress"
)

// TopStocks is how many quotes the overview lists
const TopStocks = 5

// StartingBalance is shown as the portfolio value before a portfolio exists.
const StartingBalance = 10000.0

// Backend is what the dashboard reads
type Backend interface {
	Portfolio(ctx context.Context) (*models.Portfolio, error)
	Progress(ctx context.Context) (*models.UserProgress, error)
	Stocks(ctx context.Context) ([]models.Stock, error)
}

// Overview is the loaded dashboard
type Overview struct {
	Portfolio *models.Portfolio
	Progress  *models.UserProgress
	Stocks    []models.Stock
}

// Load fetches all three sources concurrently. A failed source falls back
// to its default and never fails the others.
func Load(ctx context.Context, backend Backend, log zerolog.Logger) Overview {
	ov := Overview{Stocks: []models.Stock{}}
	var g errgroup.Group
	g.Go(func() error {
		pf, err := backend.Portfolio(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Dashboard portfolio unavailable")
			return nil
		}
		ov.Portfolio = pf
		return nil
	})
	g.Go(func() error {
		p, err := backend.Progress(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Dashboard progress unavailable")
			return nil
		}
		ov.Progress = p
		return nil
	})
	g.Go(func() error {
		stocks, err := backend.Stocks(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Dashboard stocks unavailable")
			return nil
		}
		if len(stocks) > TopStocks {
			stocks = stocks[:TopStocks]
		}
		ov.Stocks = stocks
		return nil
	})
	_ = g.Wait()
	return ov
}

// PortfolioValue is the total value, or the starting balance without a portfolio.
func (o Overview) PortfolioValue() float64 {
	if o.Portfolio == nil {
		return StartingBalance
	}
	return o.Portfolio.TotalValue
}

// Cash is the uninvested balance, or the starting balance without a portfolio.
func (o Overview) Cash() float64 {
	if o.Portfolio == nil {
		return StartingBalance
	}
	return o.Portfolio.Balance
}

func (o Overview) XP() int {
	if o.Progress == nil {
		return 0
	}
	return o.Progress.XP
}

func (o Overview) Rank() string { return progress.RankOf(o.XP()) }

func (o Overview) LevelProgress() float64 { return progress.LevelProgress(o.XP()) }

func (o Overview) CompletedLessons() int {
	if o.Progress == nil {
		return 0
	}
	return len(o.Progress.CompletedLessons)
}
