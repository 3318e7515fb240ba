// Package db is the sandbox ledger: cash balances, positions, trade history
// and learning progress.
package db

import (
	"context"
	"errors"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/progress"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientShares  = errors.New("insufficient shares")
	ErrInvalidTrade        = errors.New("invalid trade")
)

// Position is a stored holding before it is priced
type Position struct {
	Symbol       string
	Quantity     int
	AveragePrice float64
}

// Account is a user's cash and positions
type Account struct {
	UserID    string
	Balance   float64
	Positions []Position
}

// Store persists the sandbox ledger. Account and Progress create the
// record with defaults on first access.
type Store interface {
	EnsureUser(ctx context.Context, userID, email string) error
	Account(ctx context.Context, userID string) (*Account, error)
	// ApplyTrade atomically moves cash and shares and records t.
	ApplyTrade(ctx context.Context, t models.Trade) error
	Trades(ctx context.Context, userID string, limit int) ([]models.Trade, error)
	Progress(ctx context.Context, userID string) (*models.UserProgress, error)
	// CompleteLesson awards XP the first time lessonID is completed and
	// reports whether it did.
	CompleteLesson(ctx context.Context, userID, lessonID string, score float64) (*models.UserProgress, bool, error)
	Close() error
}

// XPForScore is the XP a completion with score earns
func XPForScore(score float64) int {
	return int(score / 10)
}

func validateTrade(t models.Trade) error {
	if t.UserID == "" || t.Symbol == "" || t.Quantity <= 0 || t.Price <= 0 || !t.Side.Valid() {
		return ErrInvalidTrade
	}
	return nil
}

func newProgress(userID string) *models.UserProgress {
	return &models.UserProgress{
		UserID:           userID,
		Level:            models.Beginner,
		CompletedLessons: []string{},
		Rank:             progress.RankOf(0),
	}
}

// award applies a first-time completion to p
func award(p *models.UserProgress, lessonID string, score float64) bool {
	if p.HasCompleted(lessonID) {
		return false
	}
	p.CompletedLessons = append(p.CompletedLessons, lessonID)
	p.XP += XPForScore(score)
	p.Level = progress.LevelOf(p.XP)
	p.Rank = progress.RankOf(p.XP)
	return true
}
