package db

import (
	"context"
	"sort"
	"sync"

	"github.com/atharvakonge/edustocks/internal/models"
)

// MemoryStore keeps the ledger in process memory
type MemoryStore struct {
	startingBalance float64

	mu       sync.Mutex
	accounts map[string]*memAccount
	trades   map[string][]models.Trade
	progress map[string]*models.UserProgress
}

type memAccount struct {
	email     string
	balance   float64
	positions map[string]*Position
}

// NewMemoryStore creates an empty store whose new accounts start with startingBalance
func NewMemoryStore(startingBalance float64) *MemoryStore {
	return &MemoryStore{
		startingBalance: startingBalance,
		accounts:        make(map[string]*memAccount),
		trades:          make(map[string][]models.Trade),
		progress:        make(map[string]*models.UserProgress),
	}
}

func (s *MemoryStore) account(userID string) *memAccount {
	a, ok := s.accounts[userID]
	if !ok {
		a = &memAccount{balance: s.startingBalance, positions: make(map[string]*Position)}
		s.accounts[userID] = a
	}
	return a
}

func (s *MemoryStore) progressFor(userID string) *models.UserProgress {
	p, ok := s.progress[userID]
	if !ok {
		p = newProgress(userID)
		s.progress[userID] = p
	}
	return p
}

func (s *MemoryStore) EnsureUser(ctx context.Context, userID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(userID)
	if email != "" {
		a.email = email
	}
	s.progressFor(userID)
	return nil
}

func (s *MemoryStore) Account(ctx context.Context, userID string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(userID)
	out := &Account{UserID: userID, Balance: a.balance, Positions: make([]Position, 0, len(a.positions))}
	for _, p := range a.positions {
		out.Positions = append(out.Positions, *p)
	}
	sort.Slice(out.Positions, func(i, j int) bool { return out.Positions[i].Symbol < out.Positions[j].Symbol })
	return out, nil
}

func (s *MemoryStore) ApplyTrade(ctx context.Context, t models.Trade) error {
	if err := validateTrade(t); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(t.UserID)
	total := t.Price * float64(t.Quantity)

	switch t.Side {
	case models.Buy:
		if a.balance < total {
			return ErrInsufficientBalance
		}
		a.balance -= total
		if p, ok := a.positions[t.Symbol]; ok {
			qty := p.Quantity + t.Quantity
			p.AveragePrice = (p.AveragePrice*float64(p.Quantity) + total) / float64(qty)
			p.Quantity = qty
		} else {
			a.positions[t.Symbol] = &Position{Symbol: t.Symbol, Quantity: t.Quantity, AveragePrice: t.Price}
		}
	case models.Sell:
		p, ok := a.positions[t.Symbol]
		if !ok || p.Quantity < t.Quantity {
			return ErrInsufficientShares
		}
		a.balance += total
		p.Quantity -= t.Quantity
		if p.Quantity == 0 {
			delete(a.positions, t.Symbol)
		}
	}

	t.Total = total
	s.trades[t.UserID] = append(s.trades[t.UserID], t)
	return nil
}

func (s *MemoryStore) Trades(ctx context.Context, userID string, limit int) ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.trades[userID]
	out := make([]models.Trade, 0, len(all))
	// newest first
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}

func (s *MemoryStore) Progress(ctx context.Context, userID string) (*models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProgress(s.progressFor(userID)), nil
}

func (s *MemoryStore) CompleteLesson(ctx context.Context, userID, lessonID string, score float64) (*models.UserProgress, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.progressFor(userID)
	awarded := award(p, lessonID, score)
	return copyProgress(p), awarded, nil
}

func (s *MemoryStore) Close() error { return nil }

func copyProgress(p *models.UserProgress) *models.UserProgress {
	cp := *p
	cp.CompletedLessons = append([]string{}, p.CompletedLessons...)
	return &cp
}
