// Package trading is the trading-floor interaction model: quotes, the user's
// portfolio, and a draft order that is only ever committed by the backend.
package trading

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/atharvakonge/edustocks/internal/api"
	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/notify"
	"github.com/atharvakonge/edustocks/internal/scheduler"
)

// DefaultRefreshInterval is how often an active model reloads quotes and
// the portfolio.
const DefaultRefreshInterval = 30 * time.Second

var (
	// ErrInvalidQuantity is returned for a missing stock or a quantity
	// that is not a positive integer.
	ErrInvalidQuantity = errors.New("please enter a valid quantity")
	// ErrTradeInFlight is returned when a trade is already being submitted.
	ErrTradeInFlight = errors.New("a trade is already in progress")
)

// Backend is the slice of the REST backend the trading floor needs
type Backend interface {
	Stocks(ctx context.Context) ([]models.Stock, error)
	Portfolio(ctx context.Context) (*models.Portfolio, error)
	Buy(ctx context.Context, symbol string, quantity int) error
	Sell(ctx context.Context, symbol string, quantity int) error
}

// Options configures a Model
type Options struct {
	Scheduler       *scheduler.Scheduler
	RefreshInterval time.Duration
	// RefreshTimeout bounds each background refresh.
	RefreshTimeout time.Duration
}

// Model holds trading-floor state. Every method is safe for concurrent use.
type Model struct {
	backend  Backend
	notifier notify.Notifier
	log      zerolog.Logger
	opts     Options

	mu        sync.Mutex
	stocks    []models.Stock
	portfolio *models.Portfolio
	selected  *models.Stock
	quantity  string
	side      models.Side
	search    string
	loading   bool
	inFlight  bool
	active    bool
	epoch     uint64
	refreshID scheduler.EntryID
	scheduled bool

	// refreshSeq numbers refresh requests; appliedSeq is the newest applied
	refreshSeq uint64
	appliedSeq uint64
}

// NewModel creates a trading model with side buy and nothing selected
func NewModel(backend Backend, notifier notify.Notifier, opts Options, log zerolog.Logger) *Model {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = opts.RefreshInterval
	}
	return &Model{
		backend:  backend,
		notifier: notifier,
		log:      log.With().Str("component", "trading").Logger(),
		opts:     opts,
		side:     models.Buy,
		loading:  true,
	}
}

// Activate loads data and starts the periodic refresh.
func (m *Model) Activate(ctx context.Context) error {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return nil
	}
	m.active = true
	m.mu.Unlock()

	if m.opts.Scheduler != nil {
		id, err := m.opts.Scheduler.Every(m.opts.RefreshInterval, scheduler.JobFunc{
			JobName: "trading-refresh",
			Fn:      m.backgroundRefresh,
		})
		if err != nil {
			return fmt.Errorf("schedule refresh: %w", err)
		}
		m.mu.Lock()
		m.refreshID = id
		m.scheduled = true
		m.mu.Unlock()
	}

	return m.Refresh(ctx)
}

// Teardown cancels the refresh timer. Responses that arrive afterwards are
// discarded.
func (m *Model) Teardown() {
	m.mu.Lock()
	m.active = false
	m.epoch++
	id, scheduled := m.refreshID, m.scheduled
	m.scheduled = false
	m.mu.Unlock()

	if scheduled && m.opts.Scheduler != nil {
		m.opts.Scheduler.Remove(id)
	}
	m.log.Debug().Msg("Trading model torn down")
}

func (m *Model) backgroundRefresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.RefreshTimeout)
	defer cancel()
	return m.Refresh(ctx)
}

// Refresh fetches stocks and the portfolio in parallel. A failed portfolio
// fetch leaves the portfolio nil; a failed stock fetch keeps the previous
// quotes. Neither failure blocks the other. A response that arrives after a
// newer one has been applied is dropped.
func (m *Model) Refresh(ctx context.Context) error {
	m.mu.Lock()
	epoch := m.epoch
	m.refreshSeq++
	seq := m.refreshSeq
	m.mu.Unlock()

	var (
		stocks       []models.Stock
		portfolio    *models.Portfolio
		stocksErr    error
		portfolioErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		stocks, stocksErr = m.backend.Stocks(ctx)
		return nil
	})
	g.Go(func() error {
		portfolio, portfolioErr = m.backend.Portfolio(ctx)
		return nil
	})
	_ = g.Wait()

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.log.Debug().Msg("Dropping refresh for torn-down view")
		return nil
	}
	if applied := m.appliedSeq; seq < applied {
		m.mu.Unlock()
		m.log.Debug().Uint64("seq", seq).Uint64("applied", applied).Msg("Dropping superseded refresh")
		return nil
	}
	m.appliedSeq = seq
	m.loading = false
	if stocksErr == nil {
		m.stocks = stocks
		if m.selected != nil {
			if updated := findStock(stocks, m.selected.Symbol); updated != nil {
				m.selected = updated
			}
		}
	}
	if portfolioErr == nil {
		m.portfolio = portfolio
	} else {
		m.portfolio = nil
	}
	m.mu.Unlock()

	if portfolioErr != nil {
		m.log.Warn().Err(portfolioErr).Msg("Portfolio unavailable")
	}
	if stocksErr != nil {
		m.log.Error().Err(stocksErr).Msg("Stock refresh failed")
		m.notifier.Error("Failed to load stock data")
		return fmt.Errorf("load stocks: %w", stocksErr)
	}
	return nil
}

func findStock(stocks []models.Stock, symbol string) *models.Stock {
	for i := range stocks {
		if stocks[i].Symbol == symbol {
			s := stocks[i]
			return &s
		}
	}
	return nil
}

// SetSelection selects stock for the draft order. nil clears the selection.
func (m *Model) SetSelection(stock *models.Stock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stock == nil {
		m.selected = nil
		return
	}
	s := *stock
	m.selected = &s
}

// SelectSymbol selects a stock from the loaded list by symbol.
func (m *Model) SelectSymbol(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := findStock(m.stocks, strings.ToUpper(strings.TrimSpace(symbol)))
	if s == nil {
		return false
	}
	m.selected = s
	return true
}

// SetQuantity stores the raw quantity text of the draft
func (m *Model) SetQuantity(text string) {
	m.mu.Lock()
	m.quantity = text
	m.mu.Unlock()
}

// SetSide sets the draft side; anything other than buy or sell is ignored.
func (m *Model) SetSide(side models.Side) {
	if !side.Valid() {
		return
	}
	m.mu.Lock()
	m.side = side
	m.mu.Unlock()
}

// SetSearch sets the stock list filter
func (m *Model) SetSearch(term string) {
	m.mu.Lock()
	m.search = term
	m.mu.Unlock()
}

// ApplyQuote overwrites the price fields of a listed stock with a live
// update. Unknown symbols and updates for an inactive view are ignored.
func (m *Model) ApplyQuote(u models.PriceUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	for i := range m.stocks {
		if m.stocks[i].Symbol != u.Symbol {
			continue
		}
		m.stocks[i].Price = u.Price
		m.stocks[i].Change = u.Change
		m.stocks[i].ChangePercent = u.ChangePercent
		if m.selected != nil && m.selected.Symbol == u.Symbol {
			s := m.stocks[i]
			m.selected = &s
		}
		return
	}
}

// ParseQuantity accepts only a positive base-10 integer.
func ParseQuantity(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n <= 0 {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

// Execute submits the draft order. Validation failures never reach the
// backend. On success the quantity draft is cleared and the model reloads;
// local balances and holdings are never adjusted before that reload.
func (m *Model) Execute(ctx context.Context) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrTradeInFlight
	}
	selected := m.selected
	qty, err := ParseQuantity(m.quantity)
	if selected == nil || err != nil {
		m.mu.Unlock()
		m.notifier.Error("Please enter a valid quantity")
		return ErrInvalidQuantity
	}
	side := m.side
	m.inFlight = true
	epoch := m.epoch
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	symbol := selected.Symbol
	var verb string
	if side == models.Sell {
		err = m.backend.Sell(ctx, symbol, qty)
		verb = "sold"
	} else {
		err = m.backend.Buy(ctx, symbol, qty)
		verb = "bought"
	}
	if err != nil {
		m.log.Warn().Err(err).Str("symbol", symbol).Str("side", string(side)).Int("quantity", qty).Msg("Trade rejected")
		m.notifier.Error(api.MessageOf(err, "Trade failed"))
		return fmt.Errorf("%s %d %s: %w", side, qty, symbol, err)
	}

	m.log.Info().Str("symbol", symbol).Str("side", string(side)).Int("quantity", qty).Msg("Trade executed")
	m.notifier.Success(fmt.Sprintf("Successfully %s %d shares of %s", verb, qty, symbol))

	m.mu.Lock()
	stale := m.epoch != epoch
	if !stale {
		m.quantity = ""
	}
	m.mu.Unlock()
	if stale {
		return nil
	}

	if err := m.Refresh(ctx); err != nil {
		m.log.Warn().Err(err).Msg("Refresh after trade failed")
	}
	return nil
}
