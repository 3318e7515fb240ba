// Package market is the sandbox quote book: a fixed universe of stocks whose
// prices take a random walk and are broadcast to subscribers.
package market

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/models"
)

// DefaultStocks is the opening quote book
func DefaultStocks() []models.Stock {
	return []models.Stock{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 150.00, Volume: 52_000_000},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Price: 380.00, Volume: 21_000_000},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 140.00, Volume: 25_000_000},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 180.00, Volume: 38_000_000},
		{Symbol: "TSLA", Name: "Tesla Inc.", Price: 250.00, Volume: 95_000_000},
		{Symbol: "META", Name: "Meta Platforms Inc.", Price: 480.00, Volume: 14_000_000},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 870.00, Volume: 41_000_000},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Price: 195.00, Volume: 9_000_000},
		{Symbol: "V", Name: "Visa Inc.", Price: 275.00, Volume: 6_000_000},
		{Symbol: "JNJ", Name: "Johnson & Johnson", Price: 155.00, Volume: 7_000_000},
	}
}

// Market holds the live quotes
type Market struct {
	log zerolog.Logger

	mu     sync.RWMutex
	order  []string
	quotes map[string]*models.Stock
	open   map[string]float64
	rng    *rand.Rand

	subMu  sync.Mutex
	subs   map[int]chan models.PriceUpdate
	nextID int
}

// New creates a market seeded with stocks
func New(stocks []models.Stock, log zerolog.Logger) *Market {
	m := &Market{
		log:    log.With().Str("component", "market").Logger(),
		quotes: make(map[string]*models.Stock, len(stocks)),
		open:   make(map[string]float64, len(stocks)),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		subs:   make(map[int]chan models.PriceUpdate),
	}
	for _, s := range stocks {
		s := s
		s.Symbol = strings.ToUpper(s.Symbol)
		m.order = append(m.order, s.Symbol)
		m.quotes[s.Symbol] = &s
		m.open[s.Symbol] = s.Price - s.Change
	}
	return m
}

// List returns every quote in listing order
func (m *Market) List() []models.Stock {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Stock, 0, len(m.order))
	for _, sym := range m.order {
		out = append(out, *m.quotes[sym])
	}
	return out
}

// Get returns the quote for symbol, case-insensitively.
func (m *Market) Get(symbol string) (models.Stock, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.quotes[strings.ToUpper(symbol)]
	if !ok {
		return models.Stock{}, false
	}
	return *s, true
}

// Search matches symbol or name, case-insensitively
func (m *Market) Search(query string) []models.Stock {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.Stock
	for _, s := range m.List() {
		if strings.Contains(strings.ToLower(s.Symbol), q) || strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

// Tick moves one random stock by -2% to +2% and returns the update.
func (m *Market) Tick() models.PriceUpdate {
	m.mu.Lock()
	if len(m.order) == 0 {
		m.mu.Unlock()
		return models.PriceUpdate{}
	}
	symbol := m.order[m.rng.Intn(len(m.order))]
	move := (m.rng.Float64() - 0.5) * 4
	volume := m.rng.Int63n(10_000)
	m.mu.Unlock()
	return m.Set(symbol, 0, move, volume)
}

// Set moves symbol to price, or by movePercent when price is zero, and
// broadcasts the result.
func (m *Market) Set(symbol string, price, movePercent float64, volume int64) models.PriceUpdate {
	symbol = strings.ToUpper(symbol)
	m.mu.Lock()
	s, ok := m.quotes[symbol]
	if !ok {
		m.mu.Unlock()
		return models.PriceUpdate{}
	}
	if price <= 0 {
		price = s.Price * (1 + movePercent/100)
	}
	s.Price = round2(price)
	s.Volume += volume
	open := m.open[symbol]
	s.Change = round2(s.Price - open)
	if open > 0 {
		s.ChangePercent = round2(s.Change / open * 100)
	}
	u := models.PriceUpdate{
		Symbol:        s.Symbol,
		Price:         s.Price,
		Change:        s.Change,
		ChangePercent: s.ChangePercent,
		Timestamp:     time.Now(),
	}
	m.mu.Unlock()

	m.broadcast(u)
	return u
}

// Subscribe returns a channel of updates and a func that ends the
// subscription. Slow subscribers miss updates rather than block the market.
func (m *Market) Subscribe() (<-chan models.PriceUpdate, func()) {
	ch := make(chan models.PriceUpdate, 16)
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
			close(ch)
		})
	}
}

func (m *Market) broadcast(u models.PriceUpdate) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for id, ch := range m.subs {
		select {
		case ch <- u:
		default:
			m.log.Debug().Int("subscriber", id).Str("symbol", u.Symbol).Msg("Dropped price update")
		}
	}
}

// Run ticks every interval until ctx is done
func (m *Market) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	m.log.Info().Dur("interval", interval).Msg("Market simulation started")

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Market simulation stopped")
			return
		case <-ticker.C:
			u := m.Tick()
			m.log.Debug().Str("symbol", u.Symbol).Float64("price", u.Price).Float64("change_pct", u.ChangePercent).Msg("Price update")
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
