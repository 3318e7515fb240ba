package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/db"
	"github.com/atharvakonge/edustocks/internal/market"
	"github.com/atharvakonge/edustocks/internal/models"
)

// ErrStockNotFound is returned for a symbol the market does not list
var ErrStockNotFound = errors.New("stock not found")

// ErrProcessorStopped is returned for trades submitted after Stop
var ErrProcessorStopped = errors.New("trade processor stopped")

// TradeResult represents result of a trade operation
type TradeResult struct {
	Trade *models.Trade
	Err   error
}

// TradeOrder is a trade waiting in the queue
type TradeOrder struct {
	ctx      context.Context
	UserID   string
	Side     models.Side
	Symbol   string
	Quantity int
	ResultCh chan TradeResult // Channel to send result back
}

// TradeProcessor handles concurrent trade processing
type TradeProcessor struct {
	workers      int
	tradeQueue   chan TradeOrder
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	portfolioMgr *models.PortfolioManager
	store        db.Store
	market       *market.Market
	log          zerolog.Logger
}

// NewTradeProcessor creates a new trade processor with worker pool
func NewTradeProcessor(workers int, store db.Store, mkt *market.Market, log zerolog.Logger) *TradeProcessor {
	if workers <= 0 {
		workers = 1
	}
	return &TradeProcessor{
		workers:      workers,
		tradeQueue:   make(chan TradeOrder, 100), // Buffer of 100 trades
		stopCh:       make(chan struct{}),
		portfolioMgr: models.NewPortfolioManager(),
		store:        store,
		market:       mkt,
		log:          log.With().Str("component", "trade_processor").Logger(),
	}
}

// Start starts the worker pool
func (tp *TradeProcessor) Start() {
	for i := 0; i < tp.workers; i++ {
		tp.wg.Add(1)
		go tp.worker(i)
	}
	tp.log.Info().Int("workers", tp.workers).Msg("Started trade workers")
}

// Stop gracefully stops all workers
func (tp *TradeProcessor) Stop() {
	tp.stopOnce.Do(func() { close(tp.stopCh) })
	tp.wg.Wait()
	tp.log.Info().Msg("Trade processor stopped")
}

// worker processes trades from the queue
func (tp *TradeProcessor) worker(id int) {
	defer tp.wg.Done()

	for {
		select {
		case <-tp.stopCh:
			return

		case order := <-tp.tradeQueue:
			tp.log.Debug().
				Int("worker", id).
				Str("user", order.UserID).
				Str("side", string(order.Side)).
				Str("symbol", order.Symbol).
				Int("quantity", order.Quantity).
				Msg("Processing trade")

			order.ResultCh <- tp.processTrade(order)
		}
	}
}

// processTrade executes a single trade at the current quote with
// per-user locking
func (tp *TradeProcessor) processTrade(order TradeOrder) TradeResult {
	var trade models.Trade
	// Lock portfolio for THIS USER ONLY (not global!)
	err := tp.portfolioMgr.WithUser(order.UserID, func() error {
		quote, ok := tp.market.Get(order.Symbol)
		if !ok {
			return ErrStockNotFound
		}
		trade = models.Trade{
			ID:        uuid.NewString(),
			UserID:    order.UserID,
			Symbol:    quote.Symbol,
			Side:      order.Side,
			Quantity:  order.Quantity,
			Price:     quote.Price,
			Total:     quote.Price * float64(order.Quantity),
			CreatedAt: time.Now().UTC(),
		}
		return tp.store.ApplyTrade(order.ctx, trade)
	})
	if err != nil {
		return TradeResult{Err: err}
	}

	tp.log.Info().
		Str("trade", trade.ID).
		Str("user", trade.UserID).
		Str("side", string(trade.Side)).
		Str("symbol", trade.Symbol).
		Int("quantity", trade.Quantity).
		Float64("total", trade.Total).
		Msg("Trade completed")
	return TradeResult{Trade: &trade}
}

// SubmitTrade submits a trade to the processing queue and waits for its result
func (tp *TradeProcessor) SubmitTrade(ctx context.Context, userID string, side models.Side, symbol string, quantity int) TradeResult {
	order := TradeOrder{
		ctx:      ctx,
		UserID:   userID,
		Side:     side,
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Quantity: quantity,
		ResultCh: make(chan TradeResult, 1),
	}

	select {
	case <-tp.stopCh:
		return TradeResult{Err: ErrProcessorStopped}
	default:
	}

	select {
	case tp.tradeQueue <- order:
	case <-tp.stopCh:
		return TradeResult{Err: ErrProcessorStopped}
	case <-ctx.Done():
		return TradeResult{Err: ctx.Err()}
	}

	select {
	case res := <-order.ResultCh:
		return res
	case <-tp.stopCh:
		return TradeResult{Err: ErrProcessorStopped}
	case <-ctx.Done():
		return TradeResult{Err: ctx.Err()}
	}
}
