package models

import "time"

// Stock represents a tradable instrument's latest quote
type Stock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
}

// Holding represents a user's position in one stock
type Holding struct {
	Symbol        string  `json:"symbol"`
	Quantity      int     `json:"quantity"`
	AveragePrice  float64 `json:"averagePrice"`
	CurrentPrice  float64 `json:"currentPrice"`
	TotalValue    float64 `json:"totalValue"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profitPercent"`
}

// Revalue recomputes the derived fields of the holding at the given price.
func (h *Holding) Revalue(price float64) {
	h.CurrentPrice = price
	h.TotalValue = float64(h.Quantity) * price
	cost := h.AveragePrice * float64(h.Quantity)
	h.Profit = h.TotalValue - cost
	if cost > 0 {
		h.ProfitPercent = h.Profit / cost * 100
	} else {
		h.ProfitPercent = 0
	}
}

// Portfolio represents a user's tradable account
type Portfolio struct {
	UserID     string    `json:"userId"`
	Balance    float64   `json:"balance"`
	Holdings   []Holding `json:"holdings"`
	TotalValue float64   `json:"totalValue"`
}

// Holding returns the position for symbol, or nil when none is held.
func (p *Portfolio) Holding(symbol string) *Holding {
	if p == nil {
		return nil
	}
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i]
		}
	}
	return nil
}

// HoldingsValue is the market value of all positions, excluding cash.
func (p *Portfolio) HoldingsValue() float64 {
	if p == nil {
		return 0
	}
	var sum float64
	for _, h := range p.Holdings {
		sum += h.TotalValue
	}
	return sum
}

// Side is the direction of a trade
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Valid reports whether s is buy or sell.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// TradeRequest - what the client sends to buy or sell
type TradeRequest struct {
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

// Trade is a ledger entry recorded by the sandbox backend
type Trade struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Symbol    string    `json:"symbol"`
	Side      Side      `json:"side"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"createdAt"`
}

// PriceUpdate is one tick on the live quote stream
type PriceUpdate struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Timestamp     time.Time `json:"timestamp"`
}
