package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/edustocks/internal/db"
	"github.com/atharvakonge/edustocks/internal/models"
)

// ListStocks handles GET /api/stocks
func (s *Server) ListStocks(c *gin.Context) {
	c.JSON(http.StatusOK, s.market.List())
}

// SearchStocks handles GET /api/stocks/search?query=
func (s *Server) SearchStocks(c *gin.Context) {
	stocks := s.market.Search(c.Query("query"))
	if stocks == nil {
		stocks = []models.Stock{}
	}
	c.JSON(http.StatusOK, stocks)
}

// GetStock handles GET /api/stocks/:symbol
func (s *Server) GetStock(c *gin.Context) {
	stock, ok := s.market.Get(c.Param("symbol"))
	if !ok {
		fail(c, http.StatusNotFound, "Stock not found")
		return
	}
	c.JSON(http.StatusOK, stock)
}

// GetPortfolio handles GET /api/portfolio
func (s *Server) GetPortfolio(c *gin.Context) {
	acct, err := s.store.Account(c.Request.Context(), userID(c))
	if err != nil {
		s.log.Error().Err(err).Str("user", userID(c)).Msg("Portfolio load failed")
		fail(c, http.StatusInternalServerError, "Failed to fetch portfolio")
		return
	}
	c.JSON(http.StatusOK, s.valuePortfolio(acct))
}

// valuePortfolio prices every position at the current quote. Positions
// without a quote are valued at their average price.
func (s *Server) valuePortfolio(acct *db.Account) models.Portfolio {
	p := models.Portfolio{
		UserID:     acct.UserID,
		Balance:    acct.Balance,
		Holdings:   make([]models.Holding, 0, len(acct.Positions)),
		TotalValue: acct.Balance,
	}
	for _, pos := range acct.Positions {
		h := models.Holding{Symbol: pos.Symbol, Quantity: pos.Quantity, AveragePrice: pos.AveragePrice}
		price := pos.AveragePrice
		if quote, ok := s.market.Get(pos.Symbol); ok {
			price = quote.Price
		}
		h.Revalue(price)
		p.Holdings = append(p.Holdings, h)
		p.TotalValue += h.TotalValue
	}
	return p
}

// BuyStock handles POST /api/portfolio/buy
func (s *Server) BuyStock(c *gin.Context) {
	s.trade(c, models.Buy)
}

// SellStock handles POST /api/portfolio/sell
func (s *Server) SellStock(c *gin.Context) {
	s.trade(c, models.Sell)
}

func (s *Server) trade(c *gin.Context, side models.Side) {
	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Symbol and a positive quantity are required")
		return
	}

	result := s.trades.SubmitTrade(c.Request.Context(), userID(c), side, req.Symbol, req.Quantity)
	if result.Err != nil {
		status, msg := tradeError(result.Err)
		if status >= http.StatusInternalServerError {
			s.log.Error().Err(result.Err).Str("user", userID(c)).Msg("Trade failed")
		}
		fail(c, status, msg)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Trade executed successfully",
		"trade":   result.Trade,
	})
}

func tradeError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrStockNotFound):
		return http.StatusNotFound, "Stock not found"
	case errors.Is(err, db.ErrInsufficientBalance):
		return http.StatusBadRequest, "Insufficient balance"
	case errors.Is(err, db.ErrInsufficientShares):
		return http.StatusBadRequest, "Insufficient shares"
	case errors.Is(err, db.ErrInvalidTrade):
		return http.StatusBadRequest, "Invalid trade"
	}
	return http.StatusInternalServerError, "Trade failed"
}

// GetTradeHistory handles GET /api/portfolio/trades
func (s *Server) GetTradeHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	trades, err := s.store.Trades(c.Request.Context(), userID(c), limit)
	if err != nil {
		s.log.Error().Err(err).Str("user", userID(c)).Msg("Trade history failed")
		fail(c, http.StatusInternalServerError, "Failed to fetch trades")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trades": trades,
		"count":  len(trades),
	})
}
