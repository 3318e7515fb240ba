// Package handlers is the sandbox REST backend: the same contract the
// client speaks, served by gin over an in-memory or PostgreSQL ledger.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/curriculum"
	"github.com/atharvakonge/edustocks/internal/db"
	"github.com/atharvakonge/edustocks/internal/market"
)

const userIDKey = "userId"

// Deps are the collaborators a Server is built from
type Deps struct {
	Store   db.Store
	Market  *market.Market
	Trades  *TradeProcessor
	Lessons *curriculum.Catalog
	Trainer *curriculum.Trainer
	Log     zerolog.Logger
}

// Server holds the sandbox backend state
type Server struct {
	store   db.Store
	market  *market.Market
	trades  *TradeProcessor
	lessons *curriculum.Catalog
	trainer *curriculum.Trainer
	log     zerolog.Logger
}

// NewServer creates a server from deps
func NewServer(d Deps) *Server {
	return &Server{
		store:   d.Store,
		market:  d.Market,
		trades:  d.Trades,
		lessons: d.Lessons,
		trainer: d.Trainer,
		log:     d.Log.With().Str("component", "api").Logger(),
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ws/prices", s.HandleWebSocket)

	api := router.Group("/api")
	{
		api.GET("/stocks", s.ListStocks)
		api.GET("/stocks/search", s.SearchStocks)
		api.GET("/stocks/:symbol", s.GetStock)
	}

	authed := api.Group("", s.requireUser())
	{
		authed.POST("/auth/verify", s.Verify)

		authed.GET("/portfolio", s.GetPortfolio)
		authed.POST("/portfolio/buy", s.BuyStock)
		authed.POST("/portfolio/sell", s.SellStock)
		authed.GET("/portfolio/trades", s.GetTradeHistory)

		authed.GET("/lessons", s.ListLessons)
		authed.GET("/lessons/:id", s.GetLesson)
		authed.POST("/lessons/:id/complete", s.CompleteLesson)
		authed.GET("/progress", s.GetProgress)

		authed.POST("/ai-trainer/question", s.TrainerQuestion)
		authed.POST("/ai-trainer/answer", s.TrainerAnswer)
		authed.POST("/ai-trainer/ask", s.TrainerAsk)
	}

	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Not found")
	})
	return router
}

// requireUser takes the bearer token as the user id. The sandbox trusts
// any non-empty token.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			fail(c, http.StatusUnauthorized, "Unauthorized: missing or invalid token")
			c.Abort()
			return
		}
		c.Set(userIDKey, token)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := s.log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = s.log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request")
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// fail writes the error envelope the client extracts messages from
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
