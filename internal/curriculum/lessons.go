// Package curriculum is the sandbox's built-in learning content: the lesson
// catalog and a canned practice trainer.
package curriculum

import (
	"sort"
	"strings"

	"github.com/atharvakonge/edustocks/internal/models"
)

// Catalog is an immutable set of lessons
type Catalog struct {
	byID    map[string]models.Lesson
	ordered []models.Lesson
}

// NewCatalog indexes lessons, ordered by level then by their order field.
func NewCatalog(lessons []models.Lesson) *Catalog {
	c := &Catalog{byID: make(map[string]models.Lesson, len(lessons))}
	for _, l := range lessons {
		c.byID[l.ID] = l
		c.ordered = append(c.ordered, l)
	}
	rank := map[models.Level]int{models.Beginner: 0, models.Intermediate: 1, models.Advanced: 2}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		a, b := c.ordered[i], c.ordered[j]
		if rank[a.Level] != rank[b.Level] {
			return rank[a.Level] < rank[b.Level]
		}
		return a.Order < b.Order
	})
	return c
}

// Lessons returns lessons at level, or all of them when level is empty.
func (c *Catalog) Lessons(level string) []models.Lesson {
	out := make([]models.Lesson, 0, len(c.ordered))
	for _, l := range c.ordered {
		if level == "" || strings.EqualFold(string(l.Level), level) {
			out = append(out, l)
		}
	}
	return out
}

// Lesson looks up a lesson by id
func (c *Catalog) Lesson(id string) (models.Lesson, bool) {
	l, ok := c.byID[id]
	return l, ok
}

func q(id, text string, correct int, explanation string, options ...string) models.Question {
	return models.Question{ID: id, Question: text, Options: options, CorrectAnswer: correct, Explanation: explanation}
}

// DefaultLessons is the seed curriculum, three lessons per level
func DefaultLessons() []models.Lesson {
	return []models.Lesson{
		{
			ID: "lesson-1", Title: "What is a Stock?", Level: models.Beginner, Order: 1,
			Description: "Learn the basics of stocks and how they work",
			Content:     "A stock is a share of ownership in a company. Shareholders own a slice of the business and its future profits.",
			Questions: []models.Question{
				q("q1", "What does owning a stock mean?", 0,
					"A share is a unit of ownership, so a shareholder is a partial owner of the company.",
					"You own a piece of the company", "You lent money to the company", "You work for the company", "You are a customer of the company"),
				q("q2", "What is a person who owns shares called?", 1,
					"Owning shares makes you a shareholder.",
					"A creditor", "A shareholder", "A broker", "A regulator"),
			},
		},
		{
			ID: "lesson-2", Title: "Reading Stock Prices", Level: models.Beginner, Order: 2,
			Description: "Understand how to read and interpret stock prices",
			Content:     "Prices move with supply and demand. A quote shows the last price, the change since the open, and the traded volume.",
			Questions: []models.Question{
				q("q1", "A stock opens at $100 and closes at $105. What is the change?", 0,
					"The change is the close minus the open: $105 - $100 = $5.",
					"+$5", "-$5", "+$105", "+5 shares"),
				q("q2", "What does volume measure?", 2,
					"Volume is the number of shares traded in a period.",
					"The share price", "The company's revenue", "The number of shares traded", "The number of shareholders"),
			},
		},
		{
			ID: "lesson-3", Title: "Stock Market Basics", Level: models.Beginner, Order: 3,
			Description: "Learn how the stock market operates",
			Content:     "Exchanges match buyers and sellers. Companies raise capital by issuing shares, and investors trade those shares afterwards.",
			Questions: []models.Question{
				q("q1", "What is the primary purpose of the stock market?", 0,
					"Markets let companies raise capital and let investors own and trade parts of companies.",
					"To let companies raise capital and investors own parts of companies", "To set government policy", "To control inflation", "To replace banks"),
			},
		},
		{
			ID: "lesson-4", Title: "Fundamental Analysis", Level: models.Intermediate, Order: 1,
			Description: "Analyze companies using financial statements",
			Content:     "Fundamental analysis values a company from its income statement, balance sheet and cash flow statement.",
			Questions: []models.Question{
				q("q1", "Which ratio compares a company's share price to its earnings?", 0,
					"The P/E ratio divides the share price by earnings per share.",
					"P/E ratio", "Current ratio", "Debt-to-equity", "Dividend yield"),
				q("q2", "Which statement shows what a company owns and owes at a point in time?", 1,
					"The balance sheet lists assets, liabilities and equity.",
					"Income statement", "Balance sheet", "Cash flow statement", "Annual letter"),
			},
		},
		{
			ID: "lesson-5", Title: "Technical Analysis", Level: models.Intermediate, Order: 2,
			Description: "Understand price charts and trading patterns",
			Content:     "Technical analysis studies historical prices. Moving averages and the relative strength index are common indicators.",
			Questions: []models.Question{
				q("q1", "What does a moving average help identify?", 0,
					"Averaging prices over a window smooths noise and shows the trend.",
					"The price trend", "The company's earnings", "The dividend date", "The bid-ask spread"),
			},
		},
		{
			ID: "lesson-6", Title: "Portfolio Management", Level: models.Intermediate, Order: 3,
			Description: "Build and manage a diversified portfolio",
			Content:     "Diversifying across sectors and asset types lowers the impact of any single holding on the whole portfolio.",
			Questions: []models.Question{
				q("q1", "Why is diversification important?", 0,
					"Spreading money across assets reduces the damage any one of them can do.",
					"It reduces risk by spreading investments", "It maximizes returns every year", "It avoids taxes", "It guarantees profits"),
			},
		},
		{
			ID: "lesson-7", Title: "Options Trading", Level: models.Advanced, Order: 1,
			Description: "Advanced derivatives trading strategies",
			Content:     "An option is the right, not the obligation, to buy or sell at a set strike price before expiry.",
			Questions: []models.Question{
				q("q1", "Which option gives the right to buy at a predetermined price?", 0,
					"A call option is the right to buy at the strike price.",
					"Call option", "Put option", "Futures contract", "Bond"),
				q("q2", "Which option gains value when the underlying falls?", 1,
					"A put is the right to sell at the strike, which is worth more as the price drops.",
					"Call option", "Put option", "Covered call", "Warrant"),
			},
		},
		{
			ID: "lesson-8", Title: "Risk Management", Level: models.Advanced, Order: 2,
			Description: "Master advanced risk management techniques",
			Content:     "Position sizing, stop-loss orders, correlation analysis and value at risk keep losses within a plan.",
			Questions: []models.Question{
				q("q1", "What is Value at Risk (VaR) used for?", 0,
					"VaR estimates the largest expected loss over a period at a given confidence level.",
					"Measuring potential losses under normal conditions", "Guaranteeing no losses", "Increasing leverage", "Reducing fees"),
			},
		},
		{
			ID: "lesson-9", Title: "Market Psychology", Level: models.Advanced, Order: 3,
			Description: "Understand investor behavior and market dynamics",
			Content:     "Fear and greed move markets. Herding amplifies trends and contrarians bet against the crowd.",
			Questions: []models.Question{
				q("q1", "What is herding behavior in markets?", 0,
					"Herding is following the crowd instead of independent analysis.",
					"Investors following the crowd's decisions", "Companies hiring more staff", "Prices falling", "Taxes rising"),
			},
		},
	}
}
