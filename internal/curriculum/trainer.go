package curriculum

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/edustocks/internal/models"
)

// Trainer answers practice and freeform questions from a fixed bank. It
// stands in for a generative model.
type Trainer struct {
	mu   sync.Mutex
	rng  *rand.Rand
	bank map[models.Level][]models.AITrainerQuestion
	// question text -> question, for checking answers
	byText   map[string]models.AITrainerQuestion
	glossary []glossaryEntry
}

type glossaryEntry struct {
	keywords []string
	answer   string
}

// NewTrainer creates a trainer over the default question bank
func NewTrainer() *Trainer {
	t := &Trainer{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		bank:     defaultBank(),
		byText:   make(map[string]models.AITrainerQuestion),
		glossary: defaultGlossary(),
	}
	for _, qs := range t.bank {
		for _, q := range qs {
			t.byText[normalize(q.Question)] = q
		}
	}
	return t
}

// Question picks a practice question at level, preferring topic when one matches.
func (t *Trainer) Question(level models.Level, topic string) models.AITrainerQuestion {
	qs := t.bank[level]
	if len(qs) == 0 {
		qs = t.bank[models.Beginner]
	}
	if topic = strings.TrimSpace(strings.ToLower(topic)); topic != "" {
		var matched []models.AITrainerQuestion
		for _, q := range qs {
			if strings.Contains(strings.ToLower(q.Topic), topic) {
				matched = append(matched, q)
			}
		}
		if len(matched) > 0 {
			qs = matched
		}
	}

	t.mu.Lock()
	q := qs[t.rng.Intn(len(qs))]
	t.mu.Unlock()

	q.ID = uuid.NewString()
	return q
}

// Check grades answer against the question identified by its text.
func (t *Trainer) Check(questionText string, answer int) models.TrainerAnswerResult {
	q, ok := t.byText[normalize(questionText)]
	if !ok {
		return models.TrainerAnswerResult{
			Correct:     false,
			Explanation: "This question is no longer available. Request a new one to keep practicing.",
		}
	}
	return models.TrainerAnswerResult{Correct: answer == q.CorrectAnswer, Explanation: q.Explanation}
}

// Ask answers a freeform query pitched at level.
func (t *Trainer) Ask(query string, level models.Level) string {
	lower := strings.ToLower(query)
	for _, g := range t.glossary {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return fmt.Sprintf("%s %s", g.answer, depthHint(level))
			}
		}
	}
	return fmt.Sprintf("That's a good question about %q. Start with the lessons for your level, then try a small trade in the simulator to see the idea in practice. %s",
		strings.TrimSpace(query), depthHint(level))
}

func depthHint(level models.Level) string {
	switch level {
	case models.Advanced:
		return "At your level, weigh how this interacts with volatility and position sizing."
	case models.Intermediate:
		return "Try relating this to the financial statements of a company you follow."
	}
	return "Keep it simple at first and build on the basics."
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func tq(topic, text string, correct int, explanation string, options ...string) models.AITrainerQuestion {
	return models.AITrainerQuestion{Question: text, Options: options, CorrectAnswer: correct, Explanation: explanation, Topic: topic}
}

func defaultBank() map[models.Level][]models.AITrainerQuestion {
	return map[models.Level][]models.AITrainerQuestion{
		models.Beginner: {
			tq("basics", "What is a dividend?", 1,
				"A dividend is a share of profits a company pays to its shareholders.",
				"A loan to the company", "A payment of profits to shareholders", "A fee charged by brokers", "A type of stock split"),
			tq("basics", "What does a bull market describe?", 0,
				"A bull market is a sustained period of rising prices.",
				"Rising prices", "Falling prices", "Flat prices", "A market holiday"),
			tq("orders", "What does a market order do?", 2,
				"A market order executes immediately at the best available price.",
				"Waits for a target price", "Cancels after one day", "Executes at the best available price", "Only trades at the close"),
		},
		models.Intermediate: {
			tq("valuation", "What does a high P/E ratio usually suggest?", 0,
				"Investors are paying more per dollar of earnings, often because they expect growth.",
				"Investors expect strong growth", "The company has no debt", "The stock pays a large dividend", "The company is unprofitable"),
			tq("technical", "An RSI above 70 is commonly read as what?", 1,
				"RSI above 70 is conventionally considered overbought.",
				"Oversold", "Overbought", "Neutral", "Bankrupt"),
			tq("portfolio", "What is rebalancing?", 3,
				"Rebalancing sells winners and buys laggards to restore target weights.",
				"Buying only one stock", "Moving all money to cash", "Borrowing to invest", "Restoring a portfolio to its target allocation"),
		},
		models.Advanced: {
			tq("options", "What is the maximum loss when buying a call option?", 0,
				"A call buyer can lose at most the premium paid.",
				"The premium paid", "Unlimited", "The strike price", "Twice the premium"),
			tq("risk", "What does a beta of 1.5 indicate?", 2,
				"Beta 1.5 means the stock tends to move 1.5 times as much as the market.",
				"Half the market's volatility", "No relation to the market", "50% more volatile than the market", "A guaranteed 1.5% return"),
			tq("psychology", "What is confirmation bias in investing?", 1,
				"Confirmation bias is favoring information that supports what you already believe.",
				"Waiting for trade confirmations", "Seeking information that supports existing beliefs", "Confirming orders twice", "Trusting audited statements"),
		},
	}
}

func defaultGlossary() []glossaryEntry {
	return []glossaryEntry{
		{[]string{"diversif"}, "Diversification spreads your money across different companies, sectors and asset types so that one bad investment cannot sink the whole portfolio."},
		{[]string{"dividend"}, "A dividend is a portion of a company's profit paid out to shareholders, usually quarterly."},
		{[]string{"p/e", "price to earnings", "price-to-earnings"}, "The P/E ratio is the share price divided by earnings per share. It shows how much investors pay for each dollar of profit."},
		{[]string{"option", "call", "put"}, "An option is a contract giving the right, but not the obligation, to buy (call) or sell (put) at a set strike price before it expires."},
		{[]string{"stop-loss", "stop loss"}, "A stop-loss order sells a position automatically once the price falls to a level you choose, capping the loss."},
		{[]string{"etf", "index fund"}, "An ETF is a basket of securities that trades like a single stock, often tracking an index."},
		{[]string{"bear"}, "A bear market is a sustained decline, commonly defined as a 20% drop from recent highs."},
		{[]string{"bull"}, "A bull market is a sustained rise in prices driven by optimism and strong demand."},
	}
}
