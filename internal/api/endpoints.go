package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/atharvakonge/edustocks/internal/models"
)

// Stocks lists current quotes
func (c *Client) Stocks(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	if err := c.do(ctx, http.MethodGet, "/stocks", nil, nil, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// Stock fetches a single quote
func (c *Client) Stock(ctx context.Context, symbol string) (*models.Stock, error) {
	var stock models.Stock
	if err := c.do(ctx, http.MethodGet, "/stocks/"+url.PathEscape(symbol), nil, nil, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// Portfolio fetches the current user's portfolio
func (c *Client) Portfolio(ctx context.Context) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := c.do(ctx, http.MethodGet, "/portfolio", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Buy submits a buy command
func (c *Client) Buy(ctx context.Context, symbol string, quantity int) error {
	return c.do(ctx, http.MethodPost, "/portfolio/buy", nil, models.TradeRequest{Symbol: symbol, Quantity: quantity}, nil)
}

// Sell submits a sell command
func (c *Client) Sell(ctx context.Context, symbol string, quantity int) error {
	return c.do(ctx, http.MethodPost, "/portfolio/sell", nil, models.TradeRequest{Symbol: symbol, Quantity: quantity}, nil)
}

// Lessons lists lessons, filtered by level when level is non-empty
func (c *Client) Lessons(ctx context.Context, level models.Level) ([]models.Lesson, error) {
	var query url.Values
	if level != "" {
		query = url.Values{"level": {string(level)}}
	}
	var lessons []models.Lesson
	if err := c.do(ctx, http.MethodGet, "/lessons", query, nil, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// Lesson fetches a single lesson
func (c *Client) Lesson(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := c.do(ctx, http.MethodGet, "/lessons/"+url.PathEscape(id), nil, nil, &lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// CompleteLesson records a completion with a percentage score
func (c *Client) CompleteLesson(ctx context.Context, id string, score float64) error {
	return c.do(ctx, http.MethodPost, "/lessons/"+url.PathEscape(id)+"/complete", nil,
		models.CompleteLessonRequest{Score: &score}, nil)
}

// Progress fetches the user's progress record
func (c *Client) Progress(ctx context.Context) (*models.UserProgress, error) {
	var p models.UserProgress
	if err := c.do(ctx, http.MethodGet, "/progress", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// TrainerQuestion asks the backend to generate a practice question
func (c *Client) TrainerQuestion(ctx context.Context, level models.Level, topic string) (*models.AITrainerQuestion, error) {
	var q models.AITrainerQuestion
	req := models.TrainerQuestionRequest{Level: level, Topic: topic}
	if err := c.do(ctx, http.MethodPost, "/ai-trainer/question", nil, req, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// TrainerAnswer checks an answer. The full question text is sent as the
// question id since generated questions are not stored.
func (c *Client) TrainerAnswer(ctx context.Context, question string, answer int) (*models.TrainerAnswerResult, error) {
	var res models.TrainerAnswerResult
	req := models.TrainerAnswerRequest{QuestionID: question, Answer: answer}
	if err := c.do(ctx, http.MethodPost, "/ai-trainer/answer", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TrainerAsk sends a freeform question and returns the answer verbatim
func (c *Client) TrainerAsk(ctx context.Context, query string, level models.Level) (string, error) {
	var res models.TrainerAskResponse
	req := models.TrainerAskRequest{Query: query, Level: level}
	if err := c.do(ctx, http.MethodPost, "/ai-trainer/ask", nil, req, &res); err != nil {
		return "", err
	}
	return res.Response, nil
}

type verifyRequest struct {
	Token string `json:"token"`
}

// Verify registers a new or returning session with the backend. token is
// also the bearer, since verification runs before the session settles.
func (c *Client) Verify(ctx context.Context, token string) error {
	return c.send(ctx, token, http.MethodPost, "/auth/verify", nil, verifyRequest{Token: token}, nil)
}
