// Package trainer is the AI trainer interaction: generated practice
// questions and freeform questions answered by the backend.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/notify"
)

var (
	ErrEmptyQuery  = errors.New("please enter a question")
	ErrNoQuestion  = errors.New("no practice question loaded")
	ErrNoSelection = errors.New("no answer selected")
	ErrAnswered    = errors.New("question already answered")
	ErrBusy        = errors.New("request already in progress")
)

// Backend is the slice of the REST backend the trainer needs
type Backend interface {
	Progress(ctx context.Context) (*models.UserProgress, error)
	TrainerQuestion(ctx context.Context, level models.Level, topic string) (*models.AITrainerQuestion, error)
	TrainerAnswer(ctx context.Context, question string, answer int) (*models.TrainerAnswerResult, error)
	TrainerAsk(ctx context.Context, query string, level models.Level) (string, error)
}

// Model holds the trainer state
type Model struct {
	backend  Backend
	notifier notify.Notifier
	log      zerolog.Logger

	mu              sync.Mutex
	level           models.Level
	question        *models.AITrainerQuestion
	selected        int
	hasSelection    bool
	showExplanation bool
	result          *models.TrainerAnswerResult
	query           string
	response        string

	loadingQuestion bool
	submitting      bool
	asking          bool
}

// NewModel creates a trainer at beginner level
func NewModel(backend Backend, notifier notify.Notifier, log zerolog.Logger) *Model {
	return &Model{
		backend:  backend,
		notifier: notifier,
		log:      log.With().Str("component", "trainer").Logger(),
		level:    models.Beginner,
	}
}

// Init takes the difficulty from the user's stored progress when available.
func (m *Model) Init(ctx context.Context) {
	p, err := m.backend.Progress(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("No stored progress, keeping default level")
		return
	}
	if l, ok := models.ParseLevel(string(p.Level)); ok {
		m.mu.Lock()
		m.level = l
		m.mu.Unlock()
	}
}

// SetLevel changes the difficulty used for new questions and freeform asks.
func (m *Model) SetLevel(l models.Level) bool {
	l, ok := models.ParseLevel(string(l))
	if !ok {
		return false
	}
	m.mu.Lock()
	m.level = l
	m.mu.Unlock()
	return true
}

// SetQuery updates the freeform draft
func (m *Model) SetQuery(q string) {
	m.mu.Lock()
	m.query = q
	m.mu.Unlock()
}

// Select picks an answer for the current question until it is revealed.
func (m *Model) Select(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.question == nil || m.showExplanation || i < 0 || i >= len(m.question.Options) {
		return false
	}
	m.selected = i
	m.hasSelection = true
	return true
}

// FetchQuestion replaces the current question and clears any answer state.
// An unrecognized level keeps the model's current level.
func (m *Model) FetchQuestion(ctx context.Context, level models.Level, topic string) error {
	m.mu.Lock()
	if m.loadingQuestion {
		m.mu.Unlock()
		return ErrBusy
	}
	if l, ok := models.ParseLevel(string(level)); ok {
		m.level = l
	}
	level = m.level
	m.loadingQuestion = true
	m.mu.Unlock()

	q, err := m.backend.TrainerQuestion(ctx, level, topic)

	m.mu.Lock()
	m.loadingQuestion = false
	if err == nil {
		m.question = q
		m.selected = 0
		m.hasSelection = false
		m.showExplanation = false
		m.result = nil
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Error().Err(err).Str("level", string(level)).Msg("Practice question failed")
		m.notifier.Error("Failed to load question")
		return fmt.Errorf("fetch question: %w", err)
	}
	return nil
}

// SubmitAnswer sends the current question's text with the selected index
// and reveals the explanation.
func (m *Model) SubmitAnswer(ctx context.Context) (bool, error) {
	m.mu.Lock()
	switch {
	case m.question == nil:
		m.mu.Unlock()
		return false, ErrNoQuestion
	case !m.hasSelection:
		m.mu.Unlock()
		return false, ErrNoSelection
	case m.showExplanation:
		m.mu.Unlock()
		return false, ErrAnswered
	case m.submitting:
		m.mu.Unlock()
		return false, ErrBusy
	}
	m.submitting = true
	question, answer := m.question.Question, m.selected
	m.mu.Unlock()

	res, err := m.backend.TrainerAnswer(ctx, question, answer)

	m.mu.Lock()
	m.submitting = false
	if err == nil {
		m.result = res
		m.showExplanation = true
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Error().Err(err).Msg("Answer check failed")
		m.notifier.Error("Failed to submit answer")
		return false, fmt.Errorf("submit answer: %w", err)
	}
	if res.Correct {
		m.notifier.Success("Correct! Great job!")
	} else {
		m.notifier.Error("Incorrect. Check the explanation.")
	}
	return res.Correct, nil
}

// AskFreeform sends query with a difficulty hint. Blank queries are
// rejected before any request; an unrecognized level sends the current one.
func (m *Model) AskFreeform(ctx context.Context, query string, level models.Level) (string, error) {
	if strings.TrimSpace(query) == "" {
		m.notifier.Error("Please enter a question")
		return "", ErrEmptyQuery
	}

	m.mu.Lock()
	if m.asking {
		m.mu.Unlock()
		return "", ErrBusy
	}
	if l, ok := models.ParseLevel(string(level)); ok {
		level = l
	} else {
		level = m.level
	}
	m.asking = true
	m.mu.Unlock()

	resp, err := m.backend.TrainerAsk(ctx, query, level)

	m.mu.Lock()
	m.asking = false
	if err == nil {
		m.response = resp
		m.query = ""
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Error().Err(err).Msg("Freeform ask failed")
		m.notifier.Error("Failed to get AI response")
		return "", fmt.Errorf("ask trainer: %w", err)
	}
	return resp, nil
}

// Ask sends the current draft at the current level
func (m *Model) Ask(ctx context.Context) (string, error) {
	m.mu.Lock()
	q, l := m.query, m.level
	m.mu.Unlock()
	return m.AskFreeform(ctx, q, l)
}
