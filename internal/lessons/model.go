// Package lessons steps a user through a lesson's questions and records the
// completion with the backend.
package lessons

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/notify"
)

// Phase is where the model is within the current lesson
type Phase int

const (
	// NotLoaded means no lesson is loaded
	NotLoaded Phase = iota
	// Unanswered accepts answer selections for the current question
	Unanswered
	// Answered shows the explanation and waits for Next
	Answered
	// ReadyToComplete is reached only by lessons without questions
	ReadyToComplete
	// Completed is terminal
	Completed
)

func (p Phase) String() string {
	return [...]string{"not-loaded", "unanswered", "answered", "ready-to-complete", "completed"}[p]
}

var (
	ErrNotLoaded    = errors.New("no lesson loaded")
	ErrNotAnswered  = errors.New("current question has not been answered")
	ErrCompleted    = errors.New("lesson already completed")
	ErrSubmitting   = errors.New("lesson completion already in progress")
	ErrStillPending = errors.New("lesson has unanswered questions")
)

// Backend is the slice of the REST backend lessons need
type Backend interface {
	Lesson(ctx context.Context, id string) (*models.Lesson, error)
	CompleteLesson(ctx context.Context, id string, score float64) error
}

// Model is the lesson progression state machine
type Model struct {
	backend  Backend
	notifier notify.Notifier
	log      zerolog.Logger

	mu         sync.Mutex
	lesson     *models.Lesson
	index      int
	selected   int
	hasAnswer  bool
	score      int
	phase      Phase
	submitting bool
}

// NewModel creates an empty lesson model
func NewModel(backend Backend, notifier notify.Notifier, log zerolog.Logger) *Model {
	return &Model{
		backend:  backend,
		notifier: notifier,
		log:      log.With().Str("component", "lessons").Logger(),
	}
}

// Load fetches lesson id and resets progression. A lesson without questions
// goes straight to ReadyToComplete.
func (m *Model) Load(ctx context.Context, id string) error {
	lesson, err := m.backend.Lesson(ctx, id)
	if err != nil {
		m.log.Error().Err(err).Str("lesson", id).Msg("Lesson load failed")
		m.notifier.Error("Failed to load lesson")
		return fmt.Errorf("load lesson %s: %w", id, err)
	}
	m.Reset(lesson)
	return nil
}

// Reset starts progression over for lesson
func (m *Model) Reset(lesson *models.Lesson) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lesson = lesson
	m.index = 0
	m.hasAnswer = false
	m.selected = 0
	m.score = 0
	m.submitting = false
	switch {
	case lesson == nil:
		m.phase = NotLoaded
	case len(lesson.Questions) == 0:
		m.phase = ReadyToComplete
	default:
		m.phase = Unanswered
	}
}

// Select chooses an answer for the current question. It is accepted only
// while the question is unanswered and i is a valid option.
func (m *Model) Select(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Unanswered {
		return false
	}
	if !m.lesson.Questions[m.index].ValidAnswer(i) {
		return false
	}
	m.selected = i
	m.hasAnswer = true
	return true
}

// Submit grades the selected answer. Without a selection it does nothing
// and returns ok false.
func (m *Model) Submit() (correct, ok bool) {
	m.mu.Lock()
	if m.phase != Unanswered || !m.hasAnswer {
		m.mu.Unlock()
		return false, false
	}
	correct = m.selected == m.lesson.Questions[m.index].CorrectAnswer
	if correct {
		m.score++
	}
	m.phase = Answered
	m.mu.Unlock()

	if correct {
		m.notifier.Success("Correct!")
	} else {
		m.notifier.Error("Incorrect. Check the explanation.")
	}
	return correct, true
}

// Next moves to the following question, or completes the lesson after the
// last one.
func (m *Model) Next(ctx context.Context) error {
	m.mu.Lock()
	if m.phase != Answered {
		m.mu.Unlock()
		return ErrNotAnswered
	}
	if m.index < len(m.lesson.Questions)-1 {
		m.index++
		m.hasAnswer = false
		m.selected = 0
		m.phase = Unanswered
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()
	return m.Complete(ctx)
}

// FinalScore returns score / total × 100. A lesson without questions scores 0.
func FinalScore(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// Complete submits the unrounded percentage. On failure the model stays
// where it was so the user can try again.
func (m *Model) Complete(ctx context.Context) error {
	m.mu.Lock()
	switch {
	case m.phase == NotLoaded:
		m.mu.Unlock()
		return ErrNotLoaded
	case m.phase == Completed:
		m.mu.Unlock()
		return ErrCompleted
	case m.submitting:
		m.mu.Unlock()
		return ErrSubmitting
	case m.phase == Unanswered, m.phase == Answered && m.index < len(m.lesson.Questions)-1:
		m.mu.Unlock()
		return ErrStillPending
	}
	lesson := m.lesson
	id := lesson.ID
	finalScore := FinalScore(m.score, len(lesson.Questions))
	m.submitting = true
	m.mu.Unlock()

	err := m.backend.CompleteLesson(ctx, id, finalScore)

	m.mu.Lock()
	// a Reset while the request ran owns the state now
	if m.lesson == lesson {
		m.submitting = false
		if err == nil {
			m.phase = Completed
		}
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Error().Err(err).Str("lesson", id).Msg("Lesson completion failed")
		m.notifier.Error("Failed to complete lesson")
		return fmt.Errorf("complete lesson %s: %w", id, err)
	}

	m.log.Info().Str("lesson", id).Float64("score", finalScore).Msg("Lesson completed")
	m.notifier.Success(fmt.Sprintf("Lesson completed! Score: %.0f%%", math.Round(finalScore)))
	return nil
}
