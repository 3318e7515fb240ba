package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/edustocks/internal/identity"
	"github.com/atharvakonge/edustocks/internal/lessons"
	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/notify"
	"github.com/atharvakonge/edustocks/internal/trainer"
)

type lessonBackend struct {
	lesson        *models.Lesson
	failCompletes int
	completed     []float64
}

func (b *lessonBackend) Lesson(ctx context.Context, id string) (*models.Lesson, error) {
	return b.lesson, nil
}

func (b *lessonBackend) CompleteLesson(ctx context.Context, id string, score float64) error {
	if b.failCompletes > 0 {
		b.failCompletes--
		return errors.New("backend down")
	}
	b.completed = append(b.completed, score)
	return nil
}

type trainerBackend struct {
	answers []int
}

func (b *trainerBackend) Progress(ctx context.Context) (*models.UserProgress, error) {
	return &models.UserProgress{Level: models.Intermediate}, nil
}

func (b *trainerBackend) TrainerQuestion(ctx context.Context, level models.Level, topic string) (*models.AITrainerQuestion, error) {
	return &models.AITrainerQuestion{
		Question:      "What does P/E compare?",
		Options:       []string{"Price to earnings", "Profit to equity", "Price to equity", "Payout to earnings"},
		CorrectAnswer: 0,
		Explanation:   "Price divided by earnings per share.",
		Topic:         "valuation",
	}, nil
}

func (b *trainerBackend) TrainerAnswer(ctx context.Context, question string, answer int) (*models.TrainerAnswerResult, error) {
	b.answers = append(b.answers, answer)
	return &models.TrainerAnswerResult{Correct: answer == 0}, nil
}

func (b *trainerBackend) TrainerAsk(ctx context.Context, query string, level models.Level) (string, error) {
	return "answer", nil
}

func twoQuestionLesson() *models.Lesson {
	opts := []string{"one", "two", "three", "four"}
	return &models.Lesson{
		ID:      "lesson-1",
		Title:   "What is a stock?",
		Content: "A share of ownership.",
		Questions: []models.Question{
			{ID: "q1", Question: "First?", Options: opts, CorrectAnswer: 1},
			{ID: "q2", Question: "Second?", Options: opts, CorrectAnswer: 0},
		},
	}
}

func loadedLesson(t *testing.T, b *lessonBackend) *lessons.Model {
	t.Helper()
	m := lessons.NewModel(b, &notify.Recorder{}, zerolog.Nop())
	require.NoError(t, m.Load(context.Background(), b.lesson.ID))
	return m
}

func TestParseOption(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"a", 0, true},
		{" D ", 3, true},
		{"2", 1, true},
		{"e", 4, false},
		{"0", 0, false},
		{"", 0, false},
		{"ab", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseOption(tc.in, 4)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestTakeLesson_CompletesWithScore(t *testing.T) {
	b := &lessonBackend{lesson: twoQuestionLesson()}
	m := loadedLesson(t, b)
	var out bytes.Buffer

	// wrong-format answer is re-asked; second question answered wrong
	err := takeLesson(context.Background(), m, strings.NewReader("b\n\nz\nc\n\n"), &out)

	require.NoError(t, err)
	assert.Equal(t, []float64{50}, b.completed)
	assert.Equal(t, lessons.Completed, m.State().Phase)
	assert.Contains(t, out.String(), "A share of ownership.")
	assert.Contains(t, out.String(), "Pick one of the listed options")
}

func TestTakeLesson_RetriesFailedCompletion(t *testing.T) {
	b := &lessonBackend{lesson: twoQuestionLesson(), failCompletes: 1}
	m := loadedLesson(t, b)

	err := takeLesson(context.Background(), m, strings.NewReader("b\n\na\n\n\n"), io.Discard)

	require.NoError(t, err)
	assert.Equal(t, []float64{100}, b.completed)
}

func TestTakeLesson_EndOfInput(t *testing.T) {
	b := &lessonBackend{lesson: twoQuestionLesson()}
	m := loadedLesson(t, b)

	err := takeLesson(context.Background(), m, strings.NewReader(""), io.Discard)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Empty(t, b.completed)
}

func TestTakeLesson_NoQuestions(t *testing.T) {
	b := &lessonBackend{lesson: &models.Lesson{ID: "intro", Title: "Intro"}}
	m := loadedLesson(t, b)

	err := takeLesson(context.Background(), m, strings.NewReader("\n"), io.Discard)

	require.NoError(t, err)
	assert.Equal(t, []float64{0}, b.completed)
}

func TestPractise_SubmitsSelectedAnswer(t *testing.T) {
	b := &trainerBackend{}
	m := trainer.NewModel(b, &notify.Recorder{}, zerolog.Nop())
	m.Init(context.Background())
	var out bytes.Buffer

	err := practise(context.Background(), m, "", strings.NewReader("c\nn\n"), &out)

	require.NoError(t, err)
	assert.Equal(t, []int{2}, b.answers)
	assert.Contains(t, out.String(), "[intermediate]")
	assert.Contains(t, out.String(), "Price divided by earnings per share.")
}

type recordingView struct {
	activated, tornDown int
}

func (v *recordingView) Activate(ctx context.Context) error {
	v.activated++
	return nil
}

func (v *recordingView) Teardown() { v.tornDown++ }

func newTestClient(user string) *client {
	return &client{
		log:      zerolog.Nop(),
		session:  identity.NewSession(identity.NewSandboxProvider(user), zerolog.Nop()),
		notifier: &notify.Recorder{},
		sandbox:  true,
	}
}

func TestProtected_SignedOut(t *testing.T) {
	c := newTestClient("")
	view := &recordingView{}
	ran := false

	err := c.protected(context.Background(), view, func(ctx context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, err, errSignedOut)
	assert.False(t, ran)
	assert.Zero(t, view.activated)
}

func TestProtected_SignedIn(t *testing.T) {
	c := newTestClient("ada@example.com")
	view := &recordingView{}
	ran := false

	err := c.protected(context.Background(), view, func(ctx context.Context) error {
		ran = true
		assert.Equal(t, 1, view.activated)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, view.tornDown)
}

func TestProtected_ActivationError(t *testing.T) {
	c := newTestClient("ada@example.com")
	boom := errors.New("load failed")

	err := c.protected(context.Background(), loader(func(ctx context.Context) error { return boom }), func(ctx context.Context) error {
		t.Fatal("body must not run after a failed load")
		return nil
	})

	assert.ErrorIs(t, err, boom)
}
