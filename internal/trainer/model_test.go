package trainer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/notify"
)

type answerCall struct {
	question string
	answer   int
}

type fakeBackend struct {
	progress    *models.UserProgress
	question    *models.AITrainerQuestion
	result      *models.TrainerAnswerResult
	response    string
	err         error
	answers     []answerCall
	asks        []string
	askLevels   []models.Level
	questionLvl []models.Level
}

func (f *fakeBackend) Progress(ctx context.Context) (*models.UserProgress, error) {
	if f.progress == nil {
		return nil, errors.New("none")
	}
	return f.progress, nil
}

func (f *fakeBackend) TrainerQuestion(ctx context.Context, level models.Level, topic string) (*models.AITrainerQuestion, error) {
	f.questionLvl = append(f.questionLvl, level)
	return f.question, f.err
}

func (f *fakeBackend) TrainerAnswer(ctx context.Context, question string, answer int) (*models.TrainerAnswerResult, error) {
	f.answers = append(f.answers, answerCall{question, answer})
	return f.result, f.err
}

func (f *fakeBackend) TrainerAsk(ctx context.Context, query string, level models.Level) (string, error) {
	f.asks = append(f.asks, query)
	f.askLevels = append(f.askLevels, level)
	return f.response, f.err
}

func practiceQuestion() *models.AITrainerQuestion {
	return &models.AITrainerQuestion{
		Question:      "What does P/E stand for?",
		Options:       []string{"Price to Earnings", "Profit to Equity", "Price to Equity", "Profit to Earnings"},
		CorrectAnswer: 0,
		Explanation:   "Price divided by earnings per share.",
		Topic:         "valuation",
	}
}

func newModel(b *fakeBackend) (*Model, *notify.Recorder) {
	rec := &notify.Recorder{}
	return NewModel(b, rec, zerolog.Nop()), rec
}

func TestInit_TakesLevelFromProgress(t *testing.T) {
	m, _ := newModel(&fakeBackend{progress: &models.UserProgress{Level: models.Advanced}})
	m.Init(context.Background())
	assert.Equal(t, models.Advanced, m.State().Level)

	m, _ = newModel(&fakeBackend{})
	m.Init(context.Background())
	assert.Equal(t, models.Beginner, m.State().Level)
}

func TestFetchQuestion_ClearsAnswerState(t *testing.T) {
	b := &fakeBackend{question: practiceQuestion(), result: &models.TrainerAnswerResult{Correct: true}}
	m, _ := newModel(b)
	ctx := context.Background()

	require.NoError(t, m.FetchQuestion(ctx, models.Intermediate, ""))
	require.True(t, m.Select(0))
	_, err := m.SubmitAnswer(ctx)
	require.NoError(t, err)
	require.True(t, m.State().ShowExplanation)

	require.NoError(t, m.FetchQuestion(ctx, models.Intermediate, ""))
	st := m.State()
	assert.False(t, st.HasSelection)
	assert.False(t, st.ShowExplanation)
	assert.Nil(t, st.Result)
	assert.Equal(t, models.Intermediate, st.Level)
	assert.Equal(t, []models.Level{models.Intermediate, models.Intermediate}, b.questionLvl)
}

func TestFetchQuestion_UnknownLevelKeepsCurrent(t *testing.T) {
	b := &fakeBackend{question: practiceQuestion(), response: "ok"}
	m, _ := newModel(b)
	ctx := context.Background()
	require.True(t, m.SetLevel(models.Advanced))

	require.NoError(t, m.FetchQuestion(ctx, "", ""))
	require.NoError(t, m.FetchQuestion(ctx, "expert", ""))
	require.NoError(t, m.FetchQuestion(ctx, " Intermediate ", ""))

	assert.Equal(t, []models.Level{models.Advanced, models.Advanced, models.Intermediate}, b.questionLvl)
	assert.Equal(t, models.Intermediate, m.State().Level)

	_, err := m.AskFreeform(ctx, "What is a dividend?", "guru")
	require.NoError(t, err)
	assert.Equal(t, []models.Level{models.Intermediate}, b.askLevels)
}

func TestSubmitAnswer_SendsQuestionText(t *testing.T) {
	b := &fakeBackend{question: practiceQuestion(), result: &models.TrainerAnswerResult{Correct: false, Explanation: "It is price to earnings."}}
	m, rec := newModel(b)
	ctx := context.Background()
	require.NoError(t, m.FetchQuestion(ctx, models.Beginner, ""))
	require.True(t, m.Select(2))

	correct, err := m.SubmitAnswer(ctx)
	require.NoError(t, err)
	assert.False(t, correct)
	require.Len(t, b.answers, 1)
	assert.Equal(t, "What does P/E stand for?", b.answers[0].question)
	assert.Equal(t, 2, b.answers[0].answer)

	st := m.State()
	assert.True(t, st.ShowExplanation)
	assert.Equal(t, "It is price to earnings.", st.Explanation())
	last, _ := rec.Last()
	assert.Equal(t, notify.Message{Kind: notify.KindError, Text: "Incorrect. Check the explanation."}, last)

	assert.False(t, m.Select(0), "revealed question is locked")
	_, err = m.SubmitAnswer(ctx)
	assert.ErrorIs(t, err, ErrAnswered)
}

func TestSubmitAnswer_CorrectToast(t *testing.T) {
	b := &fakeBackend{question: practiceQuestion(), result: &models.TrainerAnswerResult{Correct: true}}
	m, rec := newModel(b)
	ctx := context.Background()
	require.NoError(t, m.FetchQuestion(ctx, models.Beginner, ""))
	require.True(t, m.Select(0))

	correct, err := m.SubmitAnswer(ctx)
	require.NoError(t, err)
	assert.True(t, correct)
	last, _ := rec.Last()
	assert.Equal(t, "Correct! Great job!", last.Text)
	assert.Equal(t, "Price divided by earnings per share.", m.State().Explanation())
}

func TestSubmitAnswer_Guards(t *testing.T) {
	b := &fakeBackend{question: practiceQuestion()}
	m, _ := newModel(b)
	ctx := context.Background()

	_, err := m.SubmitAnswer(ctx)
	assert.ErrorIs(t, err, ErrNoQuestion)

	require.NoError(t, m.FetchQuestion(ctx, models.Beginner, ""))
	_, err = m.SubmitAnswer(ctx)
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Empty(t, b.answers)
}

func TestAskFreeform_RejectsWhitespaceWithoutRequest(t *testing.T) {
	b := &fakeBackend{response: "unused"}
	m, rec := newModel(b)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := m.AskFreeform(context.Background(), q, models.Beginner)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
	assert.Empty(t, b.asks)
	last, _ := rec.Last()
	assert.Equal(t, "Please enter a question", last.Text)
}

func TestAsk_DisplaysResponseAndClearsDraft(t *testing.T) {
	b := &fakeBackend{response: "Diversification spreads risk."}
	m, _ := newModel(b)
	require.True(t, m.SetLevel("ADVANCED"))
	m.SetQuery("Why diversify?")

	resp, err := m.Ask(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Diversification spreads risk.", resp)
	assert.Equal(t, []string{"Why diversify?"}, b.asks)
	assert.Equal(t, []models.Level{models.Advanced}, b.askLevels)

	st := m.State()
	assert.Empty(t, st.Query)
	assert.Equal(t, "Diversification spreads risk.", st.Response)
}

func TestFailuresNotify(t *testing.T) {
	b := &fakeBackend{err: errors.New("503")}
	m, rec := newModel(b)
	ctx := context.Background()

	require.Error(t, m.FetchQuestion(ctx, models.Beginner, ""))
	last, _ := rec.Last()
	assert.Equal(t, "Failed to load question", last.Text)
	assert.Nil(t, m.State().Question)

	m.SetQuery("keep me")
	_, err := m.Ask(ctx)
	require.Error(t, err)
	last, _ = rec.Last()
	assert.Equal(t, "Failed to get AI response", last.Text)
	assert.Equal(t, "keep me", m.State().Query)
	assert.False(t, m.State().Asking)
}

func TestSubmitAnswer_FailureKeepsQuestionOpen(t *testing.T) {
	b := &fakeBackend{question: practiceQuestion()}
	m, rec := newModel(b)
	ctx := context.Background()
	require.NoError(t, m.FetchQuestion(ctx, models.Beginner, ""))
	require.True(t, m.Select(1))

	b.err = errors.New("timeout")
	_, err := m.SubmitAnswer(ctx)
	require.Error(t, err)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to submit answer", last.Text)
	assert.False(t, m.State().ShowExplanation)
	assert.True(t, m.Select(0))
}
