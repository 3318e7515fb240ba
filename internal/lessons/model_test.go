package lessons

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/edustocks/internal/models"
	"github.com/atharvakonge/edustocks/internal/notify"
)

type completion struct {
	id    string
	score float64
}

type fakeBackend struct {
	lessons     map[string]*models.Lesson
	progress    *models.UserProgress
	loadErr     error
	completeErr error
	completions []completion
	// onComplete runs while a completion request is in flight
	onComplete func()
}

func (f *fakeBackend) Lesson(ctx context.Context, id string) (*models.Lesson, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	l, ok := f.lessons[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return l, nil
}

func (f *fakeBackend) CompleteLesson(ctx context.Context, id string, score float64) error {
	if f.onComplete != nil {
		f.onComplete()
	}
	f.completions = append(f.completions, completion{id, score})
	return f.completeErr
}

func (f *fakeBackend) Lessons(ctx context.Context, level models.Level) ([]models.Lesson, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	var out []models.Lesson
	for _, l := range f.lessons {
		if level == "" || l.Level == level {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeBackend) Progress(ctx context.Context) (*models.UserProgress, error) {
	if f.progress == nil {
		return nil, errors.New("no progress yet")
	}
	return f.progress, nil
}

func question(id string, correct int) models.Question {
	return models.Question{
		ID:            id,
		Question:      "Question " + id,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: correct,
		Explanation:   "because",
	}
}

func fourQuestionLesson() *models.Lesson {
	return &models.Lesson{
		ID:    "basics",
		Title: "Stock Market Basics",
		Level: models.Beginner,
		Questions: []models.Question{
			question("q1", 0), question("q2", 1), question("q3", 2), question("q4", 3),
		},
	}
}

func newModel(b *fakeBackend) (*Model, *notify.Recorder) {
	rec := &notify.Recorder{}
	return NewModel(b, rec, zerolog.Nop()), rec
}

func answer(t *testing.T, m *Model, i int) bool {
	t.Helper()
	require.True(t, m.Select(i))
	correct, ok := m.Submit()
	require.True(t, ok)
	return correct
}

func TestLesson_ThreeOfFourScores75(t *testing.T) {
	b := &fakeBackend{lessons: map[string]*models.Lesson{"basics": fourQuestionLesson()}}
	m, rec := newModel(b)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, "basics"))

	picks := []int{0, 1, 2, 0} // last one wrong
	for i, pick := range picks {
		answer(t, m, pick)
		require.NoError(t, m.Next(ctx))
		if i < len(picks)-1 {
			assert.Equal(t, Unanswered, m.State().Phase)
			assert.Equal(t, i+1, m.State().Index)
		}
	}

	require.Len(t, b.completions, 1)
	assert.Equal(t, "basics", b.completions[0].id)
	assert.InDelta(t, 75.00, b.completions[0].score, 1e-9)
	assert.Equal(t, Completed, m.State().Phase)
	last, _ := rec.Last()
	assert.Equal(t, "Lesson completed! Score: 75%", last.Text)
}

func TestLesson_ScoreIsNotRoundedBeforeSubmission(t *testing.T) {
	lesson := &models.Lesson{ID: "thirds", Questions: []models.Question{question("a", 0), question("b", 0), question("c", 0)}}
	b := &fakeBackend{lessons: map[string]*models.Lesson{"thirds": lesson}}
	m, rec := newModel(b)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, "thirds"))

	for _, pick := range []int{0, 1, 1} {
		answer(t, m, pick)
		require.NoError(t, m.Next(ctx))
	}

	require.Len(t, b.completions, 1)
	assert.InDelta(t, 100.0/3, b.completions[0].score, 1e-9)
	last, _ := rec.Last()
	assert.Equal(t, "Lesson completed! Score: 33%", last.Text)
}

func TestLesson_SelectionOnlyWhileUnanswered(t *testing.T) {
	b := &fakeBackend{lessons: map[string]*models.Lesson{"basics": fourQuestionLesson()}}
	m, _ := newModel(b)
	require.NoError(t, m.Load(context.Background(), "basics"))

	assert.False(t, m.Select(9), "out of range")
	assert.False(t, m.Select(-1))
	require.True(t, m.Select(2))
	_, ok := m.Submit()
	require.True(t, ok)

	assert.False(t, m.Select(0), "answered question is locked")
	assert.Equal(t, 2, m.State().Selected)
	assert.True(t, m.State().ShowExplanation)
}

func TestLesson_SubmitWithoutSelectionIsNoop(t *testing.T) {
	b := &fakeBackend{lessons: map[string]*models.Lesson{"basics": fourQuestionLesson()}}
	m, rec := newModel(b)
	require.NoError(t, m.Load(context.Background(), "basics"))

	_, ok := m.Submit()
	assert.False(t, ok)
	assert.Equal(t, Unanswered, m.State().Phase)
	assert.Empty(t, rec.Messages())
	assert.ErrorIs(t, m.Next(context.Background()), ErrNotAnswered)
}

func TestLesson_NextResetsSelection(t *testing.T) {
	b := &fakeBackend{lessons: map[string]*models.Lesson{"basics": fourQuestionLesson()}}
	m, _ := newModel(b)
	require.NoError(t, m.Load(context.Background(), "basics"))

	answer(t, m, 0)
	require.NoError(t, m.Next(context.Background()))

	st := m.State()
	assert.False(t, st.HasSelection)
	assert.False(t, st.ShowExplanation)
	assert.Equal(t, "q2", st.Question().ID)
	assert.False(t, st.ShowContent())
}

func TestLesson_ZeroQuestionsCompletesWithZero(t *testing.T) {
	empty := &models.Lesson{ID: "intro", Title: "Intro"}
	b := &fakeBackend{lessons: map[string]*models.Lesson{"intro": empty}}
	m, rec := newModel(b)
	require.NoError(t, m.Load(context.Background(), "intro"))

	st := m.State()
	assert.Equal(t, ReadyToComplete, st.Phase)
	assert.Nil(t, st.Question())
	assert.False(t, math.IsNaN(st.FinalScore()))

	require.NoError(t, m.Complete(context.Background()))
	require.Len(t, b.completions, 1)
	assert.Equal(t, 0.0, b.completions[0].score)
	last, _ := rec.Last()
	assert.Equal(t, "Lesson completed! Score: 0%", last.Text)
}

func TestFinalScore(t *testing.T) {
	assert.Equal(t, 75.0, FinalScore(3, 4))
	assert.Equal(t, 0.0, FinalScore(0, 0))
	assert.False(t, math.IsNaN(FinalScore(0, 0)))
	assert.Equal(t, 100.0, FinalScore(2, 2))
}

func TestLesson_CompletionFailureStaysAndCanRetry(t *testing.T) {
	lesson := &models.Lesson{ID: "one", Questions: []models.Question{question("q", 1)}}
	b := &fakeBackend{lessons: map[string]*models.Lesson{"one": lesson}, completeErr: errors.New("503")}
	m, rec := newModel(b)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, "one"))
	answer(t, m, 1)

	require.Error(t, m.Next(ctx))
	assert.Equal(t, Answered, m.State().Phase)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to complete lesson", last.Text)

	b.completeErr = nil
	require.NoError(t, m.Next(ctx))
	assert.Equal(t, Completed, m.State().Phase)
	assert.Len(t, b.completions, 2)
	assert.ErrorIs(t, m.Complete(ctx), ErrCompleted)
}

func TestLesson_ResetDuringCompletionKeepsNewLesson(t *testing.T) {
	first := &models.Lesson{ID: "one", Questions: []models.Question{question("q", 1)}}
	b := &fakeBackend{lessons: map[string]*models.Lesson{"one": first, "basics": fourQuestionLesson()}}
	m, _ := newModel(b)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx, "one"))
	answer(t, m, 1)
	b.onComplete = func() { m.Reset(fourQuestionLesson()) }

	require.NoError(t, m.Next(ctx))

	require.Len(t, b.completions, 1)
	assert.Equal(t, "one", b.completions[0].id)
	st := m.State()
	assert.Equal(t, "basics", st.Lesson.ID)
	assert.Equal(t, Unanswered, st.Phase)
	assert.Equal(t, 0, st.Index)
	assert.True(t, m.Select(2), "new lesson accepts answers")
}

func TestLesson_CompleteGuards(t *testing.T) {
	b := &fakeBackend{lessons: map[string]*models.Lesson{"basics": fourQuestionLesson()}}
	m, _ := newModel(b)
	assert.ErrorIs(t, m.Complete(context.Background()), ErrNotLoaded)

	require.NoError(t, m.Load(context.Background(), "basics"))
	assert.ErrorIs(t, m.Complete(context.Background()), ErrStillPending)
	assert.Empty(t, b.completions)
}

func TestLesson_LoadFailureNotifies(t *testing.T) {
	b := &fakeBackend{loadErr: errors.New("down")}
	m, rec := newModel(b)

	require.Error(t, m.Load(context.Background(), "x"))
	assert.Equal(t, NotLoaded, m.State().Phase)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to load lesson", last.Text)
}

func TestLocked(t *testing.T) {
	beginner := &models.UserProgress{Level: models.Beginner}
	advanced := &models.UserProgress{Level: models.Advanced}

	assert.False(t, Locked(models.Beginner, nil))
	assert.False(t, Locked(models.Intermediate, nil))
	assert.True(t, Locked(models.Intermediate, beginner))
	assert.True(t, Locked(models.Advanced, nil))
	assert.True(t, Locked(models.Advanced, beginner))
	assert.False(t, Locked(models.Advanced, advanced))
}

func TestLoadCatalog(t *testing.T) {
	b := &fakeBackend{
		lessons: map[string]*models.Lesson{
			"b2": {ID: "b2", Level: models.Beginner, Order: 2},
			"b1": {ID: "b1", Level: models.Beginner, Order: 1},
			"i1": {ID: "i1", Level: models.Intermediate, Order: 1},
		},
		progress: &models.UserProgress{Level: models.Beginner, CompletedLessons: []string{"b1"}},
	}
	rec := &notify.Recorder{}

	entries, progress, err := LoadCatalog(context.Background(), b, rec, models.Beginner)
	require.NoError(t, err)
	require.NotNil(t, progress)
	require.Len(t, entries, 2)
	assert.Equal(t, "b1", entries[0].Lesson.ID)
	assert.True(t, entries[0].Completed)
	assert.False(t, entries[1].Completed)

	entries, _, err = LoadCatalog(context.Background(), b, rec, models.Intermediate)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Locked)
}

func TestLoadCatalog_MissingProgressIsNotAnError(t *testing.T) {
	b := &fakeBackend{lessons: map[string]*models.Lesson{"b1": {ID: "b1", Level: models.Beginner}}}
	entries, progress, err := LoadCatalog(context.Background(), b, &notify.Recorder{}, "")
	require.NoError(t, err)
	assert.Nil(t, progress)
	assert.Len(t, entries, 1)
}
