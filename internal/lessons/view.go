package lessons

import "github.com/atharvakonge/edustocks/internal/models"

// State is a copy of the model for rendering
type State struct {
	Lesson          *models.Lesson
	Phase           Phase
	Index           int
	Total           int
	Selected        int
	HasSelection    bool
	Score           int
	ShowExplanation bool
	Submitting      bool
}

// State returns a snapshot of the model
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := State{
		Lesson:          m.lesson,
		Phase:           m.phase,
		Index:           m.index,
		Selected:        m.selected,
		HasSelection:    m.hasAnswer,
		Score:           m.score,
		ShowExplanation: m.phase == Answered,
		Submitting:      m.submitting,
	}
	if m.lesson != nil {
		st.Total = len(m.lesson.Questions)
	}
	return st
}

// Question returns the current question, or nil outside the question phase.
func (s State) Question() *models.Question {
	if s.Lesson == nil || (s.Phase != Unanswered && s.Phase != Answered) {
		return nil
	}
	q := s.Lesson.Questions[s.Index]
	return &q
}

// ShowContent reports whether the lesson body is shown, which is only before
// the first question is passed.
func (s State) ShowContent() bool {
	return s.Lesson != nil && s.Phase != Completed && s.Index == 0
}

// FinalScore is the percentage the lesson would be submitted with now
func (s State) FinalScore() float64 {
	return FinalScore(s.Score, s.Total)
}
