package trainer

import "github.com/atharvakonge/edustocks/internal/models"

// State is a copy of the trainer model for rendering
type State struct {
	Level           models.Level
	Question        *models.AITrainerQuestion
	Selected        int
	HasSelection    bool
	ShowExplanation bool
	Result          *models.TrainerAnswerResult
	Query           string
	Response        string
	LoadingQuestion bool
	Submitting      bool
	Asking          bool
}

// State returns a snapshot of the model
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{
		Level:           m.level,
		Question:        m.question,
		Selected:        m.selected,
		HasSelection:    m.hasSelection,
		ShowExplanation: m.showExplanation,
		Result:          m.result,
		Query:           m.query,
		Response:        m.response,
		LoadingQuestion: m.loadingQuestion,
		Submitting:      m.submitting,
		Asking:          m.asking,
	}
}

// Explanation prefers the backend's verdict text over the question's own.
func (s State) Explanation() string {
	if !s.ShowExplanation {
		return ""
	}
	if s.Result != nil && s.Result.Explanation != "" {
		return s.Result.Explanation
	}
	if s.Question != nil {
		return s.Question.Explanation
	}
	return ""
}
