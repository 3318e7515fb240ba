package models

import "strings"

// Level is a proficiency tier shared by lessons, progress and the AI trainer
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// Levels lists every tier in ascending order.
var Levels = []Level{Beginner, Intermediate, Advanced}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case Beginner, Intermediate, Advanced:
		return l, true
	}
	return "", false
}

// Question is one assessment item
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// ValidAnswer reports whether i indexes one of the options.
func (q Question) ValidAnswer(i int) bool {
	return i >= 0 && i < len(q.Options)
}

// Lesson is a unit of instruction
type Lesson struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Level       Level      `json:"level"`
	Content     string     `json:"content"`
	Questions   []Question `json:"questions"`
	Order       int        `json:"order"`
}

// UserProgress is the cumulative learning state kept by the backend
type UserProgress struct {
	UserID           string   `json:"userId"`
	Level            Level    `json:"level"`
	CompletedLessons []string `json:"completedLessons"`
	XP               int      `json:"xp"`
	Rank             string   `json:"rank"`
}

// HasCompleted reports whether lessonID is in the completed set.
func (p *UserProgress) HasCompleted(lessonID string) bool {
	if p == nil {
		return false
	}
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// AITrainerQuestion is a generated practice question
type AITrainerQuestion struct {
	ID            string   `json:"id,omitempty"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Topic         string   `json:"topic"`
}

// CompleteLessonRequest records a lesson completion score (percentage)
type CompleteLessonRequest struct {
	Score *float64 `json:"score" binding:"required"`
}

// TrainerQuestionRequest asks the trainer for a practice question
type TrainerQuestionRequest struct {
	Level Level  `json:"level"`
	Topic string `json:"topic,omitempty"`
}

// TrainerAnswerRequest carries the full question text, since generated
// questions have no stable id on the backend.
type TrainerAnswerRequest struct {
	QuestionID string `json:"questionId"`
	Answer     int    `json:"answer"`
}

// TrainerAnswerResult is the backend verdict on a practice answer
type TrainerAnswerResult struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

// TrainerAskRequest is a freeform question for the trainer
type TrainerAskRequest struct {
	Query string `json:"query"`
	Level Level  `json:"level"`
}

// TrainerAskResponse wraps the trainer's freeform answer
type TrainerAskResponse struct {
	Response string `json:"response"`
}
