package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atharvakonge/edustocks/internal/models"
)

type verifyRequest struct {
	Token string `json:"token"`
}

// Verify handles POST /api/auth/verify by initializing the user's ledger
// and progress on first sight.
func (s *Server) Verify(c *gin.Context) {
	var req verifyRequest
	_ = c.ShouldBindJSON(&req)

	id := userID(c)
	if req.Token != "" && req.Token != id {
		fail(c, http.StatusUnauthorized, "Unauthorized: token mismatch")
		return
	}
	email := ""
	if strings.Contains(id, "@") {
		email = id
	}
	if err := s.store.EnsureUser(c.Request.Context(), id, email); err != nil {
		s.log.Error().Err(err).Str("user", id).Msg("User init failed")
		fail(c, http.StatusInternalServerError, "Failed to initialize user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "userId": id, "email": email})
}

// ListLessons handles GET /api/lessons?level=
func (s *Server) ListLessons(c *gin.Context) {
	c.JSON(http.StatusOK, s.lessons.Lessons(c.Query("level")))
}

// GetLesson handles GET /api/lessons/:id
func (s *Server) GetLesson(c *gin.Context) {
	lesson, ok := s.lessons.Lesson(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, "Lesson not found")
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// CompleteLesson handles POST /api/lessons/:id/complete
func (s *Server) CompleteLesson(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.lessons.Lesson(id); !ok {
		fail(c, http.StatusNotFound, "Lesson not found")
		return
	}

	var req models.CompleteLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Score == nil {
		fail(c, http.StatusBadRequest, "Score is required")
		return
	}
	score := *req.Score
	if score < 0 || score > 100 {
		fail(c, http.StatusBadRequest, "Score must be between 0 and 100")
		return
	}

	p, awarded, err := s.store.CompleteLesson(c.Request.Context(), userID(c), id, score)
	if err != nil {
		s.log.Error().Err(err).Str("user", userID(c)).Str("lesson", id).Msg("Lesson completion failed")
		fail(c, http.StatusInternalServerError, "Error completing lesson")
		return
	}
	if awarded {
		s.log.Info().Str("user", userID(c)).Str("lesson", id).Int("xp", p.XP).Msg("Lesson completed")
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Lesson completed successfully",
		"lessonId": id,
		"score":    score,
		"awarded":  awarded,
		"progress": p,
	})
}

// GetProgress handles GET /api/progress
func (s *Server) GetProgress(c *gin.Context) {
	p, err := s.store.Progress(c.Request.Context(), userID(c))
	if err != nil {
		s.log.Error().Err(err).Str("user", userID(c)).Msg("Progress load failed")
		fail(c, http.StatusInternalServerError, "Failed to fetch progress")
		return
	}
	c.JSON(http.StatusOK, p)
}

// levelOrDefault parses level, falling back to beginner when it is empty.
func levelOrDefault(raw models.Level) (models.Level, bool) {
	if strings.TrimSpace(string(raw)) == "" {
		return models.Beginner, true
	}
	return models.ParseLevel(string(raw))
}

// TrainerQuestion handles POST /api/ai-trainer/question
func (s *Server) TrainerQuestion(c *gin.Context) {
	var req models.TrainerQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	level, ok := levelOrDefault(req.Level)
	if !ok {
		fail(c, http.StatusBadRequest, "Invalid level")
		return
	}
	c.JSON(http.StatusOK, s.trainer.Question(level, req.Topic))
}

// TrainerAnswer handles POST /api/ai-trainer/answer
func (s *Server) TrainerAnswer(c *gin.Context) {
	var req models.TrainerAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.QuestionID) == "" {
		fail(c, http.StatusBadRequest, "Question ID cannot be blank")
		return
	}
	if req.Answer < 0 || req.Answer > 3 {
		fail(c, http.StatusBadRequest, "Answer must be between 0 and 3 (A-D)")
		return
	}
	c.JSON(http.StatusOK, s.trainer.Check(req.QuestionID, req.Answer))
}

// TrainerAsk handles POST /api/ai-trainer/ask
func (s *Server) TrainerAsk(c *gin.Context) {
	var req models.TrainerAskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Query is required")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		fail(c, http.StatusBadRequest, "Query cannot be empty")
		return
	}
	level, ok := levelOrDefault(req.Level)
	if !ok {
		level = models.Beginner
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"response": s.trainer.Ask(req.Query, level),
		"level":    level,
	})
}
