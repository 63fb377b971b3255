package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/service"
)

// AssessmentHandler handles quiz, attempt, test token and submission endpoints
type AssessmentHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler
func NewAssessmentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "assessment").Logger(),
	}
}

// ListQuizzes handles GET /quizzes
func (h *AssessmentHandler) ListQuizzes(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	quizzes, err := h.services.Assessment.ListQuizzes(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// GetQuiz handles GET /quizzes/:id
func (h *AssessmentHandler) GetQuiz(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	quiz, err := h.services.Assessment.GetQuiz(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"quiz": quiz})
}

// CreateQuiz handles POST /quizzes
func (h *AssessmentHandler) CreateQuiz(c *gin.Context) {
	var req models.CreateQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	quiz, err := h.services.Assessment.CreateQuiz(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"quiz": quiz})
}

// UpdateQuiz handles PATCH|PUT /quizzes/:id
func (h *AssessmentHandler) UpdateQuiz(c *gin.Context) {
	var req models.UpdateQuizRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	quiz, err := h.services.Assessment.UpdateQuiz(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"quiz": quiz})
}

// DeleteQuiz handles DELETE /quizzes/:id
func (h *AssessmentHandler) DeleteQuiz(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Assessment.DeleteQuiz(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// StartAttempt handles POST /quizzes/:id/attempts
func (h *AssessmentHandler) StartAttempt(c *gin.Context) {
	var req models.StartAttemptRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	attempt, err := h.services.Assessment.StartAttempt(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"attempt": attempt})
}

// ListAttempts handles GET /quiz-attempts?quizId=&userId=
func (h *AssessmentHandler) ListAttempts(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	attempts, err := h.services.Assessment.ListAttempts(ctx, models.AttemptFilter{
		QuizID: c.Query("quizId"),
		UserID: c.Query("userId"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"attempts": attempts})
}

// GetAttempt handles GET /quiz-attempts/:id
func (h *AssessmentHandler) GetAttempt(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	attempt, err := h.services.Assessment.GetAttempt(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"attempt": attempt})
}

// SubmitAttempt handles POST /quiz-attempts/:id/submit
func (h *AssessmentHandler) SubmitAttempt(c *gin.Context) {
	var req models.SubmitAttemptRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	attempt, err := h.services.Assessment.SubmitAttempt(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"attempt": attempt})
}

// UpdateAttempt handles PATCH|PUT /quiz-attempts/:id
func (h *AssessmentHandler) UpdateAttempt(c *gin.Context) {
	var req models.UpdateAttemptRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	attempt, err := h.services.Assessment.UpdateAttempt(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"attempt": attempt})
}

// DeleteAttempt handles DELETE /quiz-attempts/:id
func (h *AssessmentHandler) DeleteAttempt(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Assessment.DeleteAttempt(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Quiz attempt deleted"})
}

// ListTokens handles GET /test-tokens
func (h *AssessmentHandler) ListTokens(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	tokens, err := h.services.Assessment.ListTokens(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tokens": tokens})
}

// GetToken handles GET /test-tokens/:id
func (h *AssessmentHandler) GetToken(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	token, err := h.services.Assessment.GetToken(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": token})
}

// IssueToken handles POST /test-tokens
func (h *AssessmentHandler) IssueToken(c *gin.Context) {
	var req models.CreateTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	token, err := h.services.Assessment.IssueToken(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": token})
}

// ValidateToken handles POST /test-tokens/validate
func (h *AssessmentHandler) ValidateToken(c *gin.Context) {
	var req models.ValidateTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	token, err := h.services.Assessment.ValidateToken(ctx, req.Token)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": token})
}

// UpdateToken handles PATCH|PUT /test-tokens/:id
func (h *AssessmentHandler) UpdateToken(c *gin.Context) {
	var req models.UpdateTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	token, err := h.services.Assessment.UpdateToken(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": token})
}

// DeleteToken handles DELETE /test-tokens/:id
func (h *AssessmentHandler) DeleteToken(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Assessment.DeleteToken(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Test token deleted"})
}

// ListSubmissions handles GET /test-submissions
func (h *AssessmentHandler) ListSubmissions(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	submissions, err := h.services.Assessment.ListSubmissions(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"submissions": submissions})
}

// GetSubmission handles GET /test-submissions/:id
func (h *AssessmentHandler) GetSubmission(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	submission, err := h.services.Assessment.GetSubmission(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"submission": submission})
}

// CreateSubmission handles POST /test-submissions
func (h *AssessmentHandler) CreateSubmission(c *gin.Context) {
	var req models.CreateSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	submission, err := h.services.Assessment.CreateSubmission(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"submission": submission})
}

// UpdateSubmission handles PATCH|PUT /test-submissions/:id
func (h *AssessmentHandler) UpdateSubmission(c *gin.Context) {
	var req models.UpdateSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	submission, err := h.services.Assessment.UpdateSubmission(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"submission": submission})
}

// DeleteSubmission handles DELETE /test-submissions/:id
func (h *AssessmentHandler) DeleteSubmission(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Assessment.DeleteSubmission(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Test submission deleted"})
}
