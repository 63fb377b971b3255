package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/internal/validation"
	"github.com/training-management-api/pkg/idgen"
)

// tokenAlphabet leaves out characters that are easy to misread
const tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const maxTokenAttempts = 5

// assessmentService is the concrete implementation of AssessmentService
type assessmentService struct {
	repos *repository.Repositories
	log   zerolog.Logger
	now   func() time.Time
}

func newAssessmentService(repos *repository.Repositories, log zerolog.Logger) *assessmentService {
	return &assessmentService{
		repos: repos,
		log:   log.With().Str("service", "assessment").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Quizzes

func (s *assessmentService) ListQuizzes(ctx context.Context) ([]*models.Quiz, error) {
	quizzes, err := s.repos.Quiz.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *assessmentService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	q, err := s.repos.Quiz.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	if q == nil {
		return nil, notFoundError("Quiz not found")
	}
	return q, nil
}

// numberQuestions fills in missing question ids
func numberQuestions(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		out[i] = q
	}
	return out
}

func (s *assessmentService) CreateQuiz(ctx context.Context, req *models.CreateQuizRequest) (*models.Quiz, error) {
	if err := validation.ValidateQuestions(req.Questions); err != nil {
		return nil, validationError("%s", err.Error())
	}

	passing := models.DefaultPassingScore
	if req.PassingScore != nil {
		passing = *req.PassingScore
	}
	status := req.Status
	if status == "" {
		status = "draft"
	}

	now := s.now()
	q := &models.Quiz{
		ID:               idgen.Next(),
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		Questions:        numberQuestions(req.Questions),
		PassingScore:     passing,
		TimeLimitMinutes: req.TimeLimitMinutes,
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repos.Quiz.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}
	s.log.Info().Str("quiz_id", q.ID).Int("questions", len(q.Questions)).Msg("Quiz created")
	return q, nil
}

func (s *assessmentService) UpdateQuiz(ctx context.Context, id string, req *models.UpdateQuizRequest) (*models.Quiz, error) {
	q, err := s.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Questions != nil {
		if err := validation.ValidateQuestions(req.Questions); err != nil {
			return nil, validationError("%s", err.Error())
		}
		q.Questions = numberQuestions(req.Questions)
	}
	if req.Title != nil {
		q.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		q.Description = *req.Description
	}
	if req.PassingScore != nil {
		q.PassingScore = *req.PassingScore
	}
	if req.TimeLimitMinutes != nil {
		q.TimeLimitMinutes = *req.TimeLimitMinutes
	}
	if req.Status != nil {
		q.Status = *req.Status
	}
	q.UpdatedAt = s.now()

	if err := s.repos.Quiz.Update(ctx, q); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Quiz not found")
		}
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	return q, nil
}

func (s *assessmentService) DeleteQuiz(ctx context.Context, id string) error {
	if err := s.repos.Quiz.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Quiz not found")
		}
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	return nil
}

// Quiz attempts

func (s *assessmentService) ListAttempts(ctx context.Context, filter models.AttemptFilter) ([]*models.QuizAttempt, error) {
	attempts, err := s.repos.QuizAttempt.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}
	return attempts, nil
}

func (s *assessmentService) GetAttempt(ctx context.Context, id string) (*models.QuizAttempt, error) {
	a, err := s.repos.QuizAttempt.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz attempt: %w", err)
	}
	if a == nil {
		return nil, notFoundError("Quiz attempt not found")
	}
	return a, nil
}

func (s *assessmentService) StartAttempt(ctx context.Context, quizID string, req *models.StartAttemptRequest) (*models.QuizAttempt, error) {
	if _, err := s.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	now := s.now()
	a := &models.QuizAttempt{
		ID:        idgen.Next(),
		QuizID:    quizID,
		UserID:    req.UserID,
		UserName:  req.UserName,
		Answers:   []int{},
		Status:    models.AttemptInProgress,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.QuizAttempt.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to start quiz attempt: %w", err)
	}
	return a, nil
}

// SubmitAttempt scores the answers once. A second submission is a conflict.
func (s *assessmentService) SubmitAttempt(ctx context.Context, id string, req *models.SubmitAttemptRequest) (*models.QuizAttempt, error) {
	a, err := s.GetAttempt(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AttemptSubmitted {
		return nil, newError(ErrConflict, "Quiz attempt has already been submitted")
	}

	q, err := s.GetQuiz(ctx, a.QuizID)
	if err != nil {
		return nil, err
	}
	if len(req.Answers) != len(q.Questions) {
		return nil, validationError("answers must contain one entry per question (%d)", len(q.Questions))
	}

	now := s.now()
	a.Answers = req.Answers
	a.Score = Score(q.Questions, req.Answers)
	a.Passed = a.Score >= q.PassingScore
	a.Status = models.AttemptSubmitted
	a.SubmittedAt = &now
	a.UpdatedAt = now

	if err := s.repos.QuizAttempt.Submit(ctx, a); err != nil {
		if errors.Is(err, repository.ErrAlreadySubmitted) {
			return nil, newError(ErrConflict, "Quiz attempt has already been submitted")
		}
		return nil, fmt.Errorf("failed to submit quiz attempt: %w", err)
	}

	s.log.Info().Str("attempt_id", a.ID).Int("score", a.Score).Bool("passed", a.Passed).Msg("Quiz attempt submitted")
	return a, nil
}

// Score returns the percentage of correctly answered questions, rounded down
func Score(questions []models.Question, answers []int) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectOption {
			correct++
		}
	}
	return correct * 100 / len(questions)
}

// UpdateAttempt edits the display name only; answers and score are fixed by
// SubmitAttempt.
func (s *assessmentService) UpdateAttempt(ctx context.Context, id string, req *models.UpdateAttemptRequest) (*models.QuizAttempt, error) {
	a, err := s.GetAttempt(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserName != nil {
		a.UserName = strings.TrimSpace(*req.UserName)
	}
	a.UpdatedAt = s.now()

	if err := s.repos.QuizAttempt.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Quiz attempt not found")
		}
		return nil, fmt.Errorf("failed to update quiz attempt: %w", err)
	}
	return a, nil
}

func (s *assessmentService) DeleteAttempt(ctx context.Context, id string) error {
	if err := s.repos.QuizAttempt.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Quiz attempt not found")
		}
		return fmt.Errorf("failed to delete quiz attempt: %w", err)
	}
	return nil
}

// Test tokens

func (s *assessmentService) ListTokens(ctx context.Context) ([]*models.TestToken, error) {
	tokens, err := s.repos.TestToken.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list test tokens: %w", err)
	}
	return tokens, nil
}

// generateToken draws TokenLength characters from crypto/rand
func generateToken() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < models.TokenLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(tokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// IssueToken draws a fresh code, retrying when the code is already taken
// either at the pre-check or at insert time.
func (s *assessmentService) IssueToken(ctx context.Context, req *models.CreateTokenRequest) (*models.TestToken, error) {
	lifetime := models.DefaultTokenLifetime
	if req.ExpiresInMinutes > 0 {
		lifetime = time.Duration(req.ExpiresInMinutes) * time.Minute
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		code, err := generateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		exists, err := s.repos.TestToken.TokenExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check token uniqueness: %w", err)
		}
		if exists {
			continue
		}

		now := s.now()
		t := &models.TestToken{
			ID:        idgen.Next(),
			Token:     code,
			Status:    models.TokenActive,
			TestName:  strings.TrimSpace(req.TestName),
			IssuedTo:  req.IssuedTo,
			CreatedBy: req.CreatedBy,
			ExpiresAt: now.Add(lifetime),
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = s.repos.TestToken.Create(ctx, t)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create test token: %w", err)
		}
		s.logIssued(t)
		return t, nil
	}
	return nil, errors.New("failed to generate a unique token")
}

func (s *assessmentService) logIssued(t *models.TestToken) {
	s.log.Info().Str("token_id", t.ID).Str("test_name", t.TestName).Time("expires_at", t.ExpiresAt).Msg("Test token issued")
}

func (s *assessmentService) GetToken(ctx context.Context, id string) (*models.TestToken, error) {
	t, err := s.repos.TestToken.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get test token: %w", err)
	}
	if t == nil {
		return nil, notFoundError("Test token not found")
	}
	return t, nil
}

// UpdateToken edits the descriptive fields of a token. A new expiry counts
// from now and is refused once the token is used or expired.
func (s *assessmentService) UpdateToken(ctx context.Context, id string, req *models.UpdateTokenRequest) (*models.TestToken, error) {
	t, err := s.GetToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.TestName != nil {
		t.TestName = strings.TrimSpace(*req.TestName)
	}
	if req.IssuedTo != nil {
		t.IssuedTo = *req.IssuedTo
	}
	now := s.now()
	if req.ExpiresInMinutes != nil {
		if t.Status != models.TokenActive {
			return nil, validationError("expiry can only be changed on an active token")
		}
		t.ExpiresAt = now.Add(time.Duration(*req.ExpiresInMinutes) * time.Minute)
	}
	t.UpdatedAt = now

	if err := s.repos.TestToken.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Test token not found")
		}
		return nil, fmt.Errorf("failed to update test token: %w", err)
	}
	return t, nil
}

// ValidateToken accepts only active, unexpired tokens. A token found past
// its expiry is moved to expired.
func (s *assessmentService) ValidateToken(ctx context.Context, token string) (*models.TestToken, error) {
	code := strings.ToUpper(strings.TrimSpace(token))
	if code == "" {
		return nil, validationError("token is required")
	}

	t, err := s.repos.TestToken.GetActiveByToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up test token: %w", err)
	}
	if t == nil {
		return nil, notFoundError("Invalid token")
	}

	if s.now().After(t.ExpiresAt) {
		err := s.repos.TestToken.Expire(ctx, t.ID, nil)
		if err != nil && !errors.Is(err, repository.ErrTokenNotActive) {
			return nil, fmt.Errorf("failed to expire test token: %w", err)
		}
		s.log.Info().Str("token_id", t.ID).Msg("Test token expired")
		return nil, newError(ErrTokenExpired, "Token has expired")
	}
	return t, nil
}

func (s *assessmentService) DeleteToken(ctx context.Context, id string) error {
	if err := s.repos.TestToken.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Test token not found")
		}
		return fmt.Errorf("failed to delete test token: %w", err)
	}
	return nil
}

// Test submissions

func (s *assessmentService) ListSubmissions(ctx context.Context) ([]*models.TestSubmission, error) {
	submissions, err := s.repos.Submission.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list test submissions: %w", err)
	}
	return submissions, nil
}

func (s *assessmentService) GetSubmission(ctx context.Context, id string) (*models.TestSubmission, error) {
	sub, err := s.repos.Submission.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get test submission: %w", err)
	}
	if sub == nil {
		return nil, notFoundError("Test submission not found")
	}
	return sub, nil
}

// CreateSubmission consumes the token and stores the submission
func (s *assessmentService) CreateSubmission(ctx context.Context, req *models.CreateSubmissionRequest) (*models.TestSubmission, error) {
	t, err := s.ValidateToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repos.TestToken.Expire(ctx, t.ID, &now); err != nil {
		if errors.Is(err, repository.ErrTokenNotActive) {
			return nil, notFoundError("Invalid token")
		}
		return nil, fmt.Errorf("failed to consume test token: %w", err)
	}

	sub := &models.TestSubmission{
		ID:          idgen.Next(),
		TokenID:     t.ID,
		Token:       t.Token,
		UserID:      req.UserID,
		UserName:    req.UserName,
		TestName:    t.TestName,
		Answers:     req.Answers,
		Score:       req.Score,
		Notes:       req.Notes,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if sub.Answers == nil {
		sub.Answers = map[string]string{}
	}
	if err := s.repos.Submission.Create(ctx, sub); err != nil {
		s.log.Error().Err(err).Str("token_id", t.ID).Msg("Token consumed but submission was not stored")
		return nil, fmt.Errorf("failed to create test submission: %w", err)
	}

	s.log.Info().Str("submission_id", sub.ID).Str("token_id", t.ID).Str("user_id", sub.UserID).Msg("Test submitted")
	return sub, nil
}

// UpdateSubmission lets a trainer record a score or notes after review
func (s *assessmentService) UpdateSubmission(ctx context.Context, id string, req *models.UpdateSubmissionRequest) (*models.TestSubmission, error) {
	sub, err := s.GetSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserName != nil {
		sub.UserName = strings.TrimSpace(*req.UserName)
	}
	if req.Score != nil {
		score := *req.Score
		sub.Score = &score
	}
	if req.Notes != nil {
		sub.Notes = *req.Notes
	}
	sub.UpdatedAt = s.now()

	if err := s.repos.Submission.Update(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Test submission not found")
		}
		return nil, fmt.Errorf("failed to update test submission: %w", err)
	}
	return sub, nil
}

func (s *assessmentService) DeleteSubmission(ctx context.Context, id string) error {
	if err := s.repos.Submission.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Test submission not found")
		}
		return fmt.Errorf("failed to delete test submission: %w", err)
	}
	return nil
}
