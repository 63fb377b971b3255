package models

import (
	"time"
)

// Question is a single multiple-choice quiz question
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2,dive,required"`
	CorrectOption int      `json:"correctOption" binding:"min=0"`
}

// DefaultPassingScore is the percentage needed to pass a quiz by default
const DefaultPassingScore = 70

// Quiz is a set of questions trainees can attempt
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Questions        []Question `json:"questions"`
	PassingScore     int        `json:"passingScore"`
	TimeLimitMinutes int        `json:"timeLimitMinutes"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// CreateQuizRequest is the body of POST /quizzes
type CreateQuizRequest struct {
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description" binding:"max=5000"`
	Questions        []Question `json:"questions" binding:"required,min=1,dive"`
	PassingScore     *int       `json:"passingScore" binding:"omitempty,min=0,max=100"`
	TimeLimitMinutes int        `json:"timeLimitMinutes" binding:"min=0"`
	Status           string     `json:"status" binding:"omitempty,oneof=draft published"`
}

// UpdateQuizRequest is the body of PATCH /quizzes/:id
type UpdateQuizRequest struct {
	Title            *string    `json:"title" binding:"omitempty,min=1"`
	Description      *string    `json:"description" binding:"omitempty,max=5000"`
	Questions        []Question `json:"questions" binding:"omitempty,min=1,dive"`
	PassingScore     *int       `json:"passingScore" binding:"omitempty,min=0,max=100"`
	TimeLimitMinutes *int       `json:"timeLimitMinutes" binding:"omitempty,min=0"`
	Status           *string    `json:"status" binding:"omitempty,oneof=draft published"`
}

// AttemptStatus is the state of a quiz attempt
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// QuizAttempt is one trainee's attempt at a quiz
type QuizAttempt struct {
	ID          string        `json:"id"`
	QuizID      string        `json:"quizId"`
	UserID      string        `json:"userId"`
	UserName    string        `json:"userName,omitempty"`
	Answers     []int         `json:"answers"`
	Score       int           `json:"score"`
	Passed      bool          `json:"passed"`
	Status      AttemptStatus `json:"status"`
	StartedAt   time.Time     `json:"startedAt"`
	SubmittedAt *time.Time    `json:"submittedAt,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// AttemptFilter narrows a quiz attempt listing
type AttemptFilter struct {
	QuizID string
	UserID string
}

// StartAttemptRequest is the body of POST /quizzes/:id/attempts
type StartAttemptRequest struct {
	UserID   string `json:"userId" binding:"required"`
	UserName string `json:"userName"`
}

// SubmitAttemptRequest is the body of POST /quiz-attempts/:id/submit. An
// answer of -1 leaves the question unanswered.
type SubmitAttemptRequest struct {
	Answers []int `json:"answers" binding:"required,dive,min=-1"`
}

// UpdateAttemptRequest is the body of PATCH /quiz-attempts/:id. Answers and
// score only change through submit.
type UpdateAttemptRequest struct {
	UserName *string `json:"userName" binding:"omitempty,max=200"`
}

// TokenStatus is the state of a test token
type TokenStatus string

const (
	TokenActive  TokenStatus = "active"
	TokenExpired TokenStatus = "expired"
)

// TokenLength is the number of characters in a test token
const TokenLength = 8

// DefaultTokenLifetime is how long a token stays valid when no lifetime is given
const DefaultTokenLifetime = 60 * time.Minute

// TestToken is a short single-use code gating access to an examination
type TestToken struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	Status    TokenStatus `json:"status"`
	TestName  string      `json:"testName"`
	IssuedTo  string      `json:"issuedTo,omitempty"`
	CreatedBy string      `json:"createdBy,omitempty"`
	ExpiresAt time.Time   `json:"expiresAt"`
	UsedAt    *time.Time  `json:"usedAt,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// CreateTokenRequest is the body of POST /test-tokens
type CreateTokenRequest struct {
	TestName         string `json:"testName" binding:"required"`
	IssuedTo         string `json:"issuedTo"`
	CreatedBy        string `json:"createdBy"`
	ExpiresInMinutes int    `json:"expiresInMinutes" binding:"min=0,max=10080"`
}

// UpdateTokenRequest is the body of PATCH /test-tokens/:id. ExpiresInMinutes
// moves the expiry relative to now and is only accepted for active tokens.
type UpdateTokenRequest struct {
	TestName         *string `json:"testName" binding:"omitempty,min=1"`
	IssuedTo         *string `json:"issuedTo"`
	ExpiresInMinutes *int    `json:"expiresInMinutes" binding:"omitempty,min=1,max=10080"`
}

// ValidateTokenRequest is the body of POST /test-tokens/validate
type ValidateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// TestSubmission is a completed examination handed in with a test token
type TestSubmission struct {
	ID          string            `json:"id"`
	TokenID     string            `json:"tokenId"`
	Token       string            `json:"token"`
	UserID      string            `json:"userId"`
	UserName    string            `json:"userName,omitempty"`
	TestName    string            `json:"testName"`
	Answers     map[string]string `json:"answers"`
	Score       *int              `json:"score,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// CreateSubmissionRequest is the body of POST /test-submissions
type CreateSubmissionRequest struct {
	Token    string            `json:"token" binding:"required"`
	UserID   string            `json:"userId" binding:"required"`
	UserName string            `json:"userName"`
	Answers  map[string]string `json:"answers" binding:"required"`
	Score    *int              `json:"score" binding:"omitempty,min=0,max=100"`
	Notes    string            `json:"notes" binding:"max=5000"`
}

// UpdateSubmissionRequest is the body of PATCH /test-submissions/:id, used
// by examiners to grade a submission
type UpdateSubmissionRequest struct {
	UserName *string `json:"userName" binding:"omitempty,max=200"`
	Score    *int    `json:"score" binding:"omitempty,min=0,max=100"`
	Notes    *string `json:"notes" binding:"omitempty,max=5000"`
}
