package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
)

// Quizzes

const quizColumns = `id, title, description, questions, passing_score, time_limit_minutes, status, created_at, updated_at`

// quizRepo is the concrete implementation of QuizRepository
type quizRepo struct {
	db *database.DB
}

// NewQuizRepo creates a new quiz repository
func NewQuizRepo(db *database.DB) QuizRepository {
	return &quizRepo{db: db}
}

func scanQuiz(row rowScanner) (*models.Quiz, error) {
	var q models.Quiz
	var questions []byte
	err := row.Scan(
		&q.ID, &q.Title, &q.Description, &questions, &q.PassingScore,
		&q.TimeLimitMinutes, &q.Status, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions of quiz %s: %w", q.ID, err)
	}
	return &q, nil
}

func (r *quizRepo) List(ctx context.Context) ([]*models.Quiz, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := make([]*models.Quiz, 0)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (r *quizRepo) Create(ctx context.Context, q *models.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	query := `INSERT INTO quizzes (` + quizColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.db.ExecContext(ctx, query,
		q.ID, q.Title, q.Description, questions, q.PassingScore,
		q.TimeLimitMinutes, q.Status, q.CreatedAt, q.UpdatedAt,
	)
	return err
}

func (r *quizRepo) Update(ctx context.Context, q *models.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	query := `
		UPDATE quizzes SET title = $1, description = $2, questions = $3, passing_score = $4,
			time_limit_minutes = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	return expectOne(r.db.ExecContext(ctx, query,
		q.Title, q.Description, questions, q.PassingScore, q.TimeLimitMinutes, q.Status, q.UpdatedAt, q.ID,
	))
}

func (r *quizRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id))
}

func (r *quizRepo) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	q, err := scanQuiz(r.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return q, err
}

func (r *quizRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quizzes").Scan(&count)
	return count, err
}

// Quiz attempts

const attemptColumns = `id, quiz_id, user_id, user_name, answers, score, passed, status, started_at, submitted_at, updated_at`

// quizAttemptRepo is the concrete implementation of QuizAttemptRepository
type quizAttemptRepo struct {
	db *database.DB
}

// NewQuizAttemptRepo creates a new quiz attempt repository
func NewQuizAttemptRepo(db *database.DB) QuizAttemptRepository {
	return &quizAttemptRepo{db: db}
}

func scanAttempt(row rowScanner) (*models.QuizAttempt, error) {
	var a models.QuizAttempt
	var answers []byte
	var submittedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.QuizID, &a.UserID, &a.UserName, &answers, &a.Score, &a.Passed,
		&a.Status, &a.StartedAt, &submittedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers of attempt %s: %w", a.ID, err)
	}
	a.SubmittedAt = timePtr(submittedAt)
	return &a, nil
}

// List returns attempts matching the filter, newest first
func (r *quizAttemptRepo) List(ctx context.Context, filter models.AttemptFilter) ([]*models.QuizAttempt, error) {
	var where []string
	var args []interface{}
	if filter.QuizID != "" {
		args = append(args, filter.QuizID)
		where = append(where, fmt.Sprintf("quiz_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + attemptColumns + ` FROM quiz_attempts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]*models.QuizAttempt, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (r *quizAttemptRepo) Create(ctx context.Context, a *models.QuizAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	query := `INSERT INTO quiz_attempts (` + attemptColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.QuizID, a.UserID, a.UserName, answers, a.Score, a.Passed,
		a.Status, a.StartedAt, nullTime(a.SubmittedAt), a.UpdatedAt,
	)
	return err
}

// Submit stores the scored answers if the attempt is still in progress
func (r *quizAttemptRepo) Submit(ctx context.Context, a *models.QuizAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	query := `
		UPDATE quiz_attempts SET answers = $1, score = $2, passed = $3, status = $4, submitted_at = $5, updated_at = $6
		WHERE id = $7 AND status = 'in_progress'
	`
	err = expectOne(r.db.ExecContext(ctx, query,
		answers, a.Score, a.Passed, models.AttemptSubmitted, nullTime(a.SubmittedAt), a.UpdatedAt, a.ID,
	))
	if err == ErrNotFound {
		return ErrAlreadySubmitted
	}
	return err
}

func (r *quizAttemptRepo) Update(ctx context.Context, a *models.QuizAttempt) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE quiz_attempts SET user_name = $1, updated_at = $2 WHERE id = $3`,
		a.UserName, a.UpdatedAt, a.ID,
	))
}

func (r *quizAttemptRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM quiz_attempts WHERE id = $1`, id))
}

func (r *quizAttemptRepo) GetByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	a, err := scanAttempt(r.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM quiz_attempts WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// Test tokens

const tokenColumns = `id, token, status, test_name, issued_to, created_by, expires_at, used_at, created_at, updated_at`

// testTokenRepo is the concrete implementation of TestTokenRepository
type testTokenRepo struct {
	db *database.DB
}

// NewTestTokenRepo creates a new test token repository
func NewTestTokenRepo(db *database.DB) TestTokenRepository {
	return &testTokenRepo{db: db}
}

func scanToken(row rowScanner) (*models.TestToken, error) {
	var t models.TestToken
	var usedAt sql.NullTime
	err := row.Scan(&t.ID, &t.Token, &t.Status, &t.TestName, &t.IssuedTo, &t.CreatedBy, &t.ExpiresAt, &usedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.UsedAt = timePtr(usedAt)
	return &t, nil
}

func (r *testTokenRepo) List(ctx context.Context) ([]*models.TestToken, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tokenColumns+` FROM test_tokens ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]*models.TestToken, 0)
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *testTokenRepo) Create(ctx context.Context, t *models.TestToken) error {
	query := `INSERT INTO test_tokens (` + tokenColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Token, t.Status, t.TestName, t.IssuedTo, t.CreatedBy, t.ExpiresAt, nullTime(t.UsedAt), t.CreatedAt, t.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *testTokenRepo) Update(ctx context.Context, t *models.TestToken) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE test_tokens SET test_name = $1, issued_to = $2, expires_at = $3, updated_at = $4 WHERE id = $5`,
		t.TestName, t.IssuedTo, t.ExpiresAt, t.UpdatedAt, t.ID,
	))
}

func (r *testTokenRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM test_tokens WHERE id = $1`, id))
}

func (r *testTokenRepo) GetByID(ctx context.Context, id string) (*models.TestToken, error) {
	t, err := scanToken(r.db.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM test_tokens WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *testTokenRepo) GetActiveByToken(ctx context.Context, token string) (*models.TestToken, error) {
	t, err := scanToken(r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM test_tokens WHERE token = $1 AND status = 'active'`, token))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *testTokenRepo) TokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM test_tokens WHERE token = $1)", token).Scan(&exists)
	return exists, err
}

// Expire atomically moves an active token to expired
func (r *testTokenRepo) Expire(ctx context.Context, id string, usedAt *time.Time) error {
	err := expectOne(r.db.ExecContext(ctx,
		`UPDATE test_tokens SET status = 'expired', used_at = COALESCE($1, used_at), updated_at = $2 WHERE id = $3 AND status = 'active'`,
		nullTime(usedAt), time.Now().UTC(), id,
	))
	if err == ErrNotFound {
		return ErrTokenNotActive
	}
	return err
}

// Test submissions

const submissionColumns = `id, token_id, token, user_id, user_name, test_name, answers, score, notes, submitted_at, updated_at`

// submissionRepo is the concrete implementation of TestSubmissionRepository
type submissionRepo struct {
	db *database.DB
}

// NewSubmissionRepo creates a new test submission repository
func NewSubmissionRepo(db *database.DB) TestSubmissionRepository {
	return &submissionRepo{db: db}
}

func scanSubmission(row rowScanner) (*models.TestSubmission, error) {
	var s models.TestSubmission
	var answers []byte
	var score sql.NullInt64
	err := row.Scan(&s.ID, &s.TokenID, &s.Token, &s.UserID, &s.UserName, &s.TestName, &answers, &score, &s.Notes, &s.SubmittedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers of submission %s: %w", s.ID, err)
	}
	s.Score = intPtr(score)
	return &s, nil
}

func (r *submissionRepo) List(ctx context.Context) ([]*models.TestSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+submissionColumns+` FROM test_submissions ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]*models.TestSubmission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

func (r *submissionRepo) Create(ctx context.Context, s *models.TestSubmission) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return err
	}
	query := `INSERT INTO test_submissions (` + submissionColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.TokenID, s.Token, s.UserID, s.UserName, s.TestName, answers, nullInt(s.Score), s.Notes, s.SubmittedAt, s.UpdatedAt,
	)
	return err
}

func (r *submissionRepo) Update(ctx context.Context, s *models.TestSubmission) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE test_submissions SET user_name = $1, score = $2, notes = $3, updated_at = $4 WHERE id = $5`,
		s.UserName, nullInt(s.Score), s.Notes, s.UpdatedAt, s.ID,
	))
}

func (r *submissionRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM test_submissions WHERE id = $1`, id))
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*models.TestSubmission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM test_submissions WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}
