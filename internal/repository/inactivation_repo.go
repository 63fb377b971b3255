package repository

import (
	"context"
	"database/sql"

	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
)

const inactivationColumns = `id, user_id, user_name, user_type, action, period_from, period_to, period_days,
	reason, status, reviewed_by, reviewer_name, review_comment, reviewed_at, created_at, updated_at`

// inactivationRepo is the concrete implementation of InactivationRepository
type inactivationRepo struct {
	db *database.DB
}

// NewInactivationRepo creates a new inactivation request repository
func NewInactivationRepo(db *database.DB) InactivationRepository {
	return &inactivationRepo{db: db}
}

func scanInactivation(row rowScanner) (*models.InactivationRequest, error) {
	var ir models.InactivationRequest
	var reviewedAt sql.NullTime
	err := row.Scan(
		&ir.ID, &ir.UserID, &ir.UserName, &ir.UserType, &ir.Action,
		&ir.Period.From, &ir.Period.To, &ir.Period.Days,
		&ir.Reason, &ir.Status, &ir.ReviewedBy, &ir.ReviewerName, &ir.ReviewComment,
		&reviewedAt, &ir.CreatedAt, &ir.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ir.ReviewedAt = timePtr(reviewedAt)
	return &ir, nil
}

// List returns inactivation requests, optionally filtered by status, newest first
func (r *inactivationRepo) List(ctx context.Context, status models.InactivationStatus) ([]*models.InactivationRequest, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+inactivationColumns+` FROM inactivation_requests WHERE status = $1 ORDER BY created_at DESC, id DESC`, status)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+inactivationColumns+` FROM inactivation_requests ORDER BY created_at DESC, id DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*models.InactivationRequest, 0)
	for rows.Next() {
		ir, err := scanInactivation(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, ir)
	}
	return requests, rows.Err()
}

// Create inserts a new inactivation request
func (r *inactivationRepo) Create(ctx context.Context, ir *models.InactivationRequest) error {
	query := `
		INSERT INTO inactivation_requests (` + inactivationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		ir.ID, ir.UserID, ir.UserName, ir.UserType, ir.Action,
		ir.Period.From, ir.Period.To, ir.Period.Days,
		ir.Reason, ir.Status, ir.ReviewedBy, ir.ReviewerName, ir.ReviewComment,
		nullTime(ir.ReviewedAt), ir.CreatedAt, ir.UpdatedAt,
	)
	return err
}

// Review stores the decision only while the request is pending
func (r *inactivationRepo) Review(ctx context.Context, ir *models.InactivationRequest) error {
	query := `
		UPDATE inactivation_requests SET
			status = $1, reviewed_by = $2, reviewer_name = $3, review_comment = $4,
			reviewed_at = $5, updated_at = $6
		WHERE id = $7 AND status = 'pending'
	`
	return expectOne(r.db.ExecContext(ctx, query,
		ir.Status, ir.ReviewedBy, ir.ReviewerName, ir.ReviewComment,
		nullTime(ir.ReviewedAt), ir.UpdatedAt, ir.ID,
	))
}

// Delete removes an inactivation request
func (r *inactivationRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM inactivation_requests WHERE id = $1`, id))
}

// GetByID retrieves an inactivation request by ID
func (r *inactivationRepo) GetByID(ctx context.Context, id string) (*models.InactivationRequest, error) {
	ir, err := scanInactivation(r.db.QueryRowContext(ctx,
		`SELECT `+inactivationColumns+` FROM inactivation_requests WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ir, err
}
