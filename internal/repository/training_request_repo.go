package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
)

const requestColumns = `id, requester_id, requester_name, topic_id, topic_name, requested_date, requested_time,
	notes, status, assigned_trainer_id, assigned_trainer_name, assigned_at, version, created_at, updated_at`

// trainingRequestRepo is the concrete implementation of TrainingRequestRepository
type trainingRequestRepo struct {
	db *database.DB
}

// NewTrainingRequestRepo creates a new training request repository
func NewTrainingRequestRepo(db *database.DB) TrainingRequestRepository {
	return &trainingRequestRepo{db: db}
}

func scanTrainingRequest(row rowScanner) (*models.TrainingRequest, error) {
	var tr models.TrainingRequest
	var assignedAt sql.NullTime
	err := row.Scan(
		&tr.ID, &tr.RequesterID, &tr.RequesterName, &tr.TopicID, &tr.TopicName,
		&tr.RequestedDate, &tr.RequestedTime, &tr.Notes, &tr.Status,
		&tr.AssignedTrainerID, &tr.AssignedTrainerName, &assignedAt, &tr.Version,
		&tr.CreatedAt, &tr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	tr.AssignedAt = timePtr(assignedAt)
	return &tr, nil
}

// List returns training requests matching the filter, newest first
func (r *trainingRequestRepo) List(ctx context.Context, filter models.RequestFilter) ([]*models.TrainingRequest, error) {
	var where []string
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.TrainerID != "" {
		args = append(args, filter.TrainerID)
		where = append(where, fmt.Sprintf("assigned_trainer_id = $%d", len(args)))
	}

	query := `SELECT ` + requestColumns + ` FROM training_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*models.TrainingRequest, 0)
	for rows.Next() {
		tr, err := scanTrainingRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, tr)
	}
	return requests, rows.Err()
}

// Create inserts a new training request
func (r *trainingRequestRepo) Create(ctx context.Context, tr *models.TrainingRequest) error {
	query := `
		INSERT INTO training_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		tr.ID, tr.RequesterID, tr.RequesterName, tr.TopicID, tr.TopicName,
		tr.RequestedDate, tr.RequestedTime, tr.Notes, tr.Status,
		tr.AssignedTrainerID, tr.AssignedTrainerName, nullTime(tr.AssignedAt), tr.Version,
		tr.CreatedAt, tr.UpdatedAt,
	)
	return err
}

// Update writes the editable fields guarded by the version the caller read
func (r *trainingRequestRepo) Update(ctx context.Context, tr *models.TrainingRequest) error {
	query := `
		UPDATE training_requests SET
			requested_date = $1, requested_time = $2, notes = $3, status = $4,
			version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
	`
	err := expectOne(r.db.ExecContext(ctx, query,
		tr.RequestedDate, tr.RequestedTime, tr.Notes, tr.Status, tr.UpdatedAt, tr.ID, tr.Version,
	))
	if err == ErrNotFound {
		return ErrVersionConflict
	}
	if err != nil {
		return err
	}
	tr.Version++
	return nil
}

// Delete removes the request and releases its trainer's slot in one transaction
func (r *trainingRequestRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var trainerID string
	err = tx.QueryRowContext(ctx,
		`DELETE FROM training_requests WHERE id = $1 RETURNING assigned_trainer_id`, id,
	).Scan(&trainerID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if trainerID != "" {
		if err := releaseTrainer(ctx, tx, trainerID, time.Now().UTC()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a training request by ID
func (r *trainingRequestRepo) GetByID(ctx context.Context, id string) (*models.TrainingRequest, error) {
	tr, err := scanTrainingRequest(r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM training_requests WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tr, err
}

// Transfer attaches the request to a trainer. The request row is locked and
// its version checked, the new trainer's counter is incremented (with a
// capacity guard when asked), the previous trainer's counter is
// decremented and the request is marked assigned, all in one transaction.
// A request already in progress keeps its status.
func (r *trainingRequestRepo) Transfer(ctx context.Context, p TransferParams) (*models.TrainingRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var previousTrainerID string
	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT assigned_trainer_id, version FROM training_requests WHERE id = $1 FOR UPDATE`, p.RequestID,
	).Scan(&previousTrainerID, &version)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if version != p.ExpectedVersion {
		return nil, ErrVersionConflict
	}

	now := time.Now().UTC()

	if previousTrainerID != p.ToTrainerID {
		claim := `UPDATE trainers SET current_assignments = current_assignments + 1, updated_at = $1 WHERE id = $2`
		if p.RequireCapacity {
			claim += ` AND active AND NOT busy AND current_assignments < max_assignments`
		}
		err := expectOne(tx.ExecContext(ctx, claim, now, p.ToTrainerID))
		if err == ErrNotFound {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM trainers WHERE id = $1)`, p.ToTrainerID).Scan(&exists); err != nil {
				return nil, err
			}
			if !exists {
				return nil, ErrInstructorNotFound
			}
			return nil, ErrInstructorUnavailable
		}
		if err != nil {
			return nil, err
		}

		if previousTrainerID != "" {
			if err := releaseTrainer(ctx, tx, previousTrainerID, now); err != nil {
				return nil, err
			}
		}
	}

	tr, err := scanTrainingRequest(tx.QueryRowContext(ctx, `
		UPDATE training_requests SET
			assigned_trainer_id = $1, assigned_trainer_name = $2,
			status = CASE WHEN status = $6 THEN status ELSE $3 END,
			assigned_at = $4, version = version + 1, updated_at = $4
		WHERE id = $5
		RETURNING `+requestColumns,
		p.ToTrainerID, p.ToTrainerName, models.RequestStatusAssigned, now, p.RequestID, models.RequestStatusInProgress,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tr, nil
}

// releaseTrainer decrements a trainer's counter without going below zero.
// A trainer that was deleted in the meantime is ignored.
func releaseTrainer(ctx context.Context, tx *sql.Tx, trainerID string, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE trainers SET current_assignments = GREATEST(current_assignments - 1, 0), updated_at = $1 WHERE id = $2`,
		now, trainerID,
	)
	return err
}

// RecountTrainer locks the trainer row before counting. Every change to a
// request's assigned_trainer_id also updates that trainer's row in the same
// transaction, so the count cannot miss a transfer committed in between.
func (r *trainingRequestRepo) RecountTrainer(ctx context.Context, trainerID string) (*models.Instructor, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var previous int
	err = tx.QueryRowContext(ctx,
		`SELECT current_assignments FROM trainers WHERE id = $1 FOR UPDATE`, trainerID,
	).Scan(&previous)
	if err == sql.ErrNoRows {
		return nil, 0, ErrInstructorNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	trainer, err := scanInstructor(tx.QueryRowContext(ctx, `
		UPDATE trainers SET
			current_assignments = (SELECT COUNT(*) FROM training_requests WHERE assigned_trainer_id = $1),
			updated_at = $2
		WHERE id = $1
		RETURNING `+instructorColumns,
		trainerID, time.Now().UTC(),
	), models.KindTrainer)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return trainer, previous, nil
}

// CountByStatus counts the requests in a given status
func (r *trainingRequestRepo) CountByStatus(ctx context.Context, status models.RequestStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM training_requests WHERE status = $1`, status,
	).Scan(&count)
	return count, err
}
