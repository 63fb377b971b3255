package repository

import (
	"context"
	"database/sql"

	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
)

const assignmentColumns = `id, pilot_id, pilot_name, topic_id, topic_name, scheduled_date, scheduled_time,
	status, assigned_trainer, rating, comments, completed_at, created_at, updated_at`

// assignmentRepo is the concrete implementation of TrainingAssignmentRepository
type assignmentRepo struct {
	db *database.DB
}

// NewAssignmentRepo creates a new training assignment repository
func NewAssignmentRepo(db *database.DB) TrainingAssignmentRepository {
	return &assignmentRepo{db: db}
}

func scanAssignment(row rowScanner) (*models.TrainingAssignment, error) {
	var a models.TrainingAssignment
	var rating sql.NullInt64
	var completedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.PilotID, &a.PilotName, &a.TopicID, &a.TopicName, &a.ScheduledDate, &a.ScheduledTime,
		&a.Status, &a.AssignedTrainer, &rating, &a.Comments, &completedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Rating = intPtr(rating)
	a.CompletedAt = timePtr(completedAt)
	return &a, nil
}

// List returns all training assignments, newest first
func (r *assignmentRepo) List(ctx context.Context) ([]*models.TrainingAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+assignmentColumns+` FROM training_assignments ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*models.TrainingAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// Create inserts a new training assignment
func (r *assignmentRepo) Create(ctx context.Context, a *models.TrainingAssignment) error {
	query := `
		INSERT INTO training_assignments (` + assignmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.PilotID, a.PilotName, a.TopicID, a.TopicName, a.ScheduledDate, a.ScheduledTime,
		a.Status, a.AssignedTrainer, nullInt(a.Rating), a.Comments, nullTime(a.CompletedAt),
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

// Update overwrites the mutable assignment fields
func (r *assignmentRepo) Update(ctx context.Context, a *models.TrainingAssignment) error {
	query := `
		UPDATE training_assignments SET
			scheduled_date = $1, scheduled_time = $2, status = $3, assigned_trainer = $4,
			rating = $5, comments = $6, completed_at = $7, updated_at = $8
		WHERE id = $9
	`
	return expectOne(r.db.ExecContext(ctx, query,
		a.ScheduledDate, a.ScheduledTime, a.Status, a.AssignedTrainer,
		nullInt(a.Rating), a.Comments, nullTime(a.CompletedAt), a.UpdatedAt, a.ID,
	))
}

// Delete removes a training assignment
func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM training_assignments WHERE id = $1`, id))
}

// GetByID retrieves a training assignment by ID
func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*models.TrainingAssignment, error) {
	a, err := scanAssignment(r.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM training_assignments WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}
