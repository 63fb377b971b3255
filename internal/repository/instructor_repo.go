package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
)

const instructorColumns = `id, external_id, name, email, active, busy, current_assignments, max_assignments, created_at, updated_at`

// instructorRepo is the concrete implementation of InstructorRepository.
// Trainers and examiners live in separate tables with the same layout.
type instructorRepo struct {
	db    *database.DB
	kind  models.InstructorKind
	table string
}

// NewInstructorRepo creates a repository over the trainers or examiners table
func NewInstructorRepo(db *database.DB, kind models.InstructorKind) InstructorRepository {
	table := "trainers"
	if kind == models.KindExaminer {
		table = "examiners"
	}
	return &instructorRepo{db: db, kind: kind, table: table}
}

func (r *instructorRepo) scan(row rowScanner) (*models.Instructor, error) {
	return scanInstructor(row, r.kind)
}

func scanInstructor(row rowScanner, kind models.InstructorKind) (*models.Instructor, error) {
	var i models.Instructor
	err := row.Scan(
		&i.ID, &i.ExternalID, &i.Name, &i.Email, &i.Active, &i.Busy,
		&i.CurrentAssignments, &i.MaxAssignments, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.Kind = kind
	return &i, nil
}

// List returns all instructors, newest first
func (r *instructorRepo) List(ctx context.Context) ([]*models.Instructor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+instructorColumns+` FROM `+r.table+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instructors := make([]*models.Instructor, 0)
	for rows.Next() {
		i, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		instructors = append(instructors, i)
	}
	return instructors, rows.Err()
}

// Create inserts a new instructor. A taken externalId yields ErrDuplicate.
func (r *instructorRepo) Create(ctx context.Context, i *models.Instructor) error {
	query := `INSERT INTO ` + r.table + ` (` + instructorColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		i.ID, i.ExternalID, i.Name, i.Email, i.Active, i.Busy,
		i.CurrentAssignments, i.MaxAssignments, i.CreatedAt, i.UpdatedAt,
	)
	return mapUnique(err)
}

// Update overwrites the profile fields. currentAssignments is owned by the
// training request transfer and is not written here.
func (r *instructorRepo) Update(ctx context.Context, i *models.Instructor) error {
	query := `
		UPDATE ` + r.table + ` SET name = $1, email = $2, active = $3, busy = $4, max_assignments = $5, updated_at = $6
		WHERE id = $7
	`
	return expectOne(r.db.ExecContext(ctx, query,
		i.Name, i.Email, i.Active, i.Busy, i.MaxAssignments, i.UpdatedAt, i.ID,
	))
}

// Delete removes an instructor
func (r *instructorRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id))
}

// GetByID retrieves an instructor by ID
func (r *instructorRepo) GetByID(ctx context.Context, id string) (*models.Instructor, error) {
	i, err := r.scan(r.db.QueryRowContext(ctx, `SELECT `+instructorColumns+` FROM `+r.table+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return i, err
}

// ExternalIDExists checks if an instructor with the given external ID exists
func (r *instructorRepo) ExternalIDExists(ctx context.Context, externalID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+r.table+` WHERE external_id = $1)`, externalID).Scan(&exists)
	return exists, err
}

// SetActive toggles the active flag
func (r *instructorRepo) SetActive(ctx context.Context, id string, active bool) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE `+r.table+` SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id,
	))
}

// Count returns the total number of instructors
func (r *instructorRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+r.table).Scan(&count)
	return count, err
}
