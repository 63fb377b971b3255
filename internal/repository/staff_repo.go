package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
)

const staffColumns = `id, credential_hash, name, email, role, status, permissions, created_at, updated_at`

// staffRepo is the concrete implementation of StaffRepository
type staffRepo struct {
	db *database.DB
}

// NewStaffRepo creates a new staff repository
func NewStaffRepo(db *database.DB) StaffRepository {
	return &staffRepo{db: db}
}

func scanStaff(row rowScanner) (*models.StaffMember, error) {
	var s models.StaffMember
	var perms pq.StringArray
	err := row.Scan(
		&s.ID, &s.CredentialHash, &s.Name, &s.Email, &s.Role, &s.Status,
		&perms, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Permissions = []string(perms)
	return &s, nil
}

// List returns all staff members, newest first
func (r *staffRepo) List(ctx context.Context) ([]*models.StaffMember, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := make([]*models.StaffMember, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// Create inserts a new staff member. A reused credential yields ErrDuplicate.
func (r *staffRepo) Create(ctx context.Context, s *models.StaffMember) error {
	query := `
		INSERT INTO staff (` + staffColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.CredentialHash, s.Name, s.Email, s.Role, s.Status,
		pq.Array(s.Permissions), s.CreatedAt, s.UpdatedAt,
	)
	return mapUnique(err)
}

// Update overwrites the mutable staff fields
func (r *staffRepo) Update(ctx context.Context, s *models.StaffMember) error {
	query := `
		UPDATE staff SET name = $1, email = $2, role = $3, status = $4, permissions = $5, updated_at = $6
		WHERE id = $7
	`
	return expectOne(r.db.ExecContext(ctx, query,
		s.Name, s.Email, s.Role, s.Status, pq.Array(s.Permissions), s.UpdatedAt, s.ID,
	))
}

// Delete removes a staff member
func (r *staffRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id))
}

// GetByID retrieves a staff member by ID
func (r *staffRepo) GetByID(ctx context.Context, id string) (*models.StaffMember, error) {
	s, err := scanStaff(r.db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// GetByCredentialHash retrieves the staff member holding a credential
func (r *staffRepo) GetByCredentialHash(ctx context.Context, hash string) (*models.StaffMember, error) {
	s, err := scanStaff(r.db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE credential_hash = $1`, hash))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// Count returns the total number of staff members
func (r *staffRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM staff").Scan(&count)
	return count, err
}
