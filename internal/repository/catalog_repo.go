package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
)

// Courses

const courseColumns = `id, title, instructor, description, duration, level, students, status, created_at, updated_at`

// courseRepo is the concrete implementation of CourseRepository
type courseRepo struct {
	db *database.DB
}

// NewCourseRepo creates a new course repository
func NewCourseRepo(db *database.DB) CourseRepository {
	return &courseRepo{db: db}
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var c models.Course
	err := row.Scan(
		&c.ID, &c.Title, &c.Instructor, &c.Description, &c.Duration, &c.Level,
		&c.Students, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) List(ctx context.Context) ([]*models.Course, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *courseRepo) Create(ctx context.Context, c *models.Course) error {
	query := `INSERT INTO courses (` + courseColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Instructor, c.Description, c.Duration, c.Level,
		c.Students, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// Update overwrites the descriptive course fields; the student count is
// maintained by AdjustStudents.
func (r *courseRepo) Update(ctx context.Context, c *models.Course) error {
	query := `
		UPDATE courses SET title = $1, instructor = $2, description = $3, duration = $4,
			level = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	return expectOne(r.db.ExecContext(ctx, query,
		c.Title, c.Instructor, c.Description, c.Duration, c.Level, c.Status, c.UpdatedAt, c.ID,
	))
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id))
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*models.Course, error) {
	c, err := scanCourse(r.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// AdjustStudents adds delta to the enrolled student count, never below zero
func (r *courseRepo) AdjustStudents(ctx context.Context, id string, delta int) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE courses SET students = GREATEST(students + $1, 0), updated_at = $2 WHERE id = $3`,
		delta, time.Now().UTC(), id,
	))
}

func (r *courseRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courses").Scan(&count)
	return count, err
}

// Students

const studentColumns = `id, external_id, name, email, rank, course_id, status, progress, created_at, updated_at`

// studentRepo is the concrete implementation of StudentRepository
type studentRepo struct {
	db *database.DB
}

// NewStudentRepo creates a new student repository
func NewStudentRepo(db *database.DB) StudentRepository {
	return &studentRepo{db: db}
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var s models.Student
	err := row.Scan(
		&s.ID, &s.ExternalID, &s.Name, &s.Email, &s.Rank, &s.CourseID,
		&s.Status, &s.Progress, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns students, optionally only those enrolled in courseID
func (r *studentRepo) List(ctx context.Context, courseID string) ([]*models.Student, error) {
	var rows *sql.Rows
	var err error
	if courseID != "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+studentColumns+` FROM students WHERE course_id = $1 ORDER BY created_at DESC, id DESC`, courseID)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY created_at DESC, id DESC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *studentRepo) Create(ctx context.Context, s *models.Student) error {
	query := `INSERT INTO students (` + studentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ExternalID, s.Name, s.Email, s.Rank, s.CourseID,
		s.Status, s.Progress, s.CreatedAt, s.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *studentRepo) Update(ctx context.Context, s *models.Student) error {
	query := `
		UPDATE students SET name = $1, email = $2, rank = $3, status = $4, progress = $5, updated_at = $6
		WHERE id = $7
	`
	return expectOne(r.db.ExecContext(ctx, query,
		s.Name, s.Email, s.Rank, s.Status, s.Progress, s.UpdatedAt, s.ID,
	))
}

func (r *studentRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id))
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*models.Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *studentRepo) ExternalIDExists(ctx context.Context, externalID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM students WHERE external_id = $1)", externalID).Scan(&exists)
	return exists, err
}

func (r *studentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM students").Scan(&count)
	return count, err
}

// Training topics

const topicColumns = `id, name, description, category, duration_minutes, created_at, updated_at`

// topicRepo is the concrete implementation of TopicRepository
type topicRepo struct {
	db *database.DB
}

// NewTopicRepo creates a new training topic repository
func NewTopicRepo(db *database.DB) TopicRepository {
	return &topicRepo{db: db}
}

func scanTopic(row rowScanner) (*models.TrainingTopic, error) {
	var t models.TrainingTopic
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.DurationMinutes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *topicRepo) List(ctx context.Context) ([]*models.TrainingTopic, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+topicColumns+` FROM training_topics ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := make([]*models.TrainingTopic, 0)
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (r *topicRepo) Create(ctx context.Context, t *models.TrainingTopic) error {
	query := `INSERT INTO training_topics (` + topicColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.Category, t.DurationMinutes, t.CreatedAt, t.UpdatedAt,
	)
	return mapUnique(err)
}

func (r *topicRepo) Update(ctx context.Context, t *models.TrainingTopic) error {
	query := `
		UPDATE training_topics SET name = $1, description = $2, category = $3, duration_minutes = $4, updated_at = $5
		WHERE id = $6
	`
	return mapUnique(expectOne(r.db.ExecContext(ctx, query,
		t.Name, t.Description, t.Category, t.DurationMinutes, t.UpdatedAt, t.ID,
	)))
}

func (r *topicRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM training_topics WHERE id = $1`, id))
}

func (r *topicRepo) GetByID(ctx context.Context, id string) (*models.TrainingTopic, error) {
	t, err := scanTopic(r.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM training_topics WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// NameExists checks for a topic with the same name, ignoring case
func (r *topicRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM training_topics WHERE LOWER(name) = LOWER($1))", name,
	).Scan(&exists)
	return exists, err
}
