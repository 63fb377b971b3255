package repository

import (
	"context"
	"errors"
	"time"

	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
)

var (
	// ErrNotFound is returned by updates and deletes that matched no row
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict is returned when a training request changed since it was read
	ErrVersionConflict = errors.New("training request was modified concurrently")

	// ErrInstructorNotFound is returned when a transfer names a missing trainer
	ErrInstructorNotFound = errors.New("trainer not found")

	// ErrInstructorUnavailable is returned when a capacity-checked transfer finds the trainer full, busy or inactive
	ErrInstructorUnavailable = errors.New("trainer is not available")

	// ErrAlreadySubmitted is returned when a quiz attempt was already submitted
	ErrAlreadySubmitted = errors.New("quiz attempt already submitted")

	// ErrTokenNotActive is returned when a test token is no longer active
	ErrTokenNotActive = errors.New("test token is not active")

	// ErrDuplicate is returned when an insert or update hits a unique constraint
	ErrDuplicate = errors.New("duplicate key")
)

// StaffRepository defines the interface for staff data operations
type StaffRepository interface {
	List(ctx context.Context) ([]*models.StaffMember, error)
	Create(ctx context.Context, staff *models.StaffMember) error
	Update(ctx context.Context, staff *models.StaffMember) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.StaffMember, error)
	GetByCredentialHash(ctx context.Context, hash string) (*models.StaffMember, error)
	Count(ctx context.Context) (int, error)
}

// InstructorRepository defines the interface for trainer and examiner data operations
type InstructorRepository interface {
	List(ctx context.Context) ([]*models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Instructor, error)
	ExternalIDExists(ctx context.Context, externalID string) (bool, error)
	SetActive(ctx context.Context, id string, active bool) error
	Count(ctx context.Context) (int, error)
}

// TransferParams describes moving a training request to a trainer. All
// steps run in one transaction guarded by ExpectedVersion.
type TransferParams struct {
	RequestID       string
	ExpectedVersion int
	ToTrainerID     string
	ToTrainerName   string
	// RequireCapacity makes the transfer fail with ErrInstructorUnavailable
	// unless the trainer is active, not busy and below maxAssignments.
	RequireCapacity bool
}

// TrainingRequestRepository defines the interface for training request data operations
type TrainingRequestRepository interface {
	List(ctx context.Context, filter models.RequestFilter) ([]*models.TrainingRequest, error)
	Create(ctx context.Context, req *models.TrainingRequest) error
	// Update writes the editable fields if the stored version still equals
	// req.Version, then bumps the version.
	Update(ctx context.Context, req *models.TrainingRequest) error
	// Delete removes the request and releases its trainer's slot
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.TrainingRequest, error)
	Transfer(ctx context.Context, params TransferParams) (*models.TrainingRequest, error)
	// RecountTrainer re-derives a trainer's currentAssignments from the
	// requests that name it and returns the trainer with the previously
	// stored count. It returns ErrInstructorNotFound for a missing trainer.
	RecountTrainer(ctx context.Context, trainerID string) (*models.Instructor, int, error)
	CountByStatus(ctx context.Context, status models.RequestStatus) (int, error)
}

// TrainingAssignmentRepository defines the interface for training assignment data operations
type TrainingAssignmentRepository interface {
	List(ctx context.Context) ([]*models.TrainingAssignment, error)
	Create(ctx context.Context, assignment *models.TrainingAssignment) error
	Update(ctx context.Context, assignment *models.TrainingAssignment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.TrainingAssignment, error)
}

// InactivationRepository defines the interface for inactivation request data operations
type InactivationRepository interface {
	List(ctx context.Context, status models.InactivationStatus) ([]*models.InactivationRequest, error)
	Create(ctx context.Context, req *models.InactivationRequest) error
	// Review records a decision if the request is still pending
	Review(ctx context.Context, req *models.InactivationRequest) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.InactivationRequest, error)
}

// CourseRepository defines the interface for course data operations
type CourseRepository interface {
	List(ctx context.Context) ([]*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	AdjustStudents(ctx context.Context, id string, delta int) error
	Count(ctx context.Context) (int, error)
}

// StudentRepository defines the interface for student data operations
type StudentRepository interface {
	List(ctx context.Context, courseID string) ([]*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	ExternalIDExists(ctx context.Context, externalID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// TopicRepository defines the interface for training topic data operations
type TopicRepository interface {
	List(ctx context.Context) ([]*models.TrainingTopic, error)
	Create(ctx context.Context, topic *models.TrainingTopic) error
	Update(ctx context.Context, topic *models.TrainingTopic) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.TrainingTopic, error)
	NameExists(ctx context.Context, name string) (bool, error)
}

// QuizRepository defines the interface for quiz data operations
type QuizRepository interface {
	List(ctx context.Context) ([]*models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	Count(ctx context.Context) (int, error)
}

// QuizAttemptRepository defines the interface for quiz attempt data operations
type QuizAttemptRepository interface {
	List(ctx context.Context, filter models.AttemptFilter) ([]*models.QuizAttempt, error)
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	// Submit stores answers and score if the attempt is still in progress
	Submit(ctx context.Context, attempt *models.QuizAttempt) error
	Update(ctx context.Context, attempt *models.QuizAttempt) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.QuizAttempt, error)
}

// TestTokenRepository defines the interface for test token data operations
type TestTokenRepository interface {
	List(ctx context.Context) ([]*models.TestToken, error)
	Create(ctx context.Context, token *models.TestToken) error
	// Update writes the descriptive fields and expiry. It never changes
	// the code or status.
	Update(ctx context.Context, token *models.TestToken) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.TestToken, error)
	// GetActiveByToken returns nil, nil unless the token exists and is active
	GetActiveByToken(ctx context.Context, token string) (*models.TestToken, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	// Expire moves an active token to expired, stamping usedAt when given
	Expire(ctx context.Context, id string, usedAt *time.Time) error
}

// TestSubmissionRepository defines the interface for test submission data operations
type TestSubmissionRepository interface {
	List(ctx context.Context) ([]*models.TestSubmission, error)
	Create(ctx context.Context, submission *models.TestSubmission) error
	Update(ctx context.Context, submission *models.TestSubmission) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.TestSubmission, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Staff           StaffRepository
	Trainers        InstructorRepository
	Examiners       InstructorRepository
	TrainingRequest TrainingRequestRepository
	Assignment      TrainingAssignmentRepository
	Inactivation    InactivationRepository
	Course          CourseRepository
	Student         StudentRepository
	Topic           TopicRepository
	Quiz            QuizRepository
	QuizAttempt     QuizAttemptRepository
	TestToken       TestTokenRepository
	Submission      TestSubmissionRepository
}

// Instructors returns the repository for the given kind
func (r *Repositories) Instructors(kind models.InstructorKind) InstructorRepository {
	if kind == models.KindExaminer {
		return r.Examiners
	}
	return r.Trainers
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Staff:           NewStaffRepo(db),
		Trainers:        NewInstructorRepo(db, models.KindTrainer),
		Examiners:       NewInstructorRepo(db, models.KindExaminer),
		TrainingRequest: NewTrainingRequestRepo(db),
		Assignment:      NewAssignmentRepo(db),
		Inactivation:    NewInactivationRepo(db),
		Course:          NewCourseRepo(db),
		Student:         NewStudentRepo(db),
		Topic:           NewTopicRepo(db),
		Quiz:            NewQuizRepo(db),
		QuizAttempt:     NewQuizAttemptRepo(db),
		TestToken:       NewTestTokenRepo(db),
		Submission:      NewSubmissionRepo(db),
	}
}
