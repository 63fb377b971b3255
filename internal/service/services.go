package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/cache"
	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/notify"
	"github.com/training-management-api/internal/repository"
)

// StaffService defines the interface for staff directory operations
type StaffService interface {
	List(ctx context.Context) ([]*models.StaffMember, error)
	Get(ctx context.Context, id string) (*models.StaffMember, error)
	Create(ctx context.Context, req *models.CreateStaffRequest) (*models.StaffMember, error)
	Update(ctx context.Context, id string, req *models.UpdateStaffRequest) (*models.StaffMember, error)
	Delete(ctx context.Context, id string) error
	Roles() map[models.Role][]string
}

// InstructorService defines the interface for trainer and examiner operations
type InstructorService interface {
	List(ctx context.Context, kind models.InstructorKind) ([]*models.Instructor, error)
	Get(ctx context.Context, kind models.InstructorKind, id string) (*models.Instructor, error)
	Create(ctx context.Context, kind models.InstructorKind, req *models.CreateInstructorRequest) (*models.Instructor, error)
	Update(ctx context.Context, kind models.InstructorKind, id string, req *models.UpdateInstructorRequest) (*models.Instructor, error)
	Delete(ctx context.Context, kind models.InstructorKind, id string) error
	Recount(ctx context.Context, trainerID string) (*models.Instructor, error)
}

// TrainingService defines the interface for the training request workflow
type TrainingService interface {
	List(ctx context.Context, filter models.RequestFilter) ([]*models.TrainingRequest, error)
	Get(ctx context.Context, id string) (*models.TrainingRequest, error)
	Create(ctx context.Context, req *models.CreateTrainingRequest) (*models.TrainingRequest, error)
	Update(ctx context.Context, id string, req *models.UpdateTrainingRequest) (*models.TrainingRequest, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, req *models.AssignTrainingRequest) (*models.TrainingRequest, error)
	Pickup(ctx context.Context, req *models.AssignTrainingRequest) (*models.TrainingRequest, error)
	Reassign(ctx context.Context, req *models.ReassignTrainingRequest) (*models.TrainingRequest, error)
}

// AssignmentService defines the interface for training assignment operations
type AssignmentService interface {
	List(ctx context.Context) ([]*models.TrainingAssignment, error)
	Get(ctx context.Context, id string) (*models.TrainingAssignment, error)
	Create(ctx context.Context, req *models.CreateAssignmentRequest) (*models.TrainingAssignment, error)
	Update(ctx context.Context, id string, req *models.UpdateAssignmentRequest) (*models.TrainingAssignment, error)
	Delete(ctx context.Context, id string) error
}

// InactivationService defines the interface for inactivation request operations
type InactivationService interface {
	List(ctx context.Context, status models.InactivationStatus) ([]*models.InactivationRequest, error)
	Get(ctx context.Context, id string) (*models.InactivationRequest, error)
	Create(ctx context.Context, req *models.CreateInactivationRequest) (*models.InactivationRequest, error)
	Review(ctx context.Context, id string, req *models.ReviewInactivationRequest) (*models.InactivationRequest, error)
	Delete(ctx context.Context, id string) error
}

// CatalogService defines the interface for courses, students and training topics
type CatalogService interface {
	ListCourses(ctx context.Context) ([]*models.Course, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, id string, req *models.UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, id string) error

	ListStudents(ctx context.Context, courseID string) ([]*models.Student, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error)
	UpdateStudent(ctx context.Context, id string, req *models.UpdateStudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, id string) error

	ListTopics(ctx context.Context) ([]*models.TrainingTopic, error)
	GetTopic(ctx context.Context, id string) (*models.TrainingTopic, error)
	CreateTopic(ctx context.Context, req *models.CreateTopicRequest) (*models.TrainingTopic, error)
	UpdateTopic(ctx context.Context, id string, req *models.UpdateTopicRequest) (*models.TrainingTopic, error)
	DeleteTopic(ctx context.Context, id string) error
}

// AssessmentService defines the interface for quizzes, attempts, tokens and submissions
type AssessmentService interface {
	ListQuizzes(ctx context.Context) ([]*models.Quiz, error)
	GetQuiz(ctx context.Context, id string) (*models.Quiz, error)
	CreateQuiz(ctx context.Context, req *models.CreateQuizRequest) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, id string, req *models.UpdateQuizRequest) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error

	ListAttempts(ctx context.Context, filter models.AttemptFilter) ([]*models.QuizAttempt, error)
	GetAttempt(ctx context.Context, id string) (*models.QuizAttempt, error)
	StartAttempt(ctx context.Context, quizID string, req *models.StartAttemptRequest) (*models.QuizAttempt, error)
	SubmitAttempt(ctx context.Context, id string, req *models.SubmitAttemptRequest) (*models.QuizAttempt, error)
	UpdateAttempt(ctx context.Context, id string, req *models.UpdateAttemptRequest) (*models.QuizAttempt, error)
	DeleteAttempt(ctx context.Context, id string) error

	ListTokens(ctx context.Context) ([]*models.TestToken, error)
	GetToken(ctx context.Context, id string) (*models.TestToken, error)
	IssueToken(ctx context.Context, req *models.CreateTokenRequest) (*models.TestToken, error)
	UpdateToken(ctx context.Context, id string, req *models.UpdateTokenRequest) (*models.TestToken, error)
	ValidateToken(ctx context.Context, token string) (*models.TestToken, error)
	DeleteToken(ctx context.Context, id string) error

	ListSubmissions(ctx context.Context) ([]*models.TestSubmission, error)
	GetSubmission(ctx context.Context, id string) (*models.TestSubmission, error)
	CreateSubmission(ctx context.Context, req *models.CreateSubmissionRequest) (*models.TestSubmission, error)
	UpdateSubmission(ctx context.Context, id string, req *models.UpdateSubmissionRequest) (*models.TestSubmission, error)
	DeleteSubmission(ctx context.Context, id string) error
}

// Verification is the result of a successful identity check
type Verification struct {
	User         *models.VerifiedUser
	SessionToken string
}

// IdentityService defines the interface for identity verification
type IdentityService interface {
	Verify(ctx context.Context, apiKey string) (*Verification, error)
	Session(token string) (*auth.Claims, error)
	Pilot(ctx context.Context, pilotID string) (*models.Profile, error)
}

// NotificationService defines the interface for outbound chat notifications
type NotificationService interface {
	Send(ctx context.Context, req *models.NotificationRequest) error
	// Publish queues a workflow event; it never blocks and drops the event
	// when the queue is full or no webhook is configured
	Publish(msg notify.Message)
	StartDispatcher(ctx context.Context)
	StopDispatcher()
}

// StatsService defines the interface for dashboard statistics
type StatsService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	Health(ctx context.Context) error
}

// AirlineClient is the subset of the airline API the services call
type AirlineClient interface {
	Profile(ctx context.Context, apiKey string) (*models.Profile, error)
	Pilot(ctx context.Context, apiKey, pilotID string) (*models.Profile, error)
}

// Notifier delivers a formatted message
type Notifier interface {
	Configured() bool
	Send(ctx context.Context, msg notify.Message) error
}

// HealthChecker reports whether the database is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds the integrations services call out to
type Dependencies struct {
	Airline  AirlineClient
	Notifier Notifier
	Cache    cache.ProfileCache
	Admin    *auth.AdminCredential
	DB       HealthChecker
}

// Services holds all service interfaces
type Services struct {
	Staff         StaffService
	Instructors   InstructorService
	Training      TrainingService
	Assignments   AssignmentService
	Inactivation  InactivationService
	Catalog       CatalogService
	Assessment    AssessmentService
	Identity      IdentityService
	Notifications NotificationService
	Stats         StatsService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, deps Dependencies, cfg *config.Config, log zerolog.Logger) *Services {
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}

	notifications := newNotificationService(deps.Notifier, log)

	return &Services{
		Staff:         newStaffService(repos.Staff, deps.Cache, log),
		Instructors:   newInstructorService(repos, log),
		Training:      newTrainingService(repos, notifications, log),
		Assignments:   newAssignmentService(repos.Assignment, log),
		Inactivation:  newInactivationService(repos, notifications, log),
		Catalog:       newCatalogService(repos, log),
		Assessment:    newAssessmentService(repos, log),
		Identity:      newIdentityService(repos.Staff, deps, cfg.Auth, log),
		Notifications: notifications,
		Stats:         newStatsService(repos, deps.DB, log),
	}
}
