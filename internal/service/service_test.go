package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/mocks"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/notify"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/internal/service"
)

func newTestServices(deps service.Dependencies) (*service.Services, *repository.Repositories) {
	repos := mocks.NewRepositories()
	if deps.Notifier == nil {
		deps.Notifier = mocks.NewMockNotifier(false)
	}
	if deps.Admin == nil {
		deps.Admin = auth.NewAdminCredential("", "")
	}
	cfg := &config.Config{}
	return service.NewServices(repos, deps, cfg, zerolog.Nop()), repos
}

func trainersOf(repos *repository.Repositories) *mocks.MockInstructorRepository {
	return repos.Trainers.(*mocks.MockInstructorRepository)
}

func expectKind(t *testing.T, err error, want service.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s error, got nil", want)
	}
	if got := service.KindOf(err); got != want {
		t.Fatalf("Expected %s error, got %q (%v)", want, got, err)
	}
}

func TestStaffService_PermissionsFollowRole(t *testing.T) {
	svc, _ := newTestServices(service.Dependencies{})
	ctx := context.Background()

	member, err := svc.Staff.Create(ctx, &models.CreateStaffRequest{
		APIKey: "staff-key",
		Name:   "Ana Examiner",
		Role:   models.RoleExaminer,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if member.Status != "active" {
		t.Errorf("Expected default status active, got %s", member.Status)
	}
	if len(member.Permissions) != len(models.PermissionsFor(models.RoleExaminer)) {
		t.Errorf("Unexpected permissions %v", member.Permissions)
	}
	if member.CredentialHash != auth.HashCredential("staff-key") {
		t.Error("Credential should be stored hashed")
	}

	admin := models.RoleAdmin
	updated, err := svc.Staff.Update(ctx, member.ID, &models.UpdateStaffRequest{Role: &admin})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated.Permissions) != len(models.PermissionsFor(models.RoleAdmin)) {
		t.Errorf("Permissions should be re-derived on role change, got %v", updated.Permissions)
	}

	_, err = svc.Staff.Create(ctx, &models.CreateStaffRequest{APIKey: "staff-key", Name: "Dup", Role: models.RoleTrainer})
	expectKind(t, err, service.ErrValidation)
}

func TestStaffService_NotFound(t *testing.T) {
	svc, _ := newTestServices(service.Dependencies{})
	ctx := context.Background()

	_, err := svc.Staff.Get(ctx, "missing")
	expectKind(t, err, service.ErrNotFound)
	expectKind(t, svc.Staff.Delete(ctx, "missing"), service.ErrNotFound)

	name := "x"
	_, err = svc.Staff.Update(ctx, "missing", &models.UpdateStaffRequest{Name: &name})
	expectKind(t, err, service.ErrNotFound)
}

func TestInstructorService_Create(t *testing.T) {
	svc, _ := newTestServices(service.Dependencies{})
	ctx := context.Background()

	trainer, err := svc.Instructors.Create(ctx, models.KindTrainer, &models.CreateInstructorRequest{
		ExternalID: "T-1",
		Name:       "Tom Trainer",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !trainer.Active || trainer.MaxAssignments != models.DefaultMaxAssignments || trainer.CurrentAssignments != 0 {
		t.Errorf("Unexpected defaults: %+v", trainer)
	}

	_, err = svc.Instructors.Create(ctx, models.KindTrainer, &models.CreateInstructorRequest{ExternalID: "T-1", Name: "Other"})
	expectKind(t, err, service.ErrValidation)

	// examiners live in their own collection
	if _, err := svc.Instructors.Create(ctx, models.KindExaminer, &models.CreateInstructorRequest{ExternalID: "T-1", Name: "Eve"}); err != nil {
		t.Errorf("Examiner with same externalId should be allowed: %v", err)
	}
	_, err = svc.Instructors.Get(ctx, models.KindExaminer, trainer.ID)
	expectKind(t, err, service.ErrNotFound)
}

func TestInactivationService_ApprovalTogglesActive(t *testing.T) {
	svc, repos := newTestServices(service.Dependencies{})
	ctx := context.Background()
	trainers := trainersOf(repos)
	trainers.Instructors["t1"] = &models.Instructor{ID: "t1", Name: "Tom", Active: true, MaxAssignments: 3}

	ir, err := svc.Inactivation.Create(ctx, &models.CreateInactivationRequest{
		UserID:   "t1",
		UserType: models.KindTrainer,
		From:     "2024-03-01",
		To:       "2024-03-10",
		Reason:   "Leave",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if ir.Status != models.InactivationPending || ir.Action != models.ActionInactivate {
		t.Errorf("Unexpected request: %+v", ir)
	}
	if ir.Period.Days != 10 {
		t.Errorf("Expected 10 days, got %d", ir.Period.Days)
	}
	if ir.UserName != "Tom" {
		t.Errorf("Expected user name from instructor, got %q", ir.UserName)
	}

	reviewed, err := svc.Inactivation.Review(ctx, ir.ID, &models.ReviewInactivationRequest{
		Decision:   models.InactivationApproved,
		ReviewedBy: "admin",
	})
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if reviewed.Status != models.InactivationApproved || reviewed.ReviewedAt == nil {
		t.Errorf("Unexpected review result: %+v", reviewed)
	}
	if trainers.Instructors["t1"].Active {
		t.Error("Trainer should be inactive after approval")
	}

	_, err = svc.Inactivation.Review(ctx, ir.ID, &models.ReviewInactivationRequest{
		Decision:   models.InactivationDenied,
		ReviewedBy: "admin",
	})
	expectKind(t, err, service.ErrValidation)
}

func TestInactivationService_DenialLeavesInstructor(t *testing.T) {
	svc, repos := newTestServices(service.Dependencies{})
	ctx := context.Background()
	trainers := trainersOf(repos)
	trainers.Instructors["t1"] = &models.Instructor{ID: "t1", Name: "Tom", Active: true, MaxAssignments: 3}

	ir, err := svc.Inactivation.Create(ctx, &models.CreateInactivationRequest{
		UserID: "t1", UserType: models.KindTrainer, From: "2024-03-01", To: "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Inactivation.Review(ctx, ir.ID, &models.ReviewInactivationRequest{
		Decision: models.InactivationDenied, ReviewedBy: "admin",
	}); err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if !trainers.Instructors["t1"].Active {
		t.Error("Denied request should not change the trainer")
	}
}

func TestInactivationService_CreateValidation(t *testing.T) {
	svc, repos := newTestServices(service.Dependencies{})
	ctx := context.Background()
	trainersOf(repos).Instructors["t1"] = &models.Instructor{ID: "t1", Active: true}

	tests := []struct {
		name string
		req  models.CreateInactivationRequest
		want service.ErrorKind
	}{
		{"to before from", models.CreateInactivationRequest{UserID: "t1", UserType: models.KindTrainer, From: "2024-03-10", To: "2024-03-01"}, service.ErrValidation},
		{"bad date", models.CreateInactivationRequest{UserID: "t1", UserType: models.KindTrainer, From: "2024-13-01", To: "2024-03-01"}, service.ErrValidation},
		{"unknown trainer", models.CreateInactivationRequest{UserID: "nope", UserType: models.KindTrainer, From: "2024-03-01", To: "2024-03-02"}, service.ErrNotFound},
		{"wrong collection", models.CreateInactivationRequest{UserID: "t1", UserType: models.KindExaminer, From: "2024-03-01", To: "2024-03-02"}, service.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Inactivation.Create(ctx, &tt.req)
			expectKind(t, err, tt.want)
		})
	}
}

func TestCatalogService_StudentCountFollowsEnrolment(t *testing.T) {
	svc, repos := newTestServices(service.Dependencies{})
	ctx := context.Background()

	course, err := svc.Catalog.CreateCourse(ctx, &models.CreateCourseRequest{Title: "Type Rating", Instructor: "Tom"})
	if err != nil {
		t.Fatalf("CreateCourse failed: %v", err)
	}
	if course.Students != 0 || course.Status != "active" {
		t.Errorf("Unexpected course: %+v", course)
	}

	student, err := svc.Catalog.CreateStudent(ctx, &models.CreateStudentRequest{ExternalID: "P-1", Name: "Pat", CourseID: course.ID})
	if err != nil {
		t.Fatalf("CreateStudent failed: %v", err)
	}
	stored, _ := repos.Course.GetByID(ctx, course.ID)
	if stored.Students != 1 {
		t.Errorf("Expected 1 student, got %d", stored.Students)
	}

	_, err = svc.Catalog.CreateStudent(ctx, &models.CreateStudentRequest{ExternalID: "P-1", Name: "Dup"})
	expectKind(t, err, service.ErrValidation)

	_, err = svc.Catalog.CreateStudent(ctx, &models.CreateStudentRequest{ExternalID: "P-2", Name: "Lost", CourseID: "nope"})
	expectKind(t, err, service.ErrValidation)

	if err := svc.Catalog.DeleteStudent(ctx, student.ID); err != nil {
		t.Fatalf("DeleteStudent failed: %v", err)
	}
	stored, _ = repos.Course.GetByID(ctx, course.ID)
	if stored.Students != 0 {
		t.Errorf("Expected 0 students, got %d", stored.Students)
	}
}

func TestCatalogService_TopicNamesUnique(t *testing.T) {
	svc, _ := newTestServices(service.Dependencies{})
	ctx := context.Background()

	topic, err := svc.Catalog.CreateTopic(ctx, &models.CreateTopicRequest{Name: "Crosswind Landings"})
	if err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}
	_, err = svc.Catalog.CreateTopic(ctx, &models.CreateTopicRequest{Name: "crosswind landings"})
	expectKind(t, err, service.ErrValidation)

	// renaming to a different case of its own name is fine
	same := "CROSSWIND LANDINGS"
	if _, err := svc.Catalog.UpdateTopic(ctx, topic.ID, &models.UpdateTopicRequest{Name: &same}); err != nil {
		t.Errorf("UpdateTopic failed: %v", err)
	}
}

func TestAssignmentService_CompletionStampsTime(t *testing.T) {
	svc, _ := newTestServices(service.Dependencies{})
	ctx := context.Background()

	a, err := svc.Assignments.Create(ctx, &models.CreateAssignmentRequest{
		PilotID: "p1", TopicID: "top1", ScheduledDate: "2024-05-01",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.Status != models.AssignmentStatusScheduled || a.CompletedAt != nil {
		t.Errorf("Unexpected assignment: %+v", a)
	}

	done := models.AssignmentStatusCompleted
	rating := 4
	updated, err := svc.Assignments.Update(ctx, a.ID, &models.UpdateAssignmentRequest{Status: &done, Rating: &rating})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.CompletedAt == nil || updated.Rating == nil || *updated.Rating != 4 {
		t.Errorf("Unexpected completed assignment: %+v", updated)
	}
}

func TestNotificationService_Send(t *testing.T) {
	failing := mocks.NewMockNotifier(true)
	failing.Err = errors.New("boom")

	tests := []struct {
		name     string
		notifier *mocks.MockNotifier
		want     service.ErrorKind
	}{
		{"not configured", mocks.NewMockNotifier(false), service.ErrUnavailable},
		{"webhook failure", failing, service.ErrUpstream},
		{"delivered", mocks.NewMockNotifier(true), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestServices(service.Dependencies{Notifier: tt.notifier})
			err := svc.Notifications.Send(context.Background(), &models.NotificationRequest{
				Title:   "Checkride",
				Message: "Scheduled",
				Fields:  []models.NotificationField{{Name: "Pilot", Value: "VA042"}},
			})
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Send failed: %v", err)
				}
				if tt.notifier.Count() != 1 {
					t.Errorf("Expected 1 message, got %d", tt.notifier.Count())
				}
				return
			}
			expectKind(t, err, tt.want)
		})
	}
}

func TestNotificationService_DispatcherDeliversEvents(t *testing.T) {
	notifier := mocks.NewMockNotifier(true)
	svc, repos := newTestServices(service.Dependencies{Notifier: notifier})
	ctx := context.Background()
	trainersOf(repos).Instructors["t1"] = &models.Instructor{ID: "t1", Name: "Tom", Active: true, MaxAssignments: 3}

	go svc.Notifications.StartDispatcher(ctx)
	defer svc.Notifications.StopDispatcher()

	if _, err := svc.Training.Create(ctx, &models.CreateTrainingRequest{RequesterID: "p1", TopicID: "top1", RequestedDate: "2024-05-01"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for notifier.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if notifier.Count() != 1 {
		t.Errorf("Expected 1 delivered event, got %d", notifier.Count())
	}
}

// slowNotifier holds every Send until release is closed and records the
// state of the delivery context when it returns
type slowNotifier struct {
	started chan struct{}
	release chan struct{}

	mu      sync.Mutex
	ctxErrs []error
}

func newSlowNotifier() *slowNotifier {
	return &slowNotifier{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (n *slowNotifier) Configured() bool { return true }

func (n *slowNotifier) Send(ctx context.Context, msg notify.Message) error {
	n.started <- struct{}{}
	select {
	case <-n.release:
	case <-ctx.Done():
	}
	n.mu.Lock()
	n.ctxErrs = append(n.ctxErrs, ctx.Err())
	n.mu.Unlock()
	return nil
}

func TestNotificationService_StopWaitsForDeliveries(t *testing.T) {
	notifier := newSlowNotifier()
	svc, _ := newTestServices(service.Dependencies{Notifier: notifier})

	go svc.Notifications.StartDispatcher(context.Background())

	svc.Notifications.Publish(notify.Message{Title: "first"})
	select {
	case <-notifier.started:
	case <-time.After(2 * time.Second):
		t.Fatal("First event was never delivered")
	}
	for i := 0; i < 3; i++ {
		svc.Notifications.Publish(notify.Message{Title: "queued"})
	}

	stopped := make(chan struct{})
	go func() {
		svc.Notifications.StopDispatcher()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("StopDispatcher returned while a delivery was in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(notifier.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("StopDispatcher did not return after deliveries finished")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.ctxErrs) != 4 {
		t.Fatalf("Expected 4 deliveries, got %d", len(notifier.ctxErrs))
	}
	for i, err := range notifier.ctxErrs {
		if err != nil {
			t.Errorf("Delivery %d saw a finished context: %v", i, err)
		}
	}
}

func TestNotificationService_StopBeforeStart(t *testing.T) {
	svc, _ := newTestServices(service.Dependencies{Notifier: mocks.NewMockNotifier(true)})

	svc.Notifications.StopDispatcher()

	returned := make(chan struct{})
	go func() {
		svc.Notifications.StartDispatcher(context.Background())
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("StartDispatcher should not run after StopDispatcher")
	}
	svc.Notifications.StopDispatcher()
}

func TestStatsService_Dashboard(t *testing.T) {
	svc, repos := newTestServices(service.Dependencies{DB: &mocks.MockHealthChecker{}})
	ctx := context.Background()
	trainersOf(repos).Instructors["t1"] = &models.Instructor{ID: "t1"}
	trainersOf(repos).Instructors["t2"] = &models.Instructor{ID: "t2"}
	repos.TrainingRequest.Create(ctx, &models.TrainingRequest{ID: "r1", Status: models.RequestStatusPending})
	repos.TrainingRequest.Create(ctx, &models.TrainingRequest{ID: "r2", Status: models.RequestStatusAssigned})
	repos.Course.Create(ctx, &models.Course{ID: "c1"})

	stats, err := svc.Stats.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if stats.Trainers != 2 || stats.PendingTrainings != 1 || stats.Courses != 1 || stats.Staff != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	trainersOf(repos).Err = errors.New("db down")
	if _, err := svc.Stats.Dashboard(ctx); err == nil {
		t.Error("Expected error when a count fails")
	}
}

func TestStatsService_Health(t *testing.T) {
	svc, _ := newTestServices(service.Dependencies{DB: &mocks.MockHealthChecker{}})
	if err := svc.Stats.Health(context.Background()); err != nil {
		t.Errorf("Health failed: %v", err)
	}

	svc, _ = newTestServices(service.Dependencies{DB: &mocks.MockHealthChecker{Err: errors.New("refused")}})
	expectKind(t, svc.Stats.Health(context.Background()), service.ErrUnavailable)

	svc, _ = newTestServices(service.Dependencies{})
	expectKind(t, svc.Stats.Health(context.Background()), service.ErrUnavailable)
}

// staleTrainers misses rows inserted after the pre-check, the way a
// concurrent create would
type staleTrainers struct {
	*mocks.MockInstructorRepository
}

func (staleTrainers) ExternalIDExists(ctx context.Context, externalID string) (bool, error) {
	return false, nil
}

type staleTopics struct {
	*mocks.MockTopicRepository
}

func (staleTopics) NameExists(ctx context.Context, name string) (bool, error) {
	return false, nil
}

func TestCreate_DuplicateAtInsertIsValidationError(t *testing.T) {
	repos := mocks.NewRepositories()
	trainers := trainersOf(repos)
	trainers.Instructors["t1"] = &models.Instructor{ID: "t1", Kind: models.KindTrainer, ExternalID: "VA-100", Name: "Tom"}
	topics := repos.Topic.(*mocks.MockTopicRepository)
	topics.Topics["top1"] = &models.TrainingTopic{ID: "top1", Name: "Engine Failure"}

	repos.Trainers = staleTrainers{trainers}
	repos.Topic = staleTopics{topics}
	svc := service.NewServices(repos, service.Dependencies{
		Notifier: mocks.NewMockNotifier(false),
		Admin:    auth.NewAdminCredential("", ""),
	}, &config.Config{}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Instructors.Create(ctx, models.KindTrainer, &models.CreateInstructorRequest{ExternalID: "VA-100", Name: "Tim"})
	expectKind(t, err, service.ErrValidation)

	_, err = svc.Catalog.CreateTopic(ctx, &models.CreateTopicRequest{Name: "ENGINE FAILURE"})
	expectKind(t, err, service.ErrValidation)

	if len(trainers.Instructors) != 1 || len(topics.Topics) != 1 {
		t.Errorf("Expected no new rows, got %d trainers and %d topics", len(trainers.Instructors), len(topics.Topics))
	}
}
