package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.StaffRepository              = (*MockStaffRepository)(nil)
	_ repository.InstructorRepository         = (*MockInstructorRepository)(nil)
	_ repository.TrainingRequestRepository    = (*MockTrainingRequestRepository)(nil)
	_ repository.TrainingAssignmentRepository = (*MockAssignmentRepository)(nil)
	_ repository.InactivationRepository       = (*MockInactivationRepository)(nil)
	_ repository.CourseRepository             = (*MockCourseRepository)(nil)
	_ repository.StudentRepository            = (*MockStudentRepository)(nil)
	_ repository.TopicRepository              = (*MockTopicRepository)(nil)
	_ repository.QuizRepository               = (*MockQuizRepository)(nil)
	_ repository.QuizAttemptRepository        = (*MockQuizAttemptRepository)(nil)
	_ repository.TestTokenRepository          = (*MockTestTokenRepository)(nil)
	_ repository.TestSubmissionRepository     = (*MockSubmissionRepository)(nil)
)

// NewRepositories wires a full set of mock repositories. The training
// request mock shares the trainers mock so transfers can adjust counters.
func NewRepositories() *repository.Repositories {
	trainers := NewMockInstructorRepository(models.KindTrainer)
	return &repository.Repositories{
		Staff:           NewMockStaffRepository(),
		Trainers:        trainers,
		Examiners:       NewMockInstructorRepository(models.KindExaminer),
		TrainingRequest: NewMockTrainingRequestRepository(trainers),
		Assignment:      NewMockAssignmentRepository(),
		Inactivation:    NewMockInactivationRepository(),
		Course:          NewMockCourseRepository(),
		Student:         NewMockStudentRepository(),
		Topic:           NewMockTopicRepository(),
		Quiz:            NewMockQuizRepository(),
		QuizAttempt:     NewMockQuizAttemptRepository(),
		TestToken:       NewMockTestTokenRepository(),
		Submission:      NewMockSubmissionRepository(),
	}
}

// newestFirst orders records the way the SQL repositories do
func newestFirst(ids []string, created func(string) time.Time) {
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := created(ids[i]), created(ids[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return ids[i] > ids[j]
	})
}

// MockStaffRepository is a mock implementation of StaffRepository
type MockStaffRepository struct {
	mu    sync.Mutex
	Staff map[string]*models.StaffMember
	Err   error
}

func NewMockStaffRepository() *MockStaffRepository {
	return &MockStaffRepository{Staff: make(map[string]*models.StaffMember)}
}

func (m *MockStaffRepository) List(ctx context.Context) ([]*models.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Staff))
	for id := range m.Staff {
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Staff[id].CreatedAt })
	out := make([]*models.StaffMember, 0, len(ids))
	for _, id := range ids {
		s := *m.Staff[id]
		out = append(out, &s)
	}
	return out, nil
}

func (m *MockStaffRepository) Create(ctx context.Context, s *models.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Staff {
		if existing.CredentialHash == s.CredentialHash {
			return repository.ErrDuplicate
		}
	}
	stored := *s
	m.Staff[s.ID] = &stored
	return nil
}

func (m *MockStaffRepository) Update(ctx context.Context, s *models.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Staff[s.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *s
	m.Staff[s.ID] = &stored
	return nil
}

func (m *MockStaffRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Staff[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Staff, id)
	return nil
}

func (m *MockStaffRepository) GetByID(ctx context.Context, id string) (*models.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Staff[id]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (m *MockStaffRepository) GetByCredentialHash(ctx context.Context, hash string) (*models.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, s := range m.Staff {
		if s.CredentialHash == hash {
			out := *s
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MockStaffRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Staff), m.Err
}

// MockInstructorRepository is a mock implementation of InstructorRepository
type MockInstructorRepository struct {
	mu          sync.Mutex
	Kind        models.InstructorKind
	Instructors map[string]*models.Instructor
	Err         error
}

func NewMockInstructorRepository(kind models.InstructorKind) *MockInstructorRepository {
	return &MockInstructorRepository{
		Kind:        kind,
		Instructors: make(map[string]*models.Instructor),
	}
}

func (m *MockInstructorRepository) List(ctx context.Context) ([]*models.Instructor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Instructors))
	for id := range m.Instructors {
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Instructors[id].CreatedAt })
	out := make([]*models.Instructor, 0, len(ids))
	for _, id := range ids {
		i := *m.Instructors[id]
		out = append(out, &i)
	}
	return out, nil
}

func (m *MockInstructorRepository) Create(ctx context.Context, i *models.Instructor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Instructors {
		if existing.ExternalID == i.ExternalID {
			return repository.ErrDuplicate
		}
	}
	stored := *i
	stored.Kind = m.Kind
	m.Instructors[i.ID] = &stored
	return nil
}

// Update leaves currentAssignments untouched, like the SQL repository
func (m *MockInstructorRepository) Update(ctx context.Context, i *models.Instructor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.Instructors[i.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored := *i
	stored.Kind = m.Kind
	stored.CurrentAssignments = existing.CurrentAssignments
	m.Instructors[i.ID] = &stored
	return nil
}

func (m *MockInstructorRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Instructors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Instructors, id)
	return nil
}

func (m *MockInstructorRepository) GetByID(ctx context.Context, id string) (*models.Instructor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	i, ok := m.Instructors[id]
	if !ok {
		return nil, nil
	}
	out := *i
	return &out, nil
}

func (m *MockInstructorRepository) ExternalIDExists(ctx context.Context, externalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.Instructors {
		if i.ExternalID == externalID {
			return true, nil
		}
	}
	return false, m.Err
}

func (m *MockInstructorRepository) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	i, ok := m.Instructors[id]
	if !ok {
		return repository.ErrNotFound
	}
	i.Active = active
	i.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockInstructorRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Instructors), m.Err
}

// claim increments a trainer's counter, checking capacity when asked
func (m *MockInstructorRepository) claim(id string, requireCapacity bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.Instructors[id]
	if !ok {
		return repository.ErrInstructorNotFound
	}
	if requireCapacity && !i.AvailableForPickup() {
		return repository.ErrInstructorUnavailable
	}
	i.CurrentAssignments++
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// setCount overwrites a trainer's counter and returns the previous value
func (m *MockInstructorRepository) setCount(id string, count int) (*models.Instructor, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.Instructors[id]
	if !ok {
		return nil, 0, repository.ErrInstructorNotFound
	}
	previous := i.CurrentAssignments
	i.CurrentAssignments = count
	i.UpdatedAt = time.Now().UTC()
	out := *i
	return &out, previous, nil
}

// release decrements a trainer's counter without going below zero
func (m *MockInstructorRepository) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.Instructors[id]
	if !ok {
		return
	}
	if i.CurrentAssignments > 0 {
		i.CurrentAssignments--
	}
	i.UpdatedAt = time.Now().UTC()
}

// MockTrainingRequestRepository is a mock implementation of TrainingRequestRepository
type MockTrainingRequestRepository struct {
	mu       sync.Mutex
	Requests map[string]*models.TrainingRequest
	Trainers *MockInstructorRepository
	Err      error
	// TransferCalls counts Transfer invocations, successful or not
	TransferCalls int
}

func NewMockTrainingRequestRepository(trainers *MockInstructorRepository) *MockTrainingRequestRepository {
	return &MockTrainingRequestRepository{
		Requests: make(map[string]*models.TrainingRequest),
		Trainers: trainers,
	}
}

func (m *MockTrainingRequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.TrainingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Requests))
	for id, tr := range m.Requests {
		if filter.Status != "" && tr.Status != filter.Status {
			continue
		}
		if filter.TrainerID != "" && tr.AssignedTrainerID != filter.TrainerID {
			continue
		}
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Requests[id].CreatedAt })
	out := make([]*models.TrainingRequest, 0, len(ids))
	for _, id := range ids {
		tr := *m.Requests[id]
		out = append(out, &tr)
	}
	return out, nil
}

func (m *MockTrainingRequestRepository) Create(ctx context.Context, tr *models.TrainingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *tr
	m.Requests[tr.ID] = &stored
	return nil
}

func (m *MockTrainingRequestRepository) Update(ctx context.Context, tr *models.TrainingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored, ok := m.Requests[tr.ID]
	if !ok || stored.Version != tr.Version {
		return repository.ErrVersionConflict
	}
	stored.RequestedDate = tr.RequestedDate
	stored.RequestedTime = tr.RequestedTime
	stored.Notes = tr.Notes
	stored.Status = tr.Status
	stored.UpdatedAt = tr.UpdatedAt
	stored.Version++
	tr.Version++
	return nil
}

func (m *MockTrainingRequestRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	tr, ok := m.Requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(m.Requests, id)
	if tr.AssignedTrainerID != "" && m.Trainers != nil {
		m.Trainers.release(tr.AssignedTrainerID)
	}
	return nil
}

func (m *MockTrainingRequestRepository) GetByID(ctx context.Context, id string) (*models.TrainingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	tr, ok := m.Requests[id]
	if !ok {
		return nil, nil
	}
	out := *tr
	return &out, nil
}

// Transfer holds the repository lock for the whole move so concurrent
// transfers of the same request serialize like the SQL row lock.
func (m *MockTrainingRequestRepository) Transfer(ctx context.Context, p repository.TransferParams) (*models.TrainingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TransferCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	tr, ok := m.Requests[p.RequestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if tr.Version != p.ExpectedVersion {
		return nil, repository.ErrVersionConflict
	}

	if tr.AssignedTrainerID != p.ToTrainerID {
		if err := m.Trainers.claim(p.ToTrainerID, p.RequireCapacity); err != nil {
			return nil, err
		}
		if tr.AssignedTrainerID != "" {
			m.Trainers.release(tr.AssignedTrainerID)
		}
	}

	now := time.Now().UTC()
	tr.AssignedTrainerID = p.ToTrainerID
	tr.AssignedTrainerName = p.ToTrainerName
	if tr.Status != models.RequestStatusInProgress {
		tr.Status = models.RequestStatusAssigned
	}
	tr.AssignedAt = &now
	tr.UpdatedAt = now
	tr.Version++

	out := *tr
	return &out, nil
}

// RecountTrainer counts and stores under the repository lock, so no
// transfer can interleave
func (m *MockTrainingRequestRepository) RecountTrainer(ctx context.Context, trainerID string) (*models.Instructor, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	count := 0
	for _, tr := range m.Requests {
		if tr.AssignedTrainerID == trainerID {
			count++
		}
	}
	return m.Trainers.setCount(trainerID, count)
}

func (m *MockTrainingRequestRepository) CountByStatus(ctx context.Context, status models.RequestStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, tr := range m.Requests {
		if tr.Status == status {
			count++
		}
	}
	return count, m.Err
}

// MockAssignmentRepository is a mock implementation of TrainingAssignmentRepository
type MockAssignmentRepository struct {
	mu          sync.Mutex
	Assignments map[string]*models.TrainingAssignment
	Err         error
}

func NewMockAssignmentRepository() *MockAssignmentRepository {
	return &MockAssignmentRepository{Assignments: make(map[string]*models.TrainingAssignment)}
}

func (m *MockAssignmentRepository) List(ctx context.Context) ([]*models.TrainingAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Assignments))
	for id := range m.Assignments {
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Assignments[id].CreatedAt })
	out := make([]*models.TrainingAssignment, 0, len(ids))
	for _, id := range ids {
		a := *m.Assignments[id]
		out = append(out, &a)
	}
	return out, nil
}

func (m *MockAssignmentRepository) Create(ctx context.Context, a *models.TrainingAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *a
	m.Assignments[a.ID] = &stored
	return nil
}

func (m *MockAssignmentRepository) Update(ctx context.Context, a *models.TrainingAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Assignments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *a
	m.Assignments[a.ID] = &stored
	return nil
}

func (m *MockAssignmentRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Assignments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Assignments, id)
	return nil
}

func (m *MockAssignmentRepository) GetByID(ctx context.Context, id string) (*models.TrainingAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.Assignments[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

// MockInactivationRepository is a mock implementation of InactivationRepository
type MockInactivationRepository struct {
	mu       sync.Mutex
	Requests map[string]*models.InactivationRequest
	Err      error
}

func NewMockInactivationRepository() *MockInactivationRepository {
	return &MockInactivationRepository{Requests: make(map[string]*models.InactivationRequest)}
}

func (m *MockInactivationRepository) List(ctx context.Context, status models.InactivationStatus) ([]*models.InactivationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Requests))
	for id, ir := range m.Requests {
		if status != "" && ir.Status != status {
			continue
		}
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Requests[id].CreatedAt })
	out := make([]*models.InactivationRequest, 0, len(ids))
	for _, id := range ids {
		ir := *m.Requests[id]
		out = append(out, &ir)
	}
	return out, nil
}

func (m *MockInactivationRepository) Create(ctx context.Context, ir *models.InactivationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *ir
	m.Requests[ir.ID] = &stored
	return nil
}

func (m *MockInactivationRepository) Review(ctx context.Context, ir *models.InactivationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored, ok := m.Requests[ir.ID]
	if !ok || stored.Status != models.InactivationPending {
		return repository.ErrNotFound
	}
	updated := *ir
	m.Requests[ir.ID] = &updated
	return nil
}

func (m *MockInactivationRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Requests[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Requests, id)
	return nil
}

func (m *MockInactivationRepository) GetByID(ctx context.Context, id string) (*models.InactivationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ir, ok := m.Requests[id]
	if !ok {
		return nil, nil
	}
	out := *ir
	return &out, nil
}

// MockCourseRepository is a mock implementation of CourseRepository
type MockCourseRepository struct {
	mu      sync.Mutex
	Courses map[string]*models.Course
	Err     error
}

func NewMockCourseRepository() *MockCourseRepository {
	return &MockCourseRepository{Courses: make(map[string]*models.Course)}
}

func (m *MockCourseRepository) List(ctx context.Context) ([]*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Courses))
	for id := range m.Courses {
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Courses[id].CreatedAt })
	out := make([]*models.Course, 0, len(ids))
	for _, id := range ids {
		c := *m.Courses[id]
		out = append(out, &c)
	}
	return out, nil
}

func (m *MockCourseRepository) Create(ctx context.Context, c *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *c
	m.Courses[c.ID] = &stored
	return nil
}

func (m *MockCourseRepository) Update(ctx context.Context, c *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.Courses[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored := *c
	stored.Students = existing.Students
	m.Courses[c.ID] = &stored
	return nil
}

func (m *MockCourseRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Courses, id)
	return nil
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.Courses[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (m *MockCourseRepository) AdjustStudents(ctx context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c, ok := m.Courses[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Students += delta
	if c.Students < 0 {
		c.Students = 0
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockCourseRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Courses), m.Err
}

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mu       sync.Mutex
	Students map[string]*models.Student
	Err      error
}

func NewMockStudentRepository() *MockStudentRepository {
	return &MockStudentRepository{Students: make(map[string]*models.Student)}
}

func (m *MockStudentRepository) List(ctx context.Context, courseID string) ([]*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Students))
	for id, s := range m.Students {
		if courseID != "" && s.CourseID != courseID {
			continue
		}
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Students[id].CreatedAt })
	out := make([]*models.Student, 0, len(ids))
	for _, id := range ids {
		s := *m.Students[id]
		out = append(out, &s)
	}
	return out, nil
}

func (m *MockStudentRepository) Create(ctx context.Context, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Students {
		if existing.ExternalID == s.ExternalID {
			return repository.ErrDuplicate
		}
	}
	stored := *s
	m.Students[s.ID] = &stored
	return nil
}

func (m *MockStudentRepository) Update(ctx context.Context, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Students[s.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *s
	m.Students[s.ID] = &stored
	return nil
}

func (m *MockStudentRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Students[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Students, id)
	return nil
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Students[id]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (m *MockStudentRepository) ExternalIDExists(ctx context.Context, externalID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Students {
		if s.ExternalID == externalID {
			return true, nil
		}
	}
	return false, m.Err
}

func (m *MockStudentRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Students), m.Err
}

// MockTopicRepository is a mock implementation of TopicRepository
type MockTopicRepository struct {
	mu     sync.Mutex
	Topics map[string]*models.TrainingTopic
	Err    error
}

func NewMockTopicRepository() *MockTopicRepository {
	return &MockTopicRepository{Topics: make(map[string]*models.TrainingTopic)}
}

func (m *MockTopicRepository) List(ctx context.Context) ([]*models.TrainingTopic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Topics))
	for id := range m.Topics {
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Topics[id].CreatedAt })
	out := make([]*models.TrainingTopic, 0, len(ids))
	for _, id := range ids {
		t := *m.Topics[id]
		out = append(out, &t)
	}
	return out, nil
}

func (m *MockTopicRepository) Create(ctx context.Context, t *models.TrainingTopic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.nameTaken(t.Name, "") {
		return repository.ErrDuplicate
	}
	stored := *t
	m.Topics[t.ID] = &stored
	return nil
}

func (m *MockTopicRepository) Update(ctx context.Context, t *models.TrainingTopic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Topics[t.ID]; !ok {
		return repository.ErrNotFound
	}
	if m.nameTaken(t.Name, t.ID) {
		return repository.ErrDuplicate
	}
	stored := *t
	m.Topics[t.ID] = &stored
	return nil
}

// nameTaken matches the case-insensitive name check of NameExists. Callers
// hold m.mu.
func (m *MockTopicRepository) nameTaken(name, exceptID string) bool {
	for id, t := range m.Topics {
		if id != exceptID && strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

func (m *MockTopicRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Topics[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Topics, id)
	return nil
}

func (m *MockTopicRepository) GetByID(ctx context.Context, id string) (*models.TrainingTopic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.Topics[id]
	if !ok {
		return nil, nil
	}
	out := *t
	return &out, nil
}

func (m *MockTopicRepository) NameExists(ctx context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Topics {
		if strings.EqualFold(t.Name, name) {
			return true, nil
		}
	}
	return false, m.Err
}

// MockQuizRepository is a mock implementation of QuizRepository
type MockQuizRepository struct {
	mu      sync.Mutex
	Quizzes map[string]*models.Quiz
	Err     error
}

func NewMockQuizRepository() *MockQuizRepository {
	return &MockQuizRepository{Quizzes: make(map[string]*models.Quiz)}
}

func (m *MockQuizRepository) List(ctx context.Context) ([]*models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Quizzes))
	for id := range m.Quizzes {
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Quizzes[id].CreatedAt })
	out := make([]*models.Quiz, 0, len(ids))
	for _, id := range ids {
		q := *m.Quizzes[id]
		out = append(out, &q)
	}
	return out, nil
}

func (m *MockQuizRepository) Create(ctx context.Context, q *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *q
	m.Quizzes[q.ID] = &stored
	return nil
}

func (m *MockQuizRepository) Update(ctx context.Context, q *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Quizzes[q.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *q
	m.Quizzes[q.ID] = &stored
	return nil
}

func (m *MockQuizRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Quizzes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Quizzes, id)
	return nil
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	q, ok := m.Quizzes[id]
	if !ok {
		return nil, nil
	}
	out := *q
	return &out, nil
}

func (m *MockQuizRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Quizzes), m.Err
}

// MockQuizAttemptRepository is a mock implementation of QuizAttemptRepository
type MockQuizAttemptRepository struct {
	mu       sync.Mutex
	Attempts map[string]*models.QuizAttempt
	Err      error
}

func NewMockQuizAttemptRepository() *MockQuizAttemptRepository {
	return &MockQuizAttemptRepository{Attempts: make(map[string]*models.QuizAttempt)}
}

func (m *MockQuizAttemptRepository) List(ctx context.Context, filter models.AttemptFilter) ([]*models.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Attempts))
	for id, a := range m.Attempts {
		if filter.QuizID != "" && a.QuizID != filter.QuizID {
			continue
		}
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Attempts[id].StartedAt })
	out := make([]*models.QuizAttempt, 0, len(ids))
	for _, id := range ids {
		a := *m.Attempts[id]
		out = append(out, &a)
	}
	return out, nil
}

func (m *MockQuizAttemptRepository) Create(ctx context.Context, a *models.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *a
	m.Attempts[a.ID] = &stored
	return nil
}

func (m *MockQuizAttemptRepository) Submit(ctx context.Context, a *models.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored, ok := m.Attempts[a.ID]
	if !ok || stored.Status != models.AttemptInProgress {
		return repository.ErrAlreadySubmitted
	}
	updated := *a
	updated.Status = models.AttemptSubmitted
	m.Attempts[a.ID] = &updated
	return nil
}

func (m *MockQuizAttemptRepository) Update(ctx context.Context, a *models.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored, ok := m.Attempts[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.UserName = a.UserName
	stored.UpdatedAt = a.UpdatedAt
	return nil
}

func (m *MockQuizAttemptRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Attempts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Attempts, id)
	return nil
}

func (m *MockQuizAttemptRepository) GetByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.Attempts[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

// MockTestTokenRepository is a mock implementation of TestTokenRepository
type MockTestTokenRepository struct {
	mu     sync.Mutex
	Tokens map[string]*models.TestToken
	Err    error
}

func NewMockTestTokenRepository() *MockTestTokenRepository {
	return &MockTestTokenRepository{Tokens: make(map[string]*models.TestToken)}
}

func (m *MockTestTokenRepository) List(ctx context.Context) ([]*models.TestToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Tokens))
	for id := range m.Tokens {
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Tokens[id].CreatedAt })
	out := make([]*models.TestToken, 0, len(ids))
	for _, id := range ids {
		t := *m.Tokens[id]
		out = append(out, &t)
	}
	return out, nil
}

func (m *MockTestTokenRepository) Create(ctx context.Context, t *models.TestToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Tokens {
		if existing.Token == t.Token {
			return repository.ErrDuplicate
		}
	}
	stored := *t
	m.Tokens[t.ID] = &stored
	return nil
}

func (m *MockTestTokenRepository) Update(ctx context.Context, t *models.TestToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored, ok := m.Tokens[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.TestName = t.TestName
	stored.IssuedTo = t.IssuedTo
	stored.ExpiresAt = t.ExpiresAt
	stored.UpdatedAt = t.UpdatedAt
	return nil
}

func (m *MockTestTokenRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Tokens[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Tokens, id)
	return nil
}

func (m *MockTestTokenRepository) GetByID(ctx context.Context, id string) (*models.TestToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	t, ok := m.Tokens[id]
	if !ok {
		return nil, nil
	}
	out := *t
	return &out, nil
}

func (m *MockTestTokenRepository) GetActiveByToken(ctx context.Context, token string) (*models.TestToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, t := range m.Tokens {
		if t.Token == token && t.Status == models.TokenActive {
			out := *t
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MockTestTokenRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Tokens {
		if t.Token == token {
			return true, nil
		}
	}
	return false, m.Err
}

func (m *MockTestTokenRepository) Expire(ctx context.Context, id string, usedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	t, ok := m.Tokens[id]
	if !ok || t.Status != models.TokenActive {
		return repository.ErrTokenNotActive
	}
	t.Status = models.TokenExpired
	t.UpdatedAt = time.Now().UTC()
	if usedAt != nil {
		used := *usedAt
		t.UsedAt = &used
	}
	return nil
}

// MockSubmissionRepository is a mock implementation of TestSubmissionRepository
type MockSubmissionRepository struct {
	mu          sync.Mutex
	Submissions map[string]*models.TestSubmission
	Err         error
}

func NewMockSubmissionRepository() *MockSubmissionRepository {
	return &MockSubmissionRepository{Submissions: make(map[string]*models.TestSubmission)}
}

func (m *MockSubmissionRepository) List(ctx context.Context) ([]*models.TestSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ids := make([]string, 0, len(m.Submissions))
	for id := range m.Submissions {
		ids = append(ids, id)
	}
	newestFirst(ids, func(id string) time.Time { return m.Submissions[id].SubmittedAt })
	out := make([]*models.TestSubmission, 0, len(ids))
	for _, id := range ids {
		s := *m.Submissions[id]
		out = append(out, &s)
	}
	return out, nil
}

func (m *MockSubmissionRepository) Create(ctx context.Context, s *models.TestSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored := *s
	m.Submissions[s.ID] = &stored
	return nil
}

func (m *MockSubmissionRepository) Update(ctx context.Context, s *models.TestSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	stored, ok := m.Submissions[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.UserName = s.UserName
	stored.Score = s.Score
	stored.Notes = s.Notes
	stored.UpdatedAt = s.UpdatedAt
	return nil
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Submissions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Submissions, id)
	return nil
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id string) (*models.TestSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Submissions[id]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}
