package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/pkg/idgen"
)

// catalogService is the concrete implementation of CatalogService
type catalogService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

func newCatalogService(repos *repository.Repositories, log zerolog.Logger) *catalogService {
	return &catalogService{
		repos: repos,
		log:   log.With().Str("service", "catalog").Logger(),
	}
}

// Courses

func (s *catalogService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	courses, err := s.repos.Course.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *catalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	c, err := s.repos.Course.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if c == nil {
		return nil, notFoundError("Course not found")
	}
	return c, nil
}

func (s *catalogService) CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	now := time.Now().UTC()
	c := &models.Course{
		ID:          idgen.Next(),
		Title:       strings.TrimSpace(req.Title),
		Instructor:  strings.TrimSpace(req.Instructor),
		Description: req.Description,
		Duration:    req.Duration,
		Level:       req.Level,
		Students:    0,
		Status:      "active",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Course.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	s.log.Info().Str("course_id", c.ID).Msg("Course created")
	return c, nil
}

func (s *catalogService) UpdateCourse(ctx context.Context, id string, req *models.UpdateCourseRequest) (*models.Course, error) {
	c, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Instructor != nil {
		c.Instructor = strings.TrimSpace(*req.Instructor)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Duration != nil {
		c.Duration = *req.Duration
	}
	if req.Level != nil {
		c.Level = *req.Level
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	c.UpdatedAt = time.Now().UTC()

	if err := s.repos.Course.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Course not found")
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return c, nil
}

func (s *catalogService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.repos.Course.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Course not found")
		}
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

// Students

func (s *catalogService) ListStudents(ctx context.Context, courseID string) ([]*models.Student, error) {
	students, err := s.repos.Student.List(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *catalogService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	st, err := s.repos.Student.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if st == nil {
		return nil, notFoundError("Student not found")
	}
	return st, nil
}

// CreateStudent enrols the student and bumps the course's student count
func (s *catalogService) CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	externalID := strings.TrimSpace(req.ExternalID)
	exists, err := s.repos.Student.ExternalIDExists(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to check student externalId: %w", err)
	}
	if exists {
		return nil, validationError("A student with this externalId already exists")
	}

	if req.CourseID != "" {
		if _, err := s.GetCourse(ctx, req.CourseID); err != nil {
			if KindOf(err) == ErrNotFound {
				return nil, validationError("Course %s does not exist", req.CourseID)
			}
			return nil, err
		}
	}

	now := time.Now().UTC()
	st := &models.Student{
		ID:         idgen.Next(),
		ExternalID: externalID,
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Rank:       req.Rank,
		CourseID:   req.CourseID,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repos.Student.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("A student with this externalId already exists")
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	if st.CourseID != "" {
		if err := s.repos.Course.AdjustStudents(ctx, st.CourseID, 1); err != nil {
			s.log.Error().Err(err).Str("course_id", st.CourseID).Msg("Failed to increment course student count")
		}
	}
	return st, nil
}

func (s *catalogService) UpdateStudent(ctx context.Context, id string, req *models.UpdateStudentRequest) (*models.Student, error) {
	st, err := s.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		st.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		st.Email = strings.TrimSpace(*req.Email)
	}
	if req.Rank != nil {
		st.Rank = *req.Rank
	}
	if req.Status != nil {
		st.Status = *req.Status
	}
	if req.Progress != nil {
		st.Progress = *req.Progress
	}
	st.UpdatedAt = time.Now().UTC()

	if err := s.repos.Student.Update(ctx, st); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Student not found")
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return st, nil
}

func (s *catalogService) DeleteStudent(ctx context.Context, id string) error {
	st, err := s.GetStudent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Student.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Student not found")
		}
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if st.CourseID != "" {
		err := s.repos.Course.AdjustStudents(ctx, st.CourseID, -1)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("course_id", st.CourseID).Msg("Failed to decrement course student count")
		}
	}
	return nil
}

// Training topics

func (s *catalogService) ListTopics(ctx context.Context) ([]*models.TrainingTopic, error) {
	topics, err := s.repos.Topic.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list training topics: %w", err)
	}
	return topics, nil
}

func (s *catalogService) GetTopic(ctx context.Context, id string) (*models.TrainingTopic, error) {
	t, err := s.repos.Topic.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get training topic: %w", err)
	}
	if t == nil {
		return nil, notFoundError("Training topic not found")
	}
	return t, nil
}

func (s *catalogService) CreateTopic(ctx context.Context, req *models.CreateTopicRequest) (*models.TrainingTopic, error) {
	name := strings.TrimSpace(req.Name)
	exists, err := s.repos.Topic.NameExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check training topic name: %w", err)
	}
	if exists {
		return nil, validationError("A training topic named %q already exists", name)
	}

	now := time.Now().UTC()
	t := &models.TrainingTopic{
		ID:              idgen.Next(),
		Name:            name,
		Description:     req.Description,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repos.Topic.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("A training topic named %q already exists", name)
		}
		return nil, fmt.Errorf("failed to create training topic: %w", err)
	}
	return t, nil
}

func (s *catalogService) UpdateTopic(ctx context.Context, id string, req *models.UpdateTopicRequest) (*models.TrainingTopic, error) {
	t, err := s.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, t.Name) {
			exists, err := s.repos.Topic.NameExists(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to check training topic name: %w", err)
			}
			if exists {
				return nil, validationError("A training topic named %q already exists", name)
			}
		}
		t.Name = name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.DurationMinutes != nil {
		t.DurationMinutes = *req.DurationMinutes
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repos.Topic.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Training topic not found")
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("A training topic named %q already exists", t.Name)
		}
		return nil, fmt.Errorf("failed to update training topic: %w", err)
	}
	return t, nil
}

func (s *catalogService) DeleteTopic(ctx context.Context, id string) error {
	if err := s.repos.Topic.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Training topic not found")
		}
		return fmt.Errorf("failed to delete training topic: %w", err)
	}
	return nil
}
