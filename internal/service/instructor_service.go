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

// instructorService is the concrete implementation of InstructorService
type instructorService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

func newInstructorService(repos *repository.Repositories, log zerolog.Logger) *instructorService {
	return &instructorService{
		repos: repos,
		log:   log.With().Str("service", "instructor").Logger(),
	}
}

// label is used in client-facing messages
func label(kind models.InstructorKind) string {
	if kind == models.KindExaminer {
		return "Examiner"
	}
	return "Trainer"
}

func (s *instructorService) List(ctx context.Context, kind models.InstructorKind) ([]*models.Instructor, error) {
	instructors, err := s.repos.Instructors(kind).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", kind, err)
	}
	return instructors, nil
}

func (s *instructorService) Get(ctx context.Context, kind models.InstructorKind, id string) (*models.Instructor, error) {
	instructor, err := s.repos.Instructors(kind).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	if instructor == nil {
		return nil, notFoundError("%s not found", label(kind))
	}
	return instructor, nil
}

func (s *instructorService) Create(ctx context.Context, kind models.InstructorKind, req *models.CreateInstructorRequest) (*models.Instructor, error) {
	repo := s.repos.Instructors(kind)
	externalID := strings.TrimSpace(req.ExternalID)

	exists, err := repo.ExternalIDExists(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s externalId: %w", kind, err)
	}
	if exists {
		return nil, validationError("A %s with this externalId already exists", strings.ToLower(label(kind)))
	}

	maxAssignments := models.DefaultMaxAssignments
	if req.MaxAssignments != nil {
		maxAssignments = *req.MaxAssignments
	}

	now := time.Now().UTC()
	instructor := &models.Instructor{
		ID:             idgen.Next(),
		Kind:           kind,
		ExternalID:     externalID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Active:         true,
		MaxAssignments: maxAssignments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := repo.Create(ctx, instructor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("A %s with this externalId already exists", strings.ToLower(label(kind)))
		}
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}

	s.log.Info().Str("kind", string(kind)).Str("id", instructor.ID).Msg("Instructor created")
	return instructor, nil
}

// Update merges the given fields. currentAssignments is owned by the
// workflow and cannot be set here.
func (s *instructorService) Update(ctx context.Context, kind models.InstructorKind, id string, req *models.UpdateInstructorRequest) (*models.Instructor, error) {
	instructor, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		instructor.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		instructor.Email = strings.TrimSpace(*req.Email)
	}
	if req.Active != nil {
		instructor.Active = *req.Active
	}
	if req.Busy != nil {
		instructor.Busy = *req.Busy
	}
	if req.MaxAssignments != nil {
		instructor.MaxAssignments = *req.MaxAssignments
	}
	instructor.UpdatedAt = time.Now().UTC()

	if err := s.repos.Instructors(kind).Update(ctx, instructor); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("%s not found", label(kind))
		}
		return nil, fmt.Errorf("failed to update %s: %w", kind, err)
	}
	return instructor, nil
}

func (s *instructorService) Delete(ctx context.Context, kind models.InstructorKind, id string) error {
	if err := s.repos.Instructors(kind).Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("%s not found", label(kind))
		}
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	s.log.Info().Str("kind", string(kind)).Str("id", id).Msg("Instructor deleted")
	return nil
}

// Recount re-derives a trainer's currentAssignments from the training
// requests that name it
func (s *instructorService) Recount(ctx context.Context, trainerID string) (*models.Instructor, error) {
	trainer, previous, err := s.repos.TrainingRequest.RecountTrainer(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrInstructorNotFound) {
			return nil, notFoundError("Trainer not found")
		}
		return nil, fmt.Errorf("failed to recount assignments: %w", err)
	}

	if previous != trainer.CurrentAssignments {
		s.log.Warn().
			Str("trainer_id", trainerID).
			Int("stored", previous).
			Int("derived", trainer.CurrentAssignments).
			Msg("Assignment counter drift corrected")
	}
	return trainer, nil
}
