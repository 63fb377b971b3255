package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/pkg/idgen"
)

// assignmentService is the concrete implementation of AssignmentService
type assignmentService struct {
	repo repository.TrainingAssignmentRepository
	log  zerolog.Logger
}

func newAssignmentService(repo repository.TrainingAssignmentRepository, log zerolog.Logger) *assignmentService {
	return &assignmentService{
		repo: repo,
		log:  log.With().Str("service", "assignment").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context) ([]*models.TrainingAssignment, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list training assignments: %w", err)
	}
	return assignments, nil
}

func (s *assignmentService) Get(ctx context.Context, id string) (*models.TrainingAssignment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get training assignment: %w", err)
	}
	if a == nil {
		return nil, notFoundError("Training assignment not found")
	}
	return a, nil
}

func (s *assignmentService) Create(ctx context.Context, req *models.CreateAssignmentRequest) (*models.TrainingAssignment, error) {
	now := time.Now().UTC()
	a := &models.TrainingAssignment{
		ID:              idgen.Next(),
		PilotID:         req.PilotID,
		PilotName:       req.PilotName,
		TopicID:         req.TopicID,
		TopicName:       req.TopicName,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		Status:          models.AssignmentStatusScheduled,
		AssignedTrainer: req.AssignedTrainer,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create training assignment: %w", err)
	}
	s.log.Info().Str("assignment_id", a.ID).Str("pilot_id", a.PilotID).Msg("Training assignment created")
	return a, nil
}

// Update merges fields; completing an assignment stamps completedAt
func (s *assignmentService) Update(ctx context.Context, id string, req *models.UpdateAssignmentRequest) (*models.TrainingAssignment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.ScheduledDate != nil {
		a.ScheduledDate = *req.ScheduledDate
	}
	if req.ScheduledTime != nil {
		a.ScheduledTime = *req.ScheduledTime
	}
	if req.AssignedTrainer != nil {
		a.AssignedTrainer = *req.AssignedTrainer
	}
	if req.Rating != nil {
		rating := *req.Rating
		a.Rating = &rating
	}
	if req.Comments != nil {
		a.Comments = *req.Comments
	}
	if req.Status != nil && *req.Status != a.Status {
		a.Status = *req.Status
		if a.Status == models.AssignmentStatusCompleted {
			a.CompletedAt = &now
		} else {
			a.CompletedAt = nil
		}
	}
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Training assignment not found")
		}
		return nil, fmt.Errorf("failed to update training assignment: %w", err)
	}
	return a, nil
}

func (s *assignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Training assignment not found")
		}
		return fmt.Errorf("failed to delete training assignment: %w", err)
	}
	return nil
}
