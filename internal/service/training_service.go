package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/notify"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/pkg/idgen"
)

const msgTrainerUnavailable = "Trainer is not available for pickup"

// trainingService is the concrete implementation of TrainingService
type trainingService struct {
	repos  *repository.Repositories
	events NotificationService
	log    zerolog.Logger
}

func newTrainingService(repos *repository.Repositories, events NotificationService, log zerolog.Logger) *trainingService {
	return &trainingService{
		repos:  repos,
		events: events,
		log:    log.With().Str("service", "training").Logger(),
	}
}

func (s *trainingService) List(ctx context.Context, filter models.RequestFilter) ([]*models.TrainingRequest, error) {
	if filter.Status != "" && !models.ValidRequestStatuses[filter.Status] {
		return nil, validationError("Invalid status filter: %s", filter.Status)
	}
	requests, err := s.repos.TrainingRequest.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list training requests: %w", err)
	}
	return requests, nil
}

func (s *trainingService) Get(ctx context.Context, id string) (*models.TrainingRequest, error) {
	tr, err := s.repos.TrainingRequest.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get training request: %w", err)
	}
	if tr == nil {
		return nil, notFoundError("Training request not found")
	}
	return tr, nil
}

// Create stores a pending request. When the topic is known its name is
// copied onto the request.
func (s *trainingService) Create(ctx context.Context, req *models.CreateTrainingRequest) (*models.TrainingRequest, error) {
	topicName := ""
	topic, err := s.repos.Topic.GetByID(ctx, req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up training topic: %w", err)
	}
	if topic != nil {
		topicName = topic.Name
	}

	now := time.Now().UTC()
	tr := &models.TrainingRequest{
		ID:            idgen.Next(),
		RequesterID:   strings.TrimSpace(req.RequesterID),
		RequesterName: strings.TrimSpace(req.RequesterName),
		TopicID:       req.TopicID,
		TopicName:     topicName,
		RequestedDate: req.RequestedDate,
		RequestedTime: req.RequestedTime,
		Notes:         req.Notes,
		Status:        models.RequestStatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repos.TrainingRequest.Create(ctx, tr); err != nil {
		return nil, fmt.Errorf("failed to create training request: %w", err)
	}

	s.log.Info().Str("request_id", tr.ID).Str("requester_id", tr.RequesterID).Msg("Training request created")
	s.events.Publish(notify.Message{
		Title: "New training request",
		Body:  fmt.Sprintf("%s requested training on %s", displayName(tr.RequesterName, tr.RequesterID), tr.RequestedDate),
		Fields: []notify.Field{
			{Name: "Topic", Value: displayName(tr.TopicName, tr.TopicID)},
		},
	})
	return tr, nil
}

// Update merges editable fields. Only in-progress, completed and cancelled
// can be set directly; closed requests are frozen.
func (s *trainingService) Update(ctx context.Context, id string, req *models.UpdateTrainingRequest) (*models.TrainingRequest, error) {
	tr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tr.Status.Closed() {
		return nil, validationError("Cannot modify a %s training request", tr.Status)
	}

	previousStatus := tr.Status
	if req.RequestedDate != nil {
		tr.RequestedDate = *req.RequestedDate
	}
	if req.RequestedTime != nil {
		tr.RequestedTime = *req.RequestedTime
	}
	if req.Notes != nil {
		tr.Notes = *req.Notes
	}
	if req.Status != nil {
		if *req.Status == models.RequestStatusInProgress && tr.AssignedTrainerID == "" {
			return nil, validationError("Training request must be assigned before it can start")
		}
		tr.Status = *req.Status
	}
	tr.UpdatedAt = time.Now().UTC()

	if err := s.repos.TrainingRequest.Update(ctx, tr); err != nil {
		return nil, s.mapWorkflowError(err)
	}

	if tr.Status != previousStatus {
		s.log.Info().Str("request_id", tr.ID).Str("status", string(tr.Status)).Msg("Training request status changed")
		s.events.Publish(notify.Message{
			Title: "Training request " + string(tr.Status),
			Body:  fmt.Sprintf("Training request %s is now %s", tr.ID, tr.Status),
			Fields: []notify.Field{
				{Name: "Trainer", Value: displayName(tr.AssignedTrainerName, tr.AssignedTrainerID)},
			},
		})
	}
	return tr, nil
}

// Delete removes the request; the repository releases the trainer's slot
func (s *trainingService) Delete(ctx context.Context, id string) error {
	if err := s.repos.TrainingRequest.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Training request not found")
		}
		return fmt.Errorf("failed to delete training request: %w", err)
	}
	s.log.Info().Str("request_id", id).Msg("Training request deleted")
	return nil
}

// Assign attaches a trainer without checking availability
func (s *trainingService) Assign(ctx context.Context, req *models.AssignTrainingRequest) (*models.TrainingRequest, error) {
	return s.transfer(ctx, transferInput{
		requestID: req.RequestID,
		trainerID: req.TrainerID,
		expected:  req.ExpectedVersion,
		title:     "Training request assigned",
	})
}

// Pickup lets a trainer claim a request if it has spare capacity. A request
// held by another trainer moves over and that trainer's slot is released.
func (s *trainingService) Pickup(ctx context.Context, req *models.AssignTrainingRequest) (*models.TrainingRequest, error) {
	return s.transfer(ctx, transferInput{
		requestID:       req.RequestID,
		trainerID:       req.TrainerID,
		expected:        req.ExpectedVersion,
		requireCapacity: true,
		rejectSame:      true,
		title:           "Training request picked up",
	})
}

// Reassign moves a request to another trainer unconditionally
func (s *trainingService) Reassign(ctx context.Context, req *models.ReassignTrainingRequest) (*models.TrainingRequest, error) {
	return s.transfer(ctx, transferInput{
		requestID:  req.RequestID,
		trainerID:  req.NewTrainerID,
		expected:   req.ExpectedVersion,
		rejectSame: true,
		title:      "Training request reassigned",
	})
}

type transferInput struct {
	requestID       string
	trainerID       string
	expected        *int
	requireCapacity bool
	rejectSame      bool
	title           string
}

// transfer runs the checks that produce client messages, then hands the
// move to the repository which repeats them atomically
func (s *trainingService) transfer(ctx context.Context, in transferInput) (*models.TrainingRequest, error) {
	tr, err := s.Get(ctx, in.requestID)
	if err != nil {
		return nil, err
	}
	if tr.Status.Closed() {
		return nil, validationError("Cannot assign a %s training request", tr.Status)
	}
	if in.rejectSame && tr.AssignedTrainerID == in.trainerID {
		return nil, validationError("Training request is already assigned to this trainer")
	}

	expected := tr.Version
	if in.expected != nil {
		if *in.expected != tr.Version {
			return nil, newError(ErrConflict, "Training request was modified by another operation; reload and retry")
		}
		expected = *in.expected
	}

	trainer, err := s.repos.Trainers.GetByID(ctx, in.trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trainer: %w", err)
	}
	if trainer == nil {
		return nil, notFoundError("Trainer not found")
	}
	if in.requireCapacity && !trainer.AvailableForPickup() {
		return nil, validationError(msgTrainerUnavailable)
	}

	previousTrainer := tr.AssignedTrainerID
	updated, err := s.repos.TrainingRequest.Transfer(ctx, repository.TransferParams{
		RequestID:       tr.ID,
		ExpectedVersion: expected,
		ToTrainerID:     trainer.ID,
		ToTrainerName:   trainer.Name,
		RequireCapacity: in.requireCapacity,
	})
	if err != nil {
		return nil, s.mapWorkflowError(err)
	}

	s.log.Info().
		Str("request_id", updated.ID).
		Str("trainer_id", trainer.ID).
		Str("previous_trainer_id", previousTrainer).
		Int("version", updated.Version).
		Msg(in.title)

	s.events.Publish(notify.Message{
		Title: in.title,
		Body:  fmt.Sprintf("%s is now handled by %s", displayName(updated.TopicName, updated.TopicID), trainer.Name),
		Fields: []notify.Field{
			{Name: "Request", Value: updated.ID},
			{Name: "Requester", Value: displayName(updated.RequesterName, updated.RequesterID)},
			{Name: "Date", Value: strings.TrimSpace(updated.RequestedDate + " " + updated.RequestedTime)},
		},
	})
	return updated, nil
}

func (s *trainingService) mapWorkflowError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFoundError("Training request not found")
	case errors.Is(err, repository.ErrVersionConflict):
		return newError(ErrConflict, "Training request was modified by another operation; reload and retry")
	case errors.Is(err, repository.ErrInstructorNotFound):
		return notFoundError("Trainer not found")
	case errors.Is(err, repository.ErrInstructorUnavailable):
		return validationError(msgTrainerUnavailable)
	}
	return fmt.Errorf("failed to update training request: %w", err)
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
