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
	"github.com/training-management-api/internal/validation"
	"github.com/training-management-api/pkg/idgen"
)

// inactivationService is the concrete implementation of InactivationService
type inactivationService struct {
	repos  *repository.Repositories
	events NotificationService
	log    zerolog.Logger
}

func newInactivationService(repos *repository.Repositories, events NotificationService, log zerolog.Logger) *inactivationService {
	return &inactivationService{
		repos:  repos,
		events: events,
		log:    log.With().Str("service", "inactivation").Logger(),
	}
}

func (s *inactivationService) List(ctx context.Context, status models.InactivationStatus) ([]*models.InactivationRequest, error) {
	switch status {
	case "", models.InactivationPending, models.InactivationApproved, models.InactivationDenied:
	default:
		return nil, validationError("Invalid status filter: %s", status)
	}
	requests, err := s.repos.Inactivation.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list inactivation requests: %w", err)
	}
	return requests, nil
}

func (s *inactivationService) Get(ctx context.Context, id string) (*models.InactivationRequest, error) {
	ir, err := s.repos.Inactivation.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inactivation request: %w", err)
	}
	if ir == nil {
		return nil, notFoundError("Inactivation request not found")
	}
	return ir, nil
}

func (s *inactivationService) Create(ctx context.Context, req *models.CreateInactivationRequest) (*models.InactivationRequest, error) {
	period, err := validation.ValidatePeriod(req.From, req.To)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}

	instructor, err := s.repos.Instructors(req.UserType).GetByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", req.UserType, err)
	}
	if instructor == nil {
		return nil, notFoundError("%s not found", label(req.UserType))
	}

	action := req.Action
	if action == "" {
		action = models.ActionInactivate
	}
	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		userName = instructor.Name
	}

	now := time.Now().UTC()
	ir := &models.InactivationRequest{
		ID:        idgen.Next(),
		UserID:    req.UserID,
		UserName:  userName,
		UserType:  req.UserType,
		Action:    action,
		Period:    period,
		Reason:    req.Reason,
		Status:    models.InactivationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repos.Inactivation.Create(ctx, ir); err != nil {
		return nil, fmt.Errorf("failed to create inactivation request: %w", err)
	}

	s.log.Info().Str("request_id", ir.ID).Str("user_id", ir.UserID).Str("action", string(action)).Msg("Inactivation request created")
	s.events.Publish(notify.Message{
		Title: "Inactivation request submitted",
		Body:  fmt.Sprintf("%s asked to %s from %s to %s (%d days)", userName, action, period.From, period.To, period.Days),
		Fields: []notify.Field{
			{Name: "Reason", Value: displayName(ir.Reason, "-")},
		},
	})
	return ir, nil
}

// Review records a decision on a pending request. Approval toggles the
// instructor's active flag first, then stores the decision.
func (s *inactivationService) Review(ctx context.Context, id string, req *models.ReviewInactivationRequest) (*models.InactivationRequest, error) {
	ir, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ir.Status != models.InactivationPending {
		return nil, validationError("Inactivation request has already been reviewed")
	}

	if req.Decision == models.InactivationApproved {
		active := ir.Action == models.ActionActivate
		if err := s.repos.Instructors(ir.UserType).SetActive(ctx, ir.UserID, active); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFoundError("%s not found", label(ir.UserType))
			}
			return nil, fmt.Errorf("failed to update %s: %w", ir.UserType, err)
		}
	}

	now := time.Now().UTC()
	ir.Status = req.Decision
	ir.ReviewedBy = req.ReviewedBy
	ir.ReviewerName = req.ReviewerName
	ir.ReviewComment = req.Comment
	ir.ReviewedAt = &now
	ir.UpdatedAt = now

	if err := s.repos.Inactivation.Review(ctx, ir); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrConflict, "Inactivation request was reviewed concurrently")
		}
		return nil, fmt.Errorf("failed to review inactivation request: %w", err)
	}

	s.log.Info().Str("request_id", ir.ID).Str("decision", string(ir.Status)).Str("reviewed_by", ir.ReviewedBy).Msg("Inactivation request reviewed")
	s.events.Publish(notify.Message{
		Title: "Inactivation request " + string(ir.Status),
		Body:  fmt.Sprintf("%s's request to %s was %s", displayName(ir.UserName, ir.UserID), ir.Action, ir.Status),
		Fields: []notify.Field{
			{Name: "Reviewer", Value: displayName(ir.ReviewerName, ir.ReviewedBy)},
		},
	})
	return ir, nil
}

func (s *inactivationService) Delete(ctx context.Context, id string) error {
	if err := s.repos.Inactivation.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Inactivation request not found")
		}
		return fmt.Errorf("failed to delete inactivation request: %w", err)
	}
	return nil
}
