package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/cache"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/pkg/idgen"
)

// staffService is the concrete implementation of StaffService. Every write
// drops the member's cached identity so role and permissions take effect on
// the next verify.
type staffService struct {
	repo     repository.StaffRepository
	profiles cache.ProfileCache
	log      zerolog.Logger
}

func newStaffService(repo repository.StaffRepository, profiles cache.ProfileCache, log zerolog.Logger) *staffService {
	return &staffService{
		repo:     repo,
		profiles: profiles,
		log:      log.With().Str("service", "staff").Logger(),
	}
}

func (s *staffService) List(ctx context.Context) ([]*models.StaffMember, error) {
	staff, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func (s *staffService) Get(ctx context.Context, id string) (*models.StaffMember, error) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	if member == nil {
		return nil, notFoundError("Staff member not found")
	}
	return member, nil
}

// Create stores a staff member. The credential is kept only as a hash and
// permissions always come from the role table.
func (s *staffService) Create(ctx context.Context, req *models.CreateStaffRequest) (*models.StaffMember, error) {
	hash := auth.HashCredential(strings.TrimSpace(req.APIKey))
	existing, err := s.repo.GetByCredentialHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to check staff credential: %w", err)
	}
	if existing != nil {
		return nil, validationError("A staff member with this API key already exists")
	}

	status := req.Status
	if status == "" {
		status = "active"
	}

	now := time.Now().UTC()
	member := &models.StaffMember{
		ID:             idgen.Next(),
		CredentialHash: hash,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Role:           req.Role,
		Status:         status,
		Permissions:    models.PermissionsFor(req.Role),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validationError("A staff member with this API key already exists")
		}
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	s.profiles.InvalidateHash(ctx, member.CredentialHash)

	s.log.Info().Str("staff_id", member.ID).Str("role", string(member.Role)).Msg("Staff member created")
	return member, nil
}

func (s *staffService) Update(ctx context.Context, id string, req *models.UpdateStaffRequest) (*models.StaffMember, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		member.Email = strings.TrimSpace(*req.Email)
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Status != nil {
		member.Status = *req.Status
	}
	member.Permissions = models.PermissionsFor(member.Role)
	member.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, member); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("Staff member not found")
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	s.profiles.InvalidateHash(ctx, member.CredentialHash)
	return member, nil
}

func (s *staffService) Delete(ctx context.Context, id string) error {
	member, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("Staff member not found")
		}
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	s.profiles.InvalidateHash(ctx, member.CredentialHash)
	s.log.Info().Str("staff_id", id).Msg("Staff member deleted")
	return nil
}

func (s *staffService) Roles() map[models.Role][]string {
	return models.RolePermissionTable()
}
