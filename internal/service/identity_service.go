package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/airline"
	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/cache"
	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
)

const adminUserID = "admin"

// identityService is the concrete implementation of IdentityService
type identityService struct {
	staff   repository.StaffRepository
	airline AirlineClient
	cache   cache.ProfileCache
	admin   *auth.AdminCredential
	cfg     config.AuthConfig
	log     zerolog.Logger
}

func newIdentityService(staff repository.StaffRepository, deps Dependencies, cfg config.AuthConfig, log zerolog.Logger) *identityService {
	return &identityService{
		staff:   staff,
		airline: deps.Airline,
		cache:   deps.Cache,
		admin:   deps.Admin,
		cfg:     cfg,
		log:     log.With().Str("service", "identity").Logger(),
	}
}

// Verify checks a credential against the airline API and enriches the
// profile with the local staff role. When the airline API fails the
// credential may still match the bootstrap admin credential.
func (s *identityService) Verify(ctx context.Context, apiKey string) (*Verification, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, validationError("API key is required")
	}

	if user, ok := s.cache.Get(ctx, apiKey); ok {
		s.log.Debug().Str("user_id", user.ID).Msg("Identity served from cache")
		return s.verification(user)
	}

	profile, err := s.airline.Profile(ctx, apiKey)
	if err != nil {
		if s.admin.Matches(apiKey) {
			s.log.Warn().Err(err).Msg("Airline API unavailable, accepted bootstrap admin credential")
			return s.verification(adminIdentity())
		}
		s.log.Warn().Err(err).Msg("Identity verification failed")
		return nil, &Error{Kind: ErrUpstream, Message: "Failed to verify API key: " + err.Error(), Err: err}
	}

	user := &models.VerifiedUser{
		Profile: *profile,
		Role:    models.RoleStaff,
		Source:  models.SourceAirline,
	}
	member, err := s.staff.GetByCredentialHash(ctx, auth.HashCredential(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to look up staff member: %w", err)
	}
	if member != nil && member.Status != "inactive" {
		user.Role = member.Role
		user.StaffID = member.ID
	}
	user.Permissions = models.PermissionsFor(user.Role)

	s.cache.Set(ctx, apiKey, user)
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("Identity verified")
	return s.verification(user)
}

func adminIdentity() *models.VerifiedUser {
	return &models.VerifiedUser{
		Profile: models.Profile{
			ID:   adminUserID,
			Name: "Administrator",
		},
		Role:        models.RoleAdmin,
		Permissions: models.PermissionsFor(models.RoleAdmin),
		Source:      models.SourceFallback,
	}
}

// verification attaches a session token when a signing secret is configured
func (s *identityService) verification(user *models.VerifiedUser) (*Verification, error) {
	v := &Verification{User: user}
	if s.cfg.JWTSecret == "" {
		return v, nil
	}
	token, err := auth.NewSessionToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.SessionTTL, auth.Claims{
		UserID:      user.ID,
		Name:        user.Name,
		Role:        string(user.Role),
		Permissions: user.Permissions,
		Source:      string(user.Source),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	v.SessionToken = token
	return v, nil
}

func (s *identityService) Session(token string) (*auth.Claims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, newError(ErrUnavailable, "Session tokens are not enabled")
	}
	if token == "" {
		return nil, newError(ErrUnauthorized, "Missing session token")
	}
	claims, err := auth.ParseToken(s.cfg.JWTSecret, token)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthorized, Message: "Invalid or expired session token", Err: err}
	}
	return claims, nil
}

// Pilot looks a pilot up upstream using the admin credential
func (s *identityService) Pilot(ctx context.Context, pilotID string) (*models.Profile, error) {
	key := s.admin.Key()
	if key == "" {
		return nil, newError(ErrUnavailable, "Pilot lookup requires an admin API key")
	}
	if strings.TrimSpace(pilotID) == "" {
		return nil, validationError("pilotId is required")
	}

	profile, err := s.airline.Pilot(ctx, key, pilotID)
	if err != nil {
		if errors.Is(err, airline.ErrNotFound) {
			return nil, notFoundError("Pilot not found")
		}
		s.log.Error().Err(err).Str("pilot_id", pilotID).Msg("Pilot lookup failed")
		return nil, &Error{Kind: ErrUpstream, Message: "Failed to look up pilot", Err: err}
	}
	return profile, nil
}
