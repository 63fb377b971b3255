package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
)

// statsService is the concrete implementation of StatsService
type statsService struct {
	repos *repository.Repositories
	db    HealthChecker
	log   zerolog.Logger
}

func newStatsService(repos *repository.Repositories, db HealthChecker, log zerolog.Logger) *statsService {
	return &statsService{
		repos: repos,
		db:    db,
		log:   log.With().Str("service", "stats").Logger(),
	}
}

// Dashboard counts every collection shown on the dashboard concurrently
func (s *statsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int, fn func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&stats.Staff, s.repos.Staff.Count)
	count(&stats.Trainers, s.repos.Trainers.Count)
	count(&stats.Examiners, s.repos.Examiners.Count)
	count(&stats.Students, s.repos.Student.Count)
	count(&stats.Courses, s.repos.Course.Count)
	count(&stats.Quizzes, s.repos.Quiz.Count)
	count(&stats.PendingTrainings, func(ctx context.Context) (int, error) {
		return s.repos.TrainingRequest.CountByStatus(ctx, models.RequestStatusPending)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count dashboard statistics: %w", err)
	}
	return stats, nil
}

func (s *statsService) Health(ctx context.Context) error {
	if s.db == nil {
		return newError(ErrUnavailable, "Database is not configured")
	}
	if err := s.db.HealthCheck(ctx); err != nil {
		s.log.Error().Err(err).Msg("Database health check failed")
		return &Error{Kind: ErrUnavailable, Message: "Database is unreachable", Err: err}
	}
	return nil
}
