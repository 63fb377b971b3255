package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/pkg/idgen"
)

// openTestDB connects to TEST_DATABASE_URL and applies the migrations.
// Tests using it are skipped when the variable is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.New(&config.DatabaseConfig{URL: url, MaxOpenConns: 5, MaxIdleConns: 2, MaxLifetime: time.Minute}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestPostgres_TransferDeleteRecount(t *testing.T) {
	db := openTestDB(t)
	repos := repository.New(db)
	ctx := context.Background()
	now := time.Now().UTC()

	newTrainer := func(max int) *models.Instructor {
		id := idgen.Next()
		tr := &models.Instructor{
			ID: id, Kind: models.KindTrainer, ExternalID: "VA-" + id, Name: "Trainer " + id,
			Active: true, MaxAssignments: max, CreatedAt: now, UpdatedAt: now,
		}
		if err := repos.Trainers.Create(ctx, tr); err != nil {
			t.Fatalf("Create trainer failed: %v", err)
		}
		t.Cleanup(func() { db.ExecContext(context.Background(), `DELETE FROM trainers WHERE id = $1`, id) })
		return tr
	}
	newRequest := func() string {
		id := idgen.Next()
		err := repos.TrainingRequest.Create(ctx, &models.TrainingRequest{
			ID: id, RequesterID: "p1", TopicID: "top1", RequestedDate: "2026-11-01",
			Status: models.RequestStatusPending, Version: 1, CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("Create request failed: %v", err)
		}
		t.Cleanup(func() { db.ExecContext(context.Background(), `DELETE FROM training_requests WHERE id = $1`, id) })
		return id
	}
	counter := func(id string) int {
		t.Helper()
		tr, err := repos.Trainers.GetByID(ctx, id)
		if err != nil || tr == nil {
			t.Fatalf("GetByID %s failed: %v", id, err)
		}
		return tr.CurrentAssignments
	}

	t1 := newTrainer(1)
	t2 := newTrainer(2)
	r1 := newRequest()
	r2 := newRequest()

	tr, err := repos.TrainingRequest.Transfer(ctx, repository.TransferParams{
		RequestID: r1, ExpectedVersion: 1, ToTrainerID: t1.ID, ToTrainerName: t1.Name, RequireCapacity: true,
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if tr.Status != models.RequestStatusAssigned || tr.Version != 2 || counter(t1.ID) != 1 {
		t.Errorf("Unexpected state after transfer: %+v, counter %d", tr, counter(t1.ID))
	}

	_, err = repos.TrainingRequest.Transfer(ctx, repository.TransferParams{
		RequestID: r2, ExpectedVersion: 1, ToTrainerID: t1.ID, RequireCapacity: true,
	})
	if !errors.Is(err, repository.ErrInstructorUnavailable) {
		t.Errorf("Expected ErrInstructorUnavailable for a full trainer, got %v", err)
	}
	_, err = repos.TrainingRequest.Transfer(ctx, repository.TransferParams{RequestID: r1, ExpectedVersion: 1, ToTrainerID: t2.ID})
	if !errors.Is(err, repository.ErrVersionConflict) {
		t.Errorf("Expected ErrVersionConflict for a stale version, got %v", err)
	}

	tr.Status = models.RequestStatusInProgress
	tr.UpdatedAt = time.Now().UTC()
	if err := repos.TrainingRequest.Update(ctx, tr); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	moved, err := repos.TrainingRequest.Transfer(ctx, repository.TransferParams{
		RequestID: r1, ExpectedVersion: tr.Version, ToTrainerID: t2.ID, ToTrainerName: t2.Name,
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if moved.Status != models.RequestStatusInProgress {
		t.Errorf("Expected in-progress to survive reassignment, got %s", moved.Status)
	}
	if counter(t1.ID) != 0 || counter(t2.ID) != 1 {
		t.Errorf("Expected counters 0/1, got %d/%d", counter(t1.ID), counter(t2.ID))
	}

	if _, err := db.ExecContext(ctx, `UPDATE trainers SET current_assignments = 5 WHERE id = $1`, t2.ID); err != nil {
		t.Fatalf("Failed to skew counter: %v", err)
	}
	trainer, previous, err := repos.TrainingRequest.RecountTrainer(ctx, t2.ID)
	if err != nil {
		t.Fatalf("RecountTrainer failed: %v", err)
	}
	if previous != 5 || trainer.CurrentAssignments != 1 {
		t.Errorf("Expected 5 -> 1, got %d -> %d", previous, trainer.CurrentAssignments)
	}
	if _, _, err := repos.TrainingRequest.RecountTrainer(ctx, "missing-"+t2.ID); !errors.Is(err, repository.ErrInstructorNotFound) {
		t.Errorf("Expected ErrInstructorNotFound, got %v", err)
	}

	if err := repos.TrainingRequest.Delete(ctx, r1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if counter(t2.ID) != 0 {
		t.Errorf("Expected slot released on delete, got %d", counter(t2.ID))
	}
	if err := repos.TrainingRequest.Delete(ctx, r1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	dup := *t1
	dup.ID = idgen.Next()
	if err := repos.Trainers.Create(ctx, &dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for a reused externalId, got %v", err)
	}
}
