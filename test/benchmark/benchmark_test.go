package benchmark

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/mocks"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/internal/service"
	"github.com/training-management-api/internal/validation"
	"github.com/training-management-api/pkg/idgen"
)

func newServices(repos *repository.Repositories) *service.Services {
	return service.NewServices(repos, service.Dependencies{
		Airline:  mocks.NewMockAirlineClient(),
		Notifier: mocks.NewMockNotifier(false),
		Admin:    auth.NewAdminCredential("", ""),
		DB:       &mocks.MockHealthChecker{},
	}, &config.Config{}, zerolog.Nop())
}

func questionBank(n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			ID:            "q" + strconv.Itoa(i+1),
			Text:          "Question " + strconv.Itoa(i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: i % 4,
		}
	}
	return questions
}

// BenchmarkScore benchmarks grading a 50-question attempt
func BenchmarkScore(b *testing.B) {
	questions := questionBank(50)
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = (i * 7) % 4
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		service.Score(questions, answers)
	}
}

// BenchmarkValidateQuestions benchmarks question set validation
func BenchmarkValidateQuestions(b *testing.B) {
	questions := questionBank(50)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validation.ValidateQuestions(questions)
	}
}

// BenchmarkPickupReassign benchmarks the transfer workflow bouncing one
// request between two trainers
func BenchmarkPickupReassign(b *testing.B) {
	repos := mocks.NewRepositories()
	trainers := repos.Trainers.(*mocks.MockInstructorRepository)
	requests := repos.TrainingRequest.(*mocks.MockTrainingRequestRepository)

	now := time.Now().UTC()
	for _, id := range []string{"t1", "t2"} {
		trainers.Instructors[id] = &models.Instructor{
			ID: id, Kind: models.KindTrainer, ExternalID: id, Name: id,
			Active: true, MaxAssignments: 3, CreatedAt: now,
		}
	}
	requests.Requests["r1"] = &models.TrainingRequest{
		ID: "r1", RequesterID: "p1", TopicID: "topic", RequestedDate: "2026-11-01",
		Status: models.RequestStatusPending, Version: 1, CreatedAt: now, UpdatedAt: now,
	}

	svc := newServices(repos)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		target := "t1"
		if i%2 == 1 {
			target = "t2"
		}
		if _, err := svc.Training.Reassign(ctx, &models.ReassignTrainingRequest{RequestID: "r1", NewTrainerID: target}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkIssueToken benchmarks token generation including the uniqueness check
func BenchmarkIssueToken(b *testing.B) {
	svc := newServices(mocks.NewRepositories())
	ctx := context.Background()
	req := &models.CreateTokenRequest{TestName: "Checkride"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svc.Assessment.IssueToken(ctx, req); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkIDGeneration benchmarks timestamp id generation
func BenchmarkIDGeneration(b *testing.B) {
	g := idgen.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		g.Next()
	}
}

// BenchmarkIDGenerationParallel benchmarks id generation under contention
func BenchmarkIDGenerationParallel(b *testing.B) {
	g := idgen.New()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			g.Next()
		}
	})
}
