package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/api"
	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/mocks"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/internal/service"
)

type testEnv struct {
	router  *gin.Engine
	repos   *repository.Repositories
	airline *mocks.MockAirlineClient
	health  *mocks.MockHealthChecker
}

func setupTestRouter() *testEnv {
	gin.SetMode(gin.TestMode)

	repos := mocks.NewRepositories()
	airlineClient := mocks.NewMockAirlineClient()
	health := &mocks.MockHealthChecker{}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080", RequestTimeout: 5 * time.Second},
	}

	log := zerolog.Nop()
	services := service.NewServices(repos, service.Dependencies{
		Airline:  airlineClient,
		Notifier: mocks.NewMockNotifier(false),
		Admin:    auth.NewAdminCredential("", ""),
		DB:       health,
	}, cfg, log)

	return &testEnv{
		router:  api.NewRouter(services, cfg, log),
		repos:   repos,
		airline: airlineClient,
		health:  health,
	}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", w.Body.String(), err)
	}
	return response
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter()

	w := env.do("GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "training-management-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	env := setupTestRouter()
	env.health.Err = errors.New("connection refused")

	w := env.do("GET", "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	if response := decode(t, w); response["status"] != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got %v", response["status"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := setupTestRouter()
	env.do("POST", "/courses", `{"title":"Type rating","instructor":"Capt. Reyes"}`)
	env.do("POST", "/trainers", `{"externalId":"VA100","name":"Tom"}`)

	w := env.do("GET", "/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	stats := decode(t, w)["stats"].(map[string]interface{})
	if stats["courses"].(float64) != 1 {
		t.Errorf("Expected 1 course, got %v", stats["courses"])
	}
	if stats["trainers"].(float64) != 1 {
		t.Errorf("Expected 1 trainer, got %v", stats["trainers"])
	}
}

func TestCreateCourse(t *testing.T) {
	env := setupTestRouter()

	w := env.do("POST", "/courses", `{"title":"Type rating","instructor":"Capt. Reyes"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	response := decode(t, w)
	if response["success"] != true {
		t.Errorf("Expected success true, got %v", response["success"])
	}
	course := response["course"].(map[string]interface{})
	if course["id"] == "" || course["id"] == nil {
		t.Error("Expected course id")
	}
	if course["students"].(float64) != 0 {
		t.Errorf("Expected 0 students, got %v", course["students"])
	}
	if _, ok := course["createdAt"]; !ok {
		t.Error("Expected createdAt")
	}

	// Read it back
	w = env.do("GET", "/courses/"+course["id"].(string), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	fetched := decode(t, w)["course"].(map[string]interface{})
	if fetched["title"] != "Type rating" {
		t.Errorf("Expected title 'Type rating', got %v", fetched["title"])
	}
}

func TestNotFound(t *testing.T) {
	env := setupTestRouter()

	paths := []string{
		"/staff/missing",
		"/trainers/missing",
		"/examiners/missing",
		"/training-requests/missing",
		"/training-assignments/missing",
		"/courses/missing",
		"/students/missing",
		"/training-topics/missing",
		"/quizzes/missing",
		"/quiz-attempts/missing",
		"/test-tokens/missing",
		"/test-submissions/missing",
		"/inactivation-requests/missing",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := env.do("GET", path, "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Expected status 404, got %d", w.Code)
			}
			response := decode(t, w)
			if response["success"] != false {
				t.Errorf("Expected success false, got %v", response["success"])
			}
		})
	}
}

func TestCreateValidation(t *testing.T) {
	env := setupTestRouter()

	tests := []struct {
		name          string
		path          string
		body          string
		expectedError string
	}{
		{
			name:          "course without title",
			path:          "/courses",
			body:          `{"instructor":"Capt. Reyes"}`,
			expectedError: "title is required",
		},
		{
			name:          "staff with unknown role",
			path:          "/staff",
			body:          `{"apiKey":"k","name":"Ann","role":"Pilot"}`,
			expectedError: "role must be one of",
		},
		{
			name:          "training request with bad date",
			path:          "/training-requests",
			body:          `{"requesterId":"p1","topicId":"t1","requestedDate":"15/10/2026"}`,
			expectedError: "requestedDate must match the format",
		},
		{
			name:          "malformed json",
			path:          "/trainers",
			body:          `{"externalId":`,
			expectedError: "request body must be valid JSON",
		},
		{
			name:          "pickup without trainer",
			path:          "/training-requests/pickup",
			body:          `{"requestId":"r1"}`,
			expectedError: "trainerId is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d. Body: %s", w.Code, w.Body.String())
			}
			if !bytes.Contains(w.Body.Bytes(), []byte(tt.expectedError)) {
				t.Errorf("Expected error '%s' in response, got: %s", tt.expectedError, w.Body.String())
			}
		})
	}
}

func TestPickupUnavailableTrainer(t *testing.T) {
	env := setupTestRouter()
	trainers := env.repos.Trainers.(*mocks.MockInstructorRepository)
	requests := env.repos.TrainingRequest.(*mocks.MockTrainingRequestRepository)

	now := time.Now().UTC()
	trainers.Instructors["t1"] = &models.Instructor{
		ID: "t1", Kind: models.KindTrainer, ExternalID: "VA001", Name: "Tom",
		Active: true, CurrentAssignments: 2, MaxAssignments: 2, CreatedAt: now,
	}
	requests.Requests["r1"] = &models.TrainingRequest{
		ID: "r1", RequesterID: "p1", TopicID: "topic", RequestedDate: "2026-11-01",
		Status: models.RequestStatusPending, Version: 1, CreatedAt: now, UpdatedAt: now,
	}

	w := env.do("POST", "/training-requests/pickup", `{"requestId":"r1","trainerId":"t1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d. Body: %s", w.Code, w.Body.String())
	}
	if response := decode(t, w); response["error"] != "Trainer is not available for pickup" {
		t.Errorf("Unexpected error: %v", response["error"])
	}

	if got := requests.Requests["r1"]; got.Status != models.RequestStatusPending || got.AssignedTrainerID != "" || got.Version != 1 {
		t.Errorf("Request was modified: %+v", got)
	}
	if got := trainers.Instructors["t1"].CurrentAssignments; got != 2 {
		t.Errorf("Expected trainer counter 2, got %d", got)
	}
}

func TestPickupAndStaleVersion(t *testing.T) {
	env := setupTestRouter()
	trainers := env.repos.Trainers.(*mocks.MockInstructorRepository)
	requests := env.repos.TrainingRequest.(*mocks.MockTrainingRequestRepository)

	now := time.Now().UTC()
	trainers.Instructors["t1"] = &models.Instructor{
		ID: "t1", Kind: models.KindTrainer, ExternalID: "VA001", Name: "Tom",
		Active: true, MaxAssignments: 3, CreatedAt: now,
	}
	trainers.Instructors["t2"] = &models.Instructor{
		ID: "t2", Kind: models.KindTrainer, ExternalID: "VA002", Name: "Tara",
		Active: true, MaxAssignments: 3, CreatedAt: now,
	}
	requests.Requests["r1"] = &models.TrainingRequest{
		ID: "r1", RequesterID: "p1", TopicID: "topic", RequestedDate: "2026-11-01",
		Status: models.RequestStatusPending, Version: 1, CreatedAt: now, UpdatedAt: now,
	}

	w := env.do("POST", "/training-requests/pickup", `{"requestId":"r1","trainerId":"t1","expectedVersion":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	request := decode(t, w)["request"].(map[string]interface{})
	if request["status"] != "assigned" || request["assignedTrainerId"] != "t1" {
		t.Errorf("Unexpected request: %v", request)
	}

	// A second trainer working from the stale read loses
	w = env.do("POST", "/training-requests/pickup", `{"requestId":"r1","trainerId":"t2","expectedVersion":1}`)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d. Body: %s", w.Code, w.Body.String())
	}
	if got := trainers.Instructors["t2"].CurrentAssignments; got != 0 {
		t.Errorf("Expected t2 counter 0, got %d", got)
	}
}

func TestVerify_UpstreamFailure(t *testing.T) {
	env := setupTestRouter()
	env.airline.Err = errors.New("connection refused")

	w := env.do("POST", "/auth/verify", `{"apiKey":"wrong-key"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d. Body: %s", w.Code, w.Body.String())
	}

	response := decode(t, w)
	if response["ok"] != false {
		t.Errorf("Expected ok false, got %v", response["ok"])
	}
	if msg, _ := response["error"].(string); !strings.HasPrefix(msg, "Failed to verify API key") {
		t.Errorf("Unexpected error: %v", response["error"])
	}
}

func TestVerify(t *testing.T) {
	env := setupTestRouter()
	env.airline.Profiles["pilot-key"] = &models.Profile{ID: "u1", Name: "Pat Pilot"}

	w := env.do("POST", "/auth/verify", `{"apiKey":"pilot-key"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	response := decode(t, w)
	if response["ok"] != true {
		t.Errorf("Expected ok true, got %v", response["ok"])
	}
	user := response["user"].(map[string]interface{})
	if user["role"] != string(models.RoleStaff) {
		t.Errorf("Expected staff role, got %v", user["role"])
	}
	if _, ok := response["sessionToken"]; ok {
		t.Error("Expected no session token without a signing secret")
	}

	w = env.do("POST", "/auth/verify", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if response := decode(t, w); response["ok"] != false {
		t.Errorf("Expected ok false, got %v", response["ok"])
	}
}

func TestSession_Disabled(t *testing.T) {
	env := setupTestRouter()

	req := httptest.NewRequest("GET", "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestTokenExpiry(t *testing.T) {
	env := setupTestRouter()
	tokens := env.repos.TestToken.(*mocks.MockTestTokenRepository)

	now := time.Now().UTC()
	tokens.Tokens["tok1"] = &models.TestToken{
		ID: "tok1", Token: "ABCD2345", Status: models.TokenActive, TestName: "Checkride",
		ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
	}

	w := env.do("POST", "/test-tokens/validate", `{"token":"abcd2345"}`)
	if w.Code != http.StatusGone {
		t.Fatalf("Expected status 410, got %d. Body: %s", w.Code, w.Body.String())
	}
	if tokens.Tokens["tok1"].Status != models.TokenExpired {
		t.Errorf("Expected stored token to be expired, got %s", tokens.Tokens["tok1"].Status)
	}

	w = env.do("POST", "/test-tokens/validate", `{"token":"ABCD2345"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestQuizAttemptFlow(t *testing.T) {
	env := setupTestRouter()

	w := env.do("POST", "/quizzes", `{
		"title":"Weather",
		"questions":[
			{"text":"METAR stands for?","options":["a","b"],"correctOption":0},
			{"text":"TAF covers?","options":["a","b","c"],"correctOption":2}
		]
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	quizID := decode(t, w)["quiz"].(map[string]interface{})["id"].(string)

	w = env.do("POST", "/quizzes/"+quizID+"/attempts", `{"userId":"p1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	attemptID := decode(t, w)["attempt"].(map[string]interface{})["id"].(string)

	w = env.do("POST", "/quiz-attempts/"+attemptID+"/submit", `{"answers":[0,1]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	attempt := decode(t, w)["attempt"].(map[string]interface{})
	if attempt["score"].(float64) != 50 || attempt["passed"] != false {
		t.Errorf("Expected score 50 and not passed, got %v / %v", attempt["score"], attempt["passed"])
	}

	w = env.do("POST", "/quiz-attempts/"+attemptID+"/submit", `{"answers":[0,2]}`)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}

func TestAssessmentRecordUpdates(t *testing.T) {
	env := setupTestRouter()
	now := time.Now().UTC()

	env.repos.QuizAttempt.(*mocks.MockQuizAttemptRepository).Attempts["att1"] = &models.QuizAttempt{
		ID: "att1", QuizID: "q1", UserID: "p1", UserName: "Old Name", Answers: []int{},
		Status: models.AttemptInProgress, StartedAt: now, UpdatedAt: now,
	}
	tokens := env.repos.TestToken.(*mocks.MockTestTokenRepository)
	tokens.Tokens["tok1"] = &models.TestToken{
		ID: "tok1", Token: "ABCD2345", Status: models.TokenActive, TestName: "Checkride",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	tokens.Tokens["tok2"] = &models.TestToken{
		ID: "tok2", Token: "WXYZ6789", Status: models.TokenExpired, TestName: "Checkride",
		ExpiresAt: now.Add(-time.Hour), CreatedAt: now, UpdatedAt: now,
	}
	env.repos.Submission.(*mocks.MockSubmissionRepository).Submissions["sub1"] = &models.TestSubmission{
		ID: "sub1", TokenID: "tok0", Token: "PQRS2345", UserID: "p1", TestName: "Checkride",
		Answers: map[string]string{}, SubmittedAt: now, UpdatedAt: now,
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		key        string
		field      string
		want       interface{}
	}{
		{"rename attempt", "PATCH", "/quiz-attempts/att1", `{"userName":"New Name"}`, http.StatusOK, "attempt", "userName", "New Name"},
		{"missing attempt", "PUT", "/quiz-attempts/missing", `{"userName":"x"}`, http.StatusNotFound, "", "", nil},
		{"get token", "GET", "/test-tokens/tok1", "", http.StatusOK, "token", "testName", "Checkride"},
		{"rename token", "PUT", "/test-tokens/tok1", `{"testName":"Type rating"}`, http.StatusOK, "token", "testName", "Type rating"},
		{"token code is kept", "PATCH", "/test-tokens/tok1", `{"issuedTo":"p2"}`, http.StatusOK, "token", "token", "ABCD2345"},
		{"extend expired token", "PATCH", "/test-tokens/tok2", `{"expiresInMinutes":30}`, http.StatusBadRequest, "", "", nil},
		{"missing token", "PATCH", "/test-tokens/missing", `{"testName":"x"}`, http.StatusNotFound, "", "", nil},
		{"score submission", "PATCH", "/test-submissions/sub1", `{"score":85,"notes":"Good approach"}`, http.StatusOK, "submission", "score", float64(85)},
		{"score out of range", "PUT", "/test-submissions/sub1", `{"score":120}`, http.StatusBadRequest, "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d. Body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.key == "" {
				return
			}
			record := decode(t, w)[tt.key].(map[string]interface{})
			if record[tt.field] != tt.want {
				t.Errorf("Expected %s %v, got %v", tt.field, tt.want, record[tt.field])
			}
		})
	}

	if got := tokens.Tokens["tok2"].Status; got != models.TokenExpired {
		t.Errorf("Expected expired token to stay expired, got %s", got)
	}
	if got := tokens.Tokens["tok1"].Token; got != "ABCD2345" {
		t.Errorf("Expected token code to be unchanged, got %s", got)
	}
}

func TestPilotLookup_NoAdminKey(t *testing.T) {
	env := setupTestRouter()

	w := env.do("GET", "/airline/pilots/VA001", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestNotify_NotConfigured(t *testing.T) {
	env := setupTestRouter()

	w := env.do("POST", "/notifications", `{"title":"Hello","message":"World"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d. Body: %s", w.Code, w.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := setupTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}

	w = env.do("GET", "/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id")
	}
}

func TestCORSHeaders(t *testing.T) {
	env := setupTestRouter()

	w := env.do("OPTIONS", "/training-requests", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 for OPTIONS, got %d", w.Code)
	}

	allowOrigin := w.Header().Get("Access-Control-Allow-Origin")
	if allowOrigin != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin '*', got '%s'", allowOrigin)
	}

	allowMethods := w.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(allowMethods, "PATCH") {
		t.Errorf("Expected PATCH in Access-Control-Allow-Methods, got '%s'", allowMethods)
	}
}
