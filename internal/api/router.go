package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/service"
	"github.com/training-management-api/internal/validation"
)

const requestIDHeader = "X-Request-ID"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.RegisterJSONTagNames()

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	directory := NewDirectoryHandler(services, cfg, log)
	workflow := NewWorkflowHandler(services, cfg, log)
	catalog := NewCatalogHandler(services, cfg, log)
	assessment := NewAssessmentHandler(services, cfg, log)
	identity := NewIdentityHandler(services, cfg, log)

	router.GET("/health", healthCheck(services, cfg))
	router.GET("/stats", statsHandler(services, cfg, log))

	staff := router.Group("/staff")
	{
		staff.GET("", directory.ListStaff)
		staff.POST("", directory.CreateStaff)
		staff.GET("/roles", directory.Roles)
		staff.GET("/:id", directory.GetStaff)
		staff.PATCH("/:id", directory.UpdateStaff)
		staff.PUT("/:id", directory.UpdateStaff)
		staff.DELETE("/:id", directory.DeleteStaff)
	}

	trainers := router.Group("/trainers")
	{
		trainers.GET("", directory.ListTrainers)
		trainers.POST("", directory.CreateTrainer)
		trainers.GET("/:id", directory.GetTrainer)
		trainers.PATCH("/:id", directory.UpdateTrainer)
		trainers.PUT("/:id", directory.UpdateTrainer)
		trainers.DELETE("/:id", directory.DeleteTrainer)
		trainers.POST("/:id/recount", directory.RecountTrainer)
	}

	examiners := router.Group("/examiners")
	{
		examiners.GET("", directory.ListExaminers)
		examiners.POST("", directory.CreateExaminer)
		examiners.GET("/:id", directory.GetExaminer)
		examiners.PATCH("/:id", directory.UpdateExaminer)
		examiners.PUT("/:id", directory.UpdateExaminer)
		examiners.DELETE("/:id", directory.DeleteExaminer)
	}

	inactivation := router.Group("/inactivation-requests")
	{
		inactivation.GET("", directory.ListInactivation)
		inactivation.POST("", directory.CreateInactivation)
		inactivation.GET("/:id", directory.GetInactivation)
		inactivation.PATCH("/:id/review", directory.ReviewInactivation)
		inactivation.DELETE("/:id", directory.DeleteInactivation)
	}

	requests := router.Group("/training-requests")
	{
		requests.GET("", workflow.ListRequests)
		requests.POST("", workflow.CreateRequest)
		requests.POST("/assign", workflow.Assign)
		requests.POST("/pickup", workflow.Pickup)
		requests.POST("/reassign", workflow.Reassign)
		requests.GET("/:id", workflow.GetRequest)
		requests.PATCH("/:id", workflow.UpdateRequest)
		requests.PUT("/:id", workflow.UpdateRequest)
		requests.DELETE("/:id", workflow.DeleteRequest)
	}

	assignments := router.Group("/training-assignments")
	{
		assignments.GET("", workflow.ListAssignments)
		assignments.POST("", workflow.CreateAssignment)
		assignments.GET("/:id", workflow.GetAssignment)
		assignments.PATCH("/:id", workflow.UpdateAssignment)
		assignments.PUT("/:id", workflow.UpdateAssignment)
		assignments.DELETE("/:id", workflow.DeleteAssignment)
	}

	courses := router.Group("/courses")
	{
		courses.GET("", catalog.ListCourses)
		courses.POST("", catalog.CreateCourse)
		courses.GET("/:id", catalog.GetCourse)
		courses.PATCH("/:id", catalog.UpdateCourse)
		courses.PUT("/:id", catalog.UpdateCourse)
		courses.DELETE("/:id", catalog.DeleteCourse)
	}

	students := router.Group("/students")
	{
		students.GET("", catalog.ListStudents)
		students.POST("", catalog.CreateStudent)
		students.GET("/:id", catalog.GetStudent)
		students.PATCH("/:id", catalog.UpdateStudent)
		students.PUT("/:id", catalog.UpdateStudent)
		students.DELETE("/:id", catalog.DeleteStudent)
	}

	topics := router.Group("/training-topics")
	{
		topics.GET("", catalog.ListTopics)
		topics.POST("", catalog.CreateTopic)
		topics.GET("/:id", catalog.GetTopic)
		topics.PATCH("/:id", catalog.UpdateTopic)
		topics.PUT("/:id", catalog.UpdateTopic)
		topics.DELETE("/:id", catalog.DeleteTopic)
	}

	quizzes := router.Group("/quizzes")
	{
		quizzes.GET("", assessment.ListQuizzes)
		quizzes.POST("", assessment.CreateQuiz)
		quizzes.GET("/:id", assessment.GetQuiz)
		quizzes.PATCH("/:id", assessment.UpdateQuiz)
		quizzes.PUT("/:id", assessment.UpdateQuiz)
		quizzes.DELETE("/:id", assessment.DeleteQuiz)
		quizzes.POST("/:id/attempts", assessment.StartAttempt)
	}

	attempts := router.Group("/quiz-attempts")
	{
		attempts.GET("", assessment.ListAttempts)
		attempts.GET("/:id", assessment.GetAttempt)
		attempts.POST("/:id/submit", assessment.SubmitAttempt)
		attempts.PATCH("/:id", assessment.UpdateAttempt)
		attempts.PUT("/:id", assessment.UpdateAttempt)
		attempts.DELETE("/:id", assessment.DeleteAttempt)
	}

	tokens := router.Group("/test-tokens")
	{
		tokens.GET("", assessment.ListTokens)
		tokens.POST("", assessment.IssueToken)
		tokens.POST("/validate", assessment.ValidateToken)
		tokens.GET("/:id", assessment.GetToken)
		tokens.PATCH("/:id", assessment.UpdateToken)
		tokens.PUT("/:id", assessment.UpdateToken)
		tokens.DELETE("/:id", assessment.DeleteToken)
	}

	submissions := router.Group("/test-submissions")
	{
		submissions.GET("", assessment.ListSubmissions)
		submissions.POST("", assessment.CreateSubmission)
		submissions.GET("/:id", assessment.GetSubmission)
		submissions.PATCH("/:id", assessment.UpdateSubmission)
		submissions.PUT("/:id", assessment.UpdateSubmission)
		submissions.DELETE("/:id", assessment.DeleteSubmission)
	}

	auth := router.Group("/auth")
	{
		auth.POST("/verify", identity.Verify)
		auth.GET("/session", identity.Session)
	}

	router.GET("/airline/pilots/:pilotId", identity.Pilot)
	router.POST("/notifications", identity.Notify)

	return router
}

// healthCheck pings the database
func healthCheck(services *service.Services, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := contextWithTimeout(c, cfg.Server.RequestTimeout)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := services.Stats.Health(ctx); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"success":   code == http.StatusOK,
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "training-management-api",
		})
	}
}

// statsHandler returns dashboard counts
func statsHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := contextWithTimeout(c, cfg.Server.RequestTimeout)
		defer cancel()

		stats, err := services.Stats.Dashboard(ctx)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"stats": stats})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("request_id", c.GetString("request_id")).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware tags each request with an id and logs it
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", requestID).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}
