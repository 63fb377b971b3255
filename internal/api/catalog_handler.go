package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/service"
)

// CatalogHandler handles course, student and training topic endpoints
type CatalogHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "catalog").Logger(),
	}
}

// ListCourses handles GET /courses
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	courses, err := h.services.Catalog.ListCourses(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"courses": courses})
}

// GetCourse handles GET /courses/:id
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	course, err := h.services.Catalog.GetCourse(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse handles POST /courses
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req models.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	course, err := h.services.Catalog.CreateCourse(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"course": course})
}

// UpdateCourse handles PATCH|PUT /courses/:id
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	var req models.UpdateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	course, err := h.services.Catalog.UpdateCourse(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse handles DELETE /courses/:id
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Catalog.DeleteCourse(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Course deleted"})
}

// ListStudents handles GET /students?courseId=
func (h *CatalogHandler) ListStudents(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	students, err := h.services.Catalog.ListStudents(ctx, c.Query("courseId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"students": students})
}

// GetStudent handles GET /students/:id
func (h *CatalogHandler) GetStudent(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	student, err := h.services.Catalog.GetStudent(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"student": student})
}

// CreateStudent handles POST /students
func (h *CatalogHandler) CreateStudent(c *gin.Context) {
	var req models.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	student, err := h.services.Catalog.CreateStudent(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"student": student})
}

// UpdateStudent handles PATCH|PUT /students/:id
func (h *CatalogHandler) UpdateStudent(c *gin.Context) {
	var req models.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	student, err := h.services.Catalog.UpdateStudent(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"student": student})
}

// DeleteStudent handles DELETE /students/:id
func (h *CatalogHandler) DeleteStudent(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Catalog.DeleteStudent(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Student deleted"})
}

// ListTopics handles GET /training-topics
func (h *CatalogHandler) ListTopics(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	topics, err := h.services.Catalog.ListTopics(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"topics": topics})
}

// GetTopic handles GET /training-topics/:id
func (h *CatalogHandler) GetTopic(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	topic, err := h.services.Catalog.GetTopic(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"topic": topic})
}

// CreateTopic handles POST /training-topics
func (h *CatalogHandler) CreateTopic(c *gin.Context) {
	var req models.CreateTopicRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	topic, err := h.services.Catalog.CreateTopic(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"topic": topic})
}

// UpdateTopic handles PATCH|PUT /training-topics/:id
func (h *CatalogHandler) UpdateTopic(c *gin.Context) {
	var req models.UpdateTopicRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	topic, err := h.services.Catalog.UpdateTopic(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"topic": topic})
}

// DeleteTopic handles DELETE /training-topics/:id
func (h *CatalogHandler) DeleteTopic(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Catalog.DeleteTopic(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Training topic deleted"})
}
