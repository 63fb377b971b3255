package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/service"
)

// WorkflowHandler handles training request and training assignment endpoints
type WorkflowHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "workflow").Logger(),
	}
}

// ListRequests handles GET /training-requests?status=&trainerId=
func (h *WorkflowHandler) ListRequests(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	requests, err := h.services.Training.List(ctx, models.RequestFilter{
		Status:    models.RequestStatus(c.Query("status")),
		TrainerID: c.Query("trainerId"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requests": requests})
}

// GetRequest handles GET /training-requests/:id
func (h *WorkflowHandler) GetRequest(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	tr, err := h.services.Training.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": tr})
}

// CreateRequest handles POST /training-requests
func (h *WorkflowHandler) CreateRequest(c *gin.Context) {
	var req models.CreateTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	tr, err := h.services.Training.Create(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": tr})
}

// UpdateRequest handles PATCH|PUT /training-requests/:id
func (h *WorkflowHandler) UpdateRequest(c *gin.Context) {
	var req models.UpdateTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	tr, err := h.services.Training.Update(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": tr})
}

// DeleteRequest handles DELETE /training-requests/:id
func (h *WorkflowHandler) DeleteRequest(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Training.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Training request deleted"})
}

// Assign handles POST /training-requests/assign
func (h *WorkflowHandler) Assign(c *gin.Context) {
	var req models.AssignTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	tr, err := h.services.Training.Assign(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": tr})
}

// Pickup handles POST /training-requests/pickup
func (h *WorkflowHandler) Pickup(c *gin.Context) {
	var req models.AssignTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	tr, err := h.services.Training.Pickup(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": tr})
}

// Reassign handles POST /training-requests/reassign
func (h *WorkflowHandler) Reassign(c *gin.Context) {
	var req models.ReassignTrainingRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	tr, err := h.services.Training.Reassign(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": tr})
}

// ListAssignments handles GET /training-assignments
func (h *WorkflowHandler) ListAssignments(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	assignments, err := h.services.Assignments.List(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"assignments": assignments})
}

// GetAssignment handles GET /training-assignments/:id
func (h *WorkflowHandler) GetAssignment(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	a, err := h.services.Assignments.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"assignment": a})
}

// CreateAssignment handles POST /training-assignments
func (h *WorkflowHandler) CreateAssignment(c *gin.Context) {
	var req models.CreateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	a, err := h.services.Assignments.Create(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"assignment": a})
}

// UpdateAssignment handles PATCH|PUT /training-assignments/:id
func (h *WorkflowHandler) UpdateAssignment(c *gin.Context) {
	var req models.UpdateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	a, err := h.services.Assignments.Update(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"assignment": a})
}

// DeleteAssignment handles DELETE /training-assignments/:id
func (h *WorkflowHandler) DeleteAssignment(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Assignments.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Training assignment deleted"})
}
