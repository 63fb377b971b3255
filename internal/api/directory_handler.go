package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/service"
)

// DirectoryHandler handles staff, trainer, examiner and inactivation endpoints
type DirectoryHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "directory").Logger(),
	}
}

// Staff

// ListStaff handles GET /staff
func (h *DirectoryHandler) ListStaff(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	staff, err := h.services.Staff.List(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"staff": staff})
}

// GetStaff handles GET /staff/:id
func (h *DirectoryHandler) GetStaff(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	member, err := h.services.Staff.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"staffMember": member})
}

// CreateStaff handles POST /staff
func (h *DirectoryHandler) CreateStaff(c *gin.Context) {
	var req models.CreateStaffRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	member, err := h.services.Staff.Create(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"staffMember": member})
}

// UpdateStaff handles PATCH|PUT /staff/:id
func (h *DirectoryHandler) UpdateStaff(c *gin.Context) {
	var req models.UpdateStaffRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	member, err := h.services.Staff.Update(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"staffMember": member})
}

// DeleteStaff handles DELETE /staff/:id
func (h *DirectoryHandler) DeleteStaff(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Staff.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Staff member deleted"})
}

// Roles handles GET /staff/roles
func (h *DirectoryHandler) Roles(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"roles": h.services.Staff.Roles()})
}

// Trainers and examiners share one set of handlers parameterized by kind

func pluralKey(kind models.InstructorKind) string {
	return string(kind) + "s"
}

func label(kind models.InstructorKind) string {
	if kind == models.KindExaminer {
		return "Examiner"
	}
	return "Trainer"
}

func (h *DirectoryHandler) listInstructors(c *gin.Context, kind models.InstructorKind) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	instructors, err := h.services.Instructors.List(ctx, kind)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{pluralKey(kind): instructors})
}

func (h *DirectoryHandler) getInstructor(c *gin.Context, kind models.InstructorKind) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	instructor, err := h.services.Instructors.Get(ctx, kind, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{string(kind): instructor})
}

func (h *DirectoryHandler) createInstructor(c *gin.Context, kind models.InstructorKind) {
	var req models.CreateInstructorRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	instructor, err := h.services.Instructors.Create(ctx, kind, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{string(kind): instructor})
}

func (h *DirectoryHandler) updateInstructor(c *gin.Context, kind models.InstructorKind) {
	var req models.UpdateInstructorRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	instructor, err := h.services.Instructors.Update(ctx, kind, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{string(kind): instructor})
}

func (h *DirectoryHandler) deleteInstructor(c *gin.Context, kind models.InstructorKind) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Instructors.Delete(ctx, kind, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": label(kind) + " deleted"})
}

func (h *DirectoryHandler) ListTrainers(c *gin.Context)   { h.listInstructors(c, models.KindTrainer) }
func (h *DirectoryHandler) GetTrainer(c *gin.Context)     { h.getInstructor(c, models.KindTrainer) }
func (h *DirectoryHandler) CreateTrainer(c *gin.Context)  { h.createInstructor(c, models.KindTrainer) }
func (h *DirectoryHandler) UpdateTrainer(c *gin.Context)  { h.updateInstructor(c, models.KindTrainer) }
func (h *DirectoryHandler) DeleteTrainer(c *gin.Context)  { h.deleteInstructor(c, models.KindTrainer) }
func (h *DirectoryHandler) ListExaminers(c *gin.Context)  { h.listInstructors(c, models.KindExaminer) }
func (h *DirectoryHandler) GetExaminer(c *gin.Context)    { h.getInstructor(c, models.KindExaminer) }
func (h *DirectoryHandler) CreateExaminer(c *gin.Context) { h.createInstructor(c, models.KindExaminer) }
func (h *DirectoryHandler) UpdateExaminer(c *gin.Context) { h.updateInstructor(c, models.KindExaminer) }
func (h *DirectoryHandler) DeleteExaminer(c *gin.Context) { h.deleteInstructor(c, models.KindExaminer) }

// RecountTrainer handles POST /trainers/:id/recount
func (h *DirectoryHandler) RecountTrainer(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	trainer, err := h.services.Instructors.Recount(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"trainer": trainer})
}

// Inactivation requests

// ListInactivation handles GET /inactivation-requests?status=
func (h *DirectoryHandler) ListInactivation(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	requests, err := h.services.Inactivation.List(ctx, models.InactivationStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"requests": requests})
}

// GetInactivation handles GET /inactivation-requests/:id
func (h *DirectoryHandler) GetInactivation(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	ir, err := h.services.Inactivation.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": ir})
}

// CreateInactivation handles POST /inactivation-requests
func (h *DirectoryHandler) CreateInactivation(c *gin.Context) {
	var req models.CreateInactivationRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	ir, err := h.services.Inactivation.Create(ctx, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": ir})
}

// ReviewInactivation handles PATCH /inactivation-requests/:id/review
func (h *DirectoryHandler) ReviewInactivation(c *gin.Context) {
	var req models.ReviewInactivationRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	ir, err := h.services.Inactivation.Review(ctx, c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"request": ir})
}

// DeleteInactivation handles DELETE /inactivation-requests/:id
func (h *DirectoryHandler) DeleteInactivation(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Inactivation.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Inactivation request deleted"})
}
