package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/models"
	"github.com/training-management-api/internal/service"
	"github.com/training-management-api/internal/validation"
)

// IdentityHandler handles identity verification, pilot lookup and notifications.
// The auth endpoints answer with an {ok: ...} envelope instead of {success: ...}.
type IdentityHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewIdentityHandler creates a new IdentityHandler
func NewIdentityHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *IdentityHandler {
	return &IdentityHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "identity").Logger(),
	}
}

// Verify handles POST /auth/verify
func (h *IdentityHandler) Verify(c *gin.Context) {
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": validation.Message(err)})
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	v, err := h.services.Identity.Verify(ctx, req.APIKey)
	if err != nil {
		status, message := errorStatus(c, h.log, err)
		c.JSON(status, gin.H{"ok": false, "error": message})
		return
	}

	body := gin.H{"ok": true, "user": v.User}
	if v.SessionToken != "" {
		body["sessionToken"] = v.SessionToken
	}
	c.JSON(http.StatusOK, body)
}

// Session handles GET /auth/session with a bearer session token
func (h *IdentityHandler) Session(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == header {
		token = ""
	}

	claims, err := h.services.Identity.Session(token)
	if err != nil {
		status, message := errorStatus(c, h.log, err)
		c.JSON(status, gin.H{"ok": false, "error": message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "session": claims})
}

// Pilot handles GET /airline/pilots/:pilotId
func (h *IdentityHandler) Pilot(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	pilot, err := h.services.Identity.Pilot(ctx, c.Param("pilotId"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"pilot": pilot})
}

// Notify handles POST /notifications
func (h *IdentityHandler) Notify(c *gin.Context) {
	var req models.NotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx, cancel := contextWithTimeout(c, h.cfg.Server.RequestTimeout)
	defer cancel()

	if err := h.services.Notifications.Send(ctx, &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Notification sent"})
}
