package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/service"
	"github.com/training-management-api/internal/validation"
)

var statusByKind = map[service.ErrorKind]int{
	service.ErrValidation:   http.StatusBadRequest,
	service.ErrNotFound:     http.StatusNotFound,
	service.ErrConflict:     http.StatusConflict,
	service.ErrUnauthorized: http.StatusUnauthorized,
	service.ErrTokenExpired: http.StatusGone,
	service.ErrUnavailable:  http.StatusServiceUnavailable,
	service.ErrUpstream:     http.StatusInternalServerError,
}

// respond writes the success envelope
func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// errorStatus maps a service error to a status and client message.
// Unexpected errors are logged and hidden behind a generic message.
func errorStatus(c *gin.Context, log zerolog.Logger, err error) (int, string) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status, ok := statusByKind[svcErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if status >= 500 {
			log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("Request failed")
		}
		return status, svcErr.Message
	}

	log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("Unexpected error")
	return http.StatusInternalServerError, "Internal server error"
}

// respondError writes the failure envelope
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status, message := errorStatus(c, log, err)
	c.JSON(status, gin.H{"success": false, "error": message})
}

// bindJSON binds and validates the body, answering 400 on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validation.Message(err)})
		return false
	}
	return true
}
