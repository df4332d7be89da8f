package api

import (
	"errors"
	"net/http"

	"bistrobook/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps the domain error kinds onto HTTP statuses. Unexpected
// errors are logged and reported generically so internals do not leak.
func respondError(c *gin.Context, log *logrus.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrFailedPrecondition):
		// Data-integrity fault: a server problem, but the message is safe.
		status = http.StatusInternalServerError
	default:
		log.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
