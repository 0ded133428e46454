package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce/internal/repository"
	"workforce/internal/service"
)

func statusFor(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrTimestampNotFound),
		errors.Is(err, repository.ErrPictureNotFound),
		errors.Is(err, repository.ErrLetterNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountUnverified):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondError writes err with the status its kind maps to. The message is passed through as is.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
