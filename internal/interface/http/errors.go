package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/pkg/response"
)

// statusFor maps service errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, userapp.ErrDuplicateEmail),
		errors.Is(err, userapp.ErrAlreadyActive):
		return http.StatusConflict
	case errors.Is(err, userapp.ErrInvalidIDFormat),
		errors.Is(err, userapp.ErrInvalidQuery),
		errors.Is(err, userapp.ErrInvalidActivationCode),
		errors.Is(err, userapp.ErrActivationCodeExpired):
		return http.StatusBadRequest
	case errors.Is(err, userapp.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, userapp.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, userapp.ErrAccountInactive):
		return http.StatusForbidden
	case errors.Is(err, userapp.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		response.Error[any](c, status, "internal server error", nil)
		return
	}
	response.Error[any](c, status, err.Error(), nil)
}
