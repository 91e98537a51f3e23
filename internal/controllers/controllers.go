// Package controllers is the thin gin layer over the services.
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleet_tracker/internal/apperr"
	"fleet_tracker/internal/middleware"
	"fleet_tracker/internal/models"
	"fleet_tracker/internal/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status of its kind. Server errors are logged
// and their detail kept out of the response.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed.")
		msg = http.StatusText(status)
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// receiver is the notification inbox of the caller: "admin" for admins, else the username.
func receiver(c *gin.Context) string {
	if middleware.IsAdmin(c) {
		return models.ReceiverAdmin
	}
	return middleware.Username(c)
}

// owner scopes single-notification actions: empty for admins, who reach every
// inbox, otherwise the caller's username.
func owner(c *gin.Context) string {
	if middleware.IsAdmin(c) {
		return ""
	}
	return middleware.Username(c)
}
