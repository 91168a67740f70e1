package ui

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"datalens/domain/core"
	apperrors "datalens/internal/errors"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateID):
		return http.StatusConflict
	case core.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return apperrors.HTTPStatus(err)
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// queryInt reads an integer query parameter, falling back when absent or malformed.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
