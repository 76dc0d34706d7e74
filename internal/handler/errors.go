package handler

import (
	"errors"
	"net/http"

	"github.com/fieldworks/workorder-service/internal/errs"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to HTTP status codes. Anything unrecognized
// is an internal error and keeps its detail out of the response.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrWorkOrderNotFound),
		errors.Is(err, errs.ErrMaterialNotFound),
		errors.Is(err, errs.ErrSignatureNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrDuplicateSignature), errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNumberGeneration):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
