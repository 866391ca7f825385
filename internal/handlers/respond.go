package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/consultly/consultly-backend/internal/models"
)

// respondError maps the typed service errors onto stable HTTP statuses and
// machine-readable codes. Unclassified errors never leak their internals.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var notFound *models.NotFoundError
	var validation *models.ValidationError
	var conflict *models.ConflictError
	var appErr *models.AppError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{
			"code":    "NOT_FOUND",
			"message": notFound.Error(),
		}})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    validation.Code,
			"message": validation.Message,
		}})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": gin.H{
			"code":    "CONFLICT",
			"message": conflict.Message,
		}})
	case errors.As(err, &appErr):
		logger.WithError(appErr.Err).WithField("code", appErr.Code).Error(appErr.Message)
		c.JSON(appErr.Status, gin.H{"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		}})
	default:
		logger.WithError(err).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    models.CodeInternalError,
			"message": "An unexpected error occurred",
		}})
	}
}
