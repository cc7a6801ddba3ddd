package handlers

import (
	"errors"
	"net/http"

	"estatelist/backend/internal/listing"
	"estatelist/backend/internal/storage"
	applog "estatelist/backend/pkg/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError maps a workflow error onto one HTTP status.
// Storage-layer failures carry their detail to the client; anything
// unclassified is logged server-side and returned as a generic 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, listing.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, listing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
	case errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, storage.ErrProviderRejected),
		errors.Is(err, storage.ErrProviderUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		applog.L.Error("Unexpected error handling request",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
