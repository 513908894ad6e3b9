package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-checklist-backend/internal/store"
)

// abortStoreError maps the store's sentinel errors onto HTTP statuses;
// anything unrecognized is an infrastructure failure the caller may
// retry.
func abortStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, store.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Record already exists"})
	case errors.Is(err, store.ErrFrequencyMismatch),
		errors.Is(err, store.ErrInvalidStatus),
		errors.Is(err, store.ErrInvalidFrequency):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
