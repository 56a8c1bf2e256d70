package server

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/dj-collection-server/internal/collection"
	"github.com/jaki95/dj-collection-server/internal/instance"
	"github.com/jaki95/dj-collection-server/internal/storage"
)

// respondError maps engine errors onto HTTP statuses. Format errors carry
// enough detail to diagnose a corrupt upload; storage failures do not leak
// locator internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, collection.ErrValidation):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, collection.ErrFormat):
		c.JSON(422, gin.H{"error": err.Error()})
	case errors.Is(err, instance.ErrExpired):
		c.JSON(410, gin.H{"error": "collection expired, please re-upload"})
	case errors.Is(err, instance.ErrNoCollection), errors.Is(err, collection.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, instance.ErrLoad), errors.Is(err, storage.ErrStorage):
		c.JSON(502, gin.H{"error": "backing store unavailable, please retry"})
	default:
		c.JSON(500, gin.H{"error": "internal error"})
	}
}
