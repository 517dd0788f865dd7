package handlers

import (
	"errors"
	"net/http"

	"maitred/internal/cache"
	apperrors "maitred/internal/errors"
	"maitred/internal/service"
	"maitred/internal/timegrid"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
	grid         timegrid.Config
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient, grid timegrid.Config) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
		grid:         grid,
	}
}

// respondError maps domain errors onto HTTP statuses. A table conflict and a
// forbidden status transition are both client-resolvable, so they return 409
// with enough detail to retry; everything unrecognized stays a 500 with a
// generic message.
func respondError(c *gin.Context, err error, fallback string) {
	var conflict *apperrors.TableConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":          "Table conflict",
			"table_id":       conflict.TableID,
			"reservation_id": conflict.ReservationID,
			"start_time":     conflict.StartTime,
			"end_time":       conflict.EndTime,
		})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
