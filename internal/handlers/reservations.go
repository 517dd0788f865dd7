package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"maitred/internal/middleware"
	"maitred/internal/models"

	"github.com/gin-gonic/gin"
)

// Reservation handlers

// CreateReservation - POST /api/reservations
func (h *Handlers) CreateReservation(c *gin.Context) {
	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Reservations.Create(c.Request.Context(), &req, actorID(c))
	if err != nil {
		slog.Error("Failed to create reservation", "error", err)
		respondError(c, err, "Failed to create reservation")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListReservations - GET /api/reservations
func (h *Handlers) ListReservations(c *gin.Context) {
	locationID, date, ok := locationAndDate(c)
	if !ok {
		return
	}

	if query := c.Query("query"); query != "" {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
		if page < 1 || pageSize < 1 || pageSize > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
			return
		}
		docs, err := h.services.Reservations.Search(c.Request.Context(), locationID, query, date, page, pageSize)
		if err != nil {
			slog.Error("Failed to search reservations", "error", err)
			respondError(c, err, "Failed to search reservations")
			return
		}
		c.JSON(http.StatusOK, docs)
		return
	}

	response, err := h.services.Reservations.List(c.Request.Context(), locationID, date)
	if err != nil {
		slog.Error("Failed to list reservations", "error", err)
		respondError(c, err, "Failed to list reservations")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetTimeline - GET /api/reservations/timeline
// The day sheet: every reservation of the date with its grid coordinates.
func (h *Handlers) GetTimeline(c *gin.Context) {
	locationID, date, ok := locationAndDate(c)
	if !ok {
		return
	}

	response, err := h.services.Reservations.Timeline(c.Request.Context(), locationID, date, h.grid)
	if err != nil {
		slog.Error("Failed to build timeline", "error", err)
		respondError(c, err, "Failed to build timeline")
		return
	}

	c.JSON(http.StatusOK, response)
}

// TransitionStatus - PATCH /api/reservations/status
func (h *Handlers) TransitionStatus(c *gin.Context) {
	var req models.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := middleware.ActorFromContext(c.Request.Context())

	if err := h.services.Reservations.TransitionStatus(c.Request.Context(), &req, actor); err != nil {
		slog.Error("Failed to transition reservation status",
			"error", err,
			"reservation_id", req.ReservationID,
			"new_status", req.NewStatus)
		respondError(c, err, "Failed to transition status")
		return
	}

	c.Status(http.StatusOK)
}

// MoveTable - PATCH /api/reservations/move
// Manual moves always succeed; a detected conflict comes back as a warning.
func (h *Handlers) MoveTable(c *gin.Context) {
	var req models.MoveTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Reservations.MoveTable(c.Request.Context(), &req, actorID(c))
	if err != nil {
		slog.Error("Failed to move reservation", "error", err, "reservation_id", req.ReservationID)
		respondError(c, err, "Failed to move reservation")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetAuditLog - GET /api/reservations/:id/audit
func (h *Handlers) GetAuditLog(c *gin.Context) {
	reservationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	entries, err := h.services.Reservations.GetAuditLog(c.Request.Context(), reservationID)
	if err != nil {
		slog.Error("Failed to read audit log", "error", err, "reservation_id", reservationID)
		respondError(c, err, "Failed to read audit log")
		return
	}

	c.JSON(http.StatusOK, entries)
}

func actorID(c *gin.Context) *int64 {
	if actor, ok := middleware.ActorFromContext(c.Request.Context()); ok {
		return &actor.UserID
	}
	return nil
}

func locationAndDate(c *gin.Context) (int64, string, bool) {
	locationID, err := strconv.ParseInt(c.Query("location_id"), 10, 64)
	if err != nil || locationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id is required"})
		return 0, "", false
	}
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return 0, "", false
	}
	return locationID, date, true
}
