package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"maitred/internal/middleware"
	"maitred/internal/models"

	"github.com/gin-gonic/gin"
)

// Assignment handlers

// PreviewAssignment - POST /api/assignments/preview
// Speculative: nothing is persisted and the round-robin cursor stays put.
func (h *Handlers) PreviewAssignment(c *gin.Context) {
	var req models.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.services.Assignments.Preview(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Failed to preview assignment", "error", err)
		respondError(c, err, "Failed to preview assignment")
		return
	}

	middleware.RecordAssignment("preview", result.Assigned)
	c.JSON(http.StatusOK, result)
}

// CommitAssignment - POST /api/assignments/commit
func (h *Handlers) CommitAssignment(c *gin.Context) {
	var req models.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.services.Assignments.Commit(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Failed to commit assignment", "error", err, "reservation_id", req.ReservationID)
		respondError(c, err, "Failed to commit assignment")
		return
	}

	middleware.RecordAssignment("commit", result.Assigned)
	c.JSON(http.StatusOK, result)
}

// CheckConflict - GET /api/conflicts/check
func (h *Handlers) CheckConflict(c *gin.Context) {
	locationID, date, ok := locationAndDate(c)
	if !ok {
		return
	}

	tableID, err := strconv.ParseInt(c.Query("table_id"), 10, 64)
	if err != nil || tableID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table_id is required"})
		return
	}

	startTime := c.Query("start_time")
	endTime := c.Query("end_time")
	if startTime == "" || endTime == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time and end_time are required"})
		return
	}

	var excludeID *int64
	if excludeParam := c.Query("exclude_reservation_id"); excludeParam != "" {
		if id, err := strconv.ParseInt(excludeParam, 10, 64); err == nil {
			excludeID = &id
		}
	}

	result, err := h.services.Assignments.CheckConflict(c.Request.Context(), locationID, tableID, date, startTime, endTime, excludeID)
	if err != nil {
		slog.Error("Failed to check conflict", "error", err, "table_id", tableID)
		respondError(c, err, "Failed to check conflict")
		return
	}

	c.JSON(http.StatusOK, result)
}
