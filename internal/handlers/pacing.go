package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetPacing - GET /api/pacing
// Advisory guest load per arrival slot for one shift and date.
func (h *Handlers) GetPacing(c *gin.Context) {
	locationID, date, ok := locationAndDate(c)
	if !ok {
		return
	}

	shiftID, err := strconv.ParseInt(c.Query("shift_id"), 10, 64)
	if err != nil || shiftID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shift_id is required"})
		return
	}

	// ticket_id is optional; without it the default limit applies
	ticketID, _ := strconv.ParseInt(c.Query("ticket_id"), 10, 64)

	slots, err := h.services.Pacing.Slots(c.Request.Context(), locationID, date, shiftID, ticketID)
	if err != nil {
		slog.Error("Failed to compute pacing", "error", err, "shift_id", shiftID)
		respondError(c, err, "Failed to compute pacing")
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}
