package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "maitred/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err, "Something failed")
	return w
}

func TestRespondErrorValidation(t *testing.T) {
	w := recordError(apperrors.Validationf("party_size must be positive"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "party_size")
}

func TestRespondErrorInvalidTransition(t *testing.T) {
	w := recordError(fmt.Errorf("%w: completed -> seated", apperrors.ErrInvalidTransition))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRespondErrorUnauthorizedOverride(t *testing.T) {
	w := recordError(fmt.Errorf("%w: override requires manager role", apperrors.ErrUnauthorized))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRespondErrorNotFound(t *testing.T) {
	w := recordError(fmt.Errorf("%w: reservation 42", apperrors.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondErrorTableConflict(t *testing.T) {
	conflict := &apperrors.TableConflictError{
		TableID:       7,
		ReservationID: 42,
		StartTime:     "19:00",
		EndTime:       "21:00",
	}
	w := recordError(fmt.Errorf("assignment rejected: %w", conflict))
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["table_id"])
	assert.Equal(t, float64(42), body["reservation_id"])
	assert.Equal(t, "19:00", body["start_time"])
	assert.Equal(t, "21:00", body["end_time"])
}

func TestRespondErrorUnknownIsInternal(t *testing.T) {
	w := recordError(fmt.Errorf("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something failed")
}
