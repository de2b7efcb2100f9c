package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/trains/:id
func (h Handler) GetTrain(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	t, err := h.Trains.GetTrain(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
