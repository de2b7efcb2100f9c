package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "railbook is running"})
}

// DBCheck reports database reachability and missing tables.
func (h Handler) DBCheck(c *gin.Context) {
	if h.Schema == nil {
		respondError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database not connected", nil)
		return
	}
	missing, err := h.Schema(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "database query failed", err.Error())
		return
	}
	if len(missing) > 0 {
		respondError(c, http.StatusServiceUnavailable, "SCHEMA_INCOMPLETE", "database schema incomplete", gin.H{"missing_tables": missing})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database OK"})
}
