package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/http/middleware"
	"railbook/internal/utils"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, string(domain.CodeValidation), "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, string(domain.CodeValidation), "invalid payload", err.Error())
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, string(domain.CodeValidation), "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func parsePositiveQuery(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(c.Query(key)), 10, 64)
	if err != nil || v <= 0 {
		respondError(c, http.StatusBadRequest, string(domain.CodeValidation), key+" must be a positive number", nil)
		return 0, false
	}
	return v, true
}

func parseDate(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.ValidationError{Field: field, Msg: "is required (YYYY-MM-DD)"}
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, domain.ValidationError{Field: field, Msg: "must be YYYY-MM-DD", Err: err}
	}
	return d, nil
}

func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	d, err := parseDate(c.Query(key), key)
	if err != nil {
		RespondDomainError(c, err)
		return time.Time{}, false
	}
	return d, true
}

func parseClass(raw, field string) (models.SeatClass, error) {
	cls, err := models.ParseSeatClass(raw)
	if err != nil {
		return 0, domain.ValidationError{Field: field, Msg: "must be one of SLEEPER, AC2, AC1", Err: err}
	}
	return cls, nil
}

func parseClassQuery(c *gin.Context, key string) (models.SeatClass, bool) {
	cls, err := parseClass(c.Query(key), key)
	if err != nil {
		RespondDomainError(c, err)
		return 0, false
	}
	return cls, true
}

// ensureSelfOrAdmin lets callers read only their own records unless admin.
func ensureSelfOrAdmin(c *gin.Context, emails ...string) bool {
	caller := middleware.CallerFrom(c)
	if caller.IsAdmin() {
		return true
	}
	for _, e := range emails {
		if e != "" && utils.NormalizeEmail(e) == caller.Email {
			return true
		}
	}
	respondError(c, http.StatusForbidden, "FORBIDDEN", "not allowed to access this resource", nil)
	return false
}
