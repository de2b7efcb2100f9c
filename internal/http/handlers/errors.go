package handlers

import (
	"errors"
	"log"
	"net/http"

	"railbook/internal/domain"
	"railbook/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	code := string(domain.CodeOf(err))
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, code, err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, code, err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, code, err.Error(), nil)
	case domain.IsCapacity(err):
		var capErr domain.CapacityError
		errors.As(err, &capErr)
		respondError(c, http.StatusUnprocessableEntity, code, err.Error(), gin.H{"remaining": capErr.Remaining})
	case domain.IsUpstream(err):
		respondError(c, http.StatusBadGateway, code, err.Error(), nil)
	default:
		log.Printf("[ERROR] request_id=%s path=%s err=%v", middleware.GetRequestID(c), c.Request.URL.Path, err)
		respondError(c, http.StatusInternalServerError, string(domain.CodeInternal), "internal server error", nil)
	}
}
