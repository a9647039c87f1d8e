// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints. Success payloads follow the envelope the marketing frontend
// expects (a success flag plus payload fields); failures always go through
// fail(), which emits an ErrorResponse with a stable machine-readable code
// and logs 5xx responses with request context.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "success": false,
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "Lead nicht gefunden"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jalud/go-leads-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
// Message texts are German and safe to surface in the frontend; Code is the
// stable value clients branch on.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Lead nicht gefunden"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// logged using the request-scoped logger from middleware.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		Success:   false,
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), used by router-level handlers
// (NoRoute, NoMethod) to keep error envelopes consistent.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
