package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	Error   string                 `json:"error"`             // error code for client-side mapping
	Message string                 `json:"message"`           // human readable message
	Details map[string]interface{} `json:"details,omitempty"` // optional structured detail (e.g. expiry timestamps)
}

// RespondWithError writes a structured error response
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// RespondWithErrorDetails writes a structured error response with extra detail.
// Used for token expiry, where the contract includes the exact timestamps.
func RespondWithErrorDetails(c *gin.Context, statusCode int, errorCode string, message string, details map[string]interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	})
}

// Shorthand helpers for common responses

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "An internal error occurred, please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}
