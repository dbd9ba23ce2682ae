package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a client-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts storage-layer errors into a code and a message safe to
// return to clients. Sensitive detail stays in the logs.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "An internal error occurred"}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// Postgres unique constraint violation (23505)
	if strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "unique constraint") ||
		strings.Contains(errStr, "unique failed") {
		return parseDuplicateKeyError(errStr)
	}

	// Postgres foreign key constraint violation (23503)
	if strings.Contains(errStr, "foreign key constraint") {
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record does not exist"}
	}

	// Connectivity problems surface as a generic server error
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "Storage is temporarily unavailable, please try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "An internal error occurred, please try again later"}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	if strings.Contains(errStr, "email") {
		return ErrorInfo{Code: AuthEmailExists, Message: "An account with this email already exists"}
	}
	if strings.Contains(errStr, "username") {
		return ErrorInfo{Code: AuthUsernameExists, Message: "This username is already taken"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "A record with these values already exists"}
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "project") {
		return "Project not found"
	}
	if strings.Contains(contextLower, "task") {
		return "Task not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}
	return "Requested record not found"
}

// ParseAndRespond parses err and writes the resulting error response
func ParseAndRespond(c *gin.Context, statusCode int, err error, context string) {
	info := ParseError(err, context)
	if statusCode == http.StatusInternalServerError && info.Code == ResourceNotFound {
		statusCode = http.StatusNotFound
	}
	RespondWithError(c, statusCode, info.Code, info.Message)
}
