package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Engine error codes. Handlers translate these into HTTP statuses; callers
// inside the engine branch on them with errors.As.
const (
	CodeValidation = "validation"
	CodeConflict   = "conflict"
	CodeNotFound   = "not_found"
	CodeTransient  = "transient"
)

// EngineError is the typed error crossing the engine boundary.
type EngineError struct {
	Code    string
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *EngineError) Unwrap() error { return e.Err }

func ValidationError(msg string) error {
	return &EngineError{Code: CodeValidation, Message: msg}
}

func ConflictError(msg string) error {
	return &EngineError{Code: CodeConflict, Message: msg}
}

func NotFoundError(msg string) error {
	return &EngineError{Code: CodeNotFound, Message: msg}
}

func TransientError(msg string, err error) error {
	return &EngineError{Code: CodeTransient, Message: msg, Err: err}
}

// ErrorCode extracts the engine code from err, or empty if it is not an
// EngineError.
func ErrorCode(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// JSONEngineError maps an engine error onto an HTTP response.
func JSONEngineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch ErrorCode(err) {
	case CodeValidation:
		status = http.StatusBadRequest
	case CodeConflict:
		status = http.StatusConflict
	case CodeNotFound:
		status = http.StatusNotFound
	case CodeTransient:
		status = http.StatusServiceUnavailable
	}
	JSONError(c, status, http.StatusText(status), err.Error())
}
