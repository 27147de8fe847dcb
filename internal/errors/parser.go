package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a message safe to show users.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError converts a lower-layer error into a code and a user-facing
// message, hiding anything sensitive. context names the resource being
// handled, e.g. "product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		msg := "The requested resource could not be found"
		if context != "" {
			msg = "The requested " + context + " could not be found"
		}
		return ErrorInfo{Code: ResourceNotFound, Message: msg}
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "An external service could not be reached. Please try again later.",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: "Something went wrong. Please try again later."}
}
