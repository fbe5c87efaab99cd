package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrIncompleteData is returned when a request body lacks a required field.
	ErrIncompleteData = errors.New("incomplete data")
	// ErrUsernameTaken is returned when another user already has the username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when another user already has the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrPostNotFound is returned when a post id does not resolve.
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a comment id does not resolve.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike, so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInvalidBody is returned when the request body is not valid JSON.
	ErrInvalidBody = errors.New("invalid request body")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Message: e.Message}
}

// MapErrorToHTTP maps domain errors, possibly wrapped, to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrIncompleteData),
		errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, domainMessage(err))
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrPostNotFound),
		errors.Is(err, ErrCommentNotFound):
		return NewHTTPError(http.StatusNotFound, domainMessage(err))
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// domainMessage returns the message of the sentinel wrapped in err, dropping
// any context added by callers.
func domainMessage(err error) string {
	for _, sentinel := range []error{
		ErrIncompleteData, ErrInvalidBody, ErrUsernameTaken, ErrEmailTaken,
		ErrInvalidCredentials, ErrUserNotFound, ErrPostNotFound, ErrCommentNotFound,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
