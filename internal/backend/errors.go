package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a 2xx body does not match the
// expected schema.
var ErrMalformedResponse = errors.New("malformed backend response")

const unreadableErrorMessage = "An error occurred"

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// newAPIError keeps the server's "message" verbatim. A body that is not JSON
// yields a generic text, a JSON body without a message the status line.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return &APIError{Status: status, Message: unreadableErrorMessage}
	}
	if payload.Message == "" {
		return &APIError{Status: status, Message: fmt.Sprintf("HTTP error! status: %d", status)}
	}
	return &APIError{Status: status, Message: payload.Message}
}

// ServerMessage returns the backend-provided message carried by err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
