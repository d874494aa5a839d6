package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies user-facing intake failures.
type ErrorCode string

const (
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidRange     ErrorCode = "INVALID_RANGE"
	ErrCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	ErrCodeUploadFailed     ErrorCode = "UPLOAD_FAILED"
	ErrCodeDeleteFailed     ErrorCode = "DELETE_FAILED"
	ErrCodeSubmissionFailed ErrorCode = "SUBMISSION_FAILED"
	ErrCodeAuthFailed       ErrorCode = "AUTH_FAILED"
)

var (
	ErrScreenInvalid    = errors.New("current screen has validation errors")
	ErrNoSubmission     = errors.New("no submission has occurred in this session")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrDeleteInProgress = errors.New("file is already being deleted")
	ErrFileNotFound     = errors.New("file not found in draft")
	ErrWrongStep        = errors.New("action not available on the current step")
)

// IntakeError is a failure that is surfaced to the user as an inline message.
type IntakeError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *IntakeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s[%s]: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *IntakeError) Unwrap() error { return e.Err }

func NewUploadError(fileName string, err error) *IntakeError {
	return &IntakeError{
		Code:    ErrCodeUploadFailed,
		Message: fmt.Sprintf("Failed to upload %s: %s", fileName, err.Error()),
		Field:   fileName,
		Err:     err,
	}
}

func NewOversizeError(fileName string, limit int64) *IntakeError {
	return &IntakeError{
		Code:    ErrCodeUploadFailed,
		Message: fmt.Sprintf("File %s exceeds %dMB limit", fileName, limit/(1024*1024)),
		Field:   fileName,
	}
}

func NewDeleteError(fileName string, err error) *IntakeError {
	return &IntakeError{
		Code:    ErrCodeDeleteFailed,
		Message: fmt.Sprintf("Failed to delete %s: %s", fileName, err.Error()),
		Field:   fileName,
		Err:     err,
	}
}

const genericSubmissionMessage = "Failed to submit project. Please try again."

// NewSubmissionError keeps the server-provided message when there is one.
func NewSubmissionError(serverMessage string, err error) *IntakeError {
	msg := serverMessage
	if msg == "" {
		msg = genericSubmissionMessage
	}
	e := &IntakeError{Code: ErrCodeSubmissionFailed, Message: msg, Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

func NewAuthError(err error) *IntakeError {
	return &IntakeError{
		Code:    ErrCodeAuthFailed,
		Message: "Could not obtain an access token",
		Details: err.Error(),
		Err:     err,
	}
}
