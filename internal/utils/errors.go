package utils

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrorCodeUpstreamFetchFailed ErrorCode = "UPSTREAM_FETCH_FAILED"
	ErrorCodeStreamFailed        ErrorCode = "STREAM_FAILED"
	ErrorCodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// Client-facing messages. Causes never leave the server.
const (
	MessageInvalidVideoURL     = "Invalid video URL"
	MessageFetchDetailsFailed  = "Failed to fetch video details"
	MessageDownloadFailed      = "Failed to download video"
	MessageUnexpectedCondition = "An unexpected error occurred"
)

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewError(code ErrorCode, message string, statusCode int, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// Common error constructors
func NewInvalidVideoURLError(link string) *AppError {
	return NewInvalidInputError(fmt.Errorf("unrecognized video url %q", link))
}

// NewInvalidInputError reports a request the service cannot act on, a malformed body included.
// Clients always see the invalid URL message.
func NewInvalidInputError(cause error) *AppError {
	return NewError(
		ErrorCodeInvalidInput,
		MessageInvalidVideoURL,
		http.StatusBadRequest,
		cause,
	)
}

func NewFetchDetailsError(err error) *AppError {
	return NewError(ErrorCodeUpstreamFetchFailed, MessageFetchDetailsFailed, http.StatusInternalServerError, err)
}

func NewStreamError(err error) *AppError {
	return NewError(ErrorCodeStreamFailed, MessageDownloadFailed, http.StatusInternalServerError, err)
}

func NewInternalError() *AppError {
	return NewError(ErrorCodeInternalError, MessageUnexpectedCondition, http.StatusInternalServerError, nil)
}
