// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Media decode/encode errors (1100-1199)
	CodeVideoDownload  = 1100
	CodeVideoDecode    = 1101
	CodeVideoEncode    = 1102
	CodeVideoMalformed = 1103
	CodeAudioMux       = 1104

	// Text detection errors (1200-1299)
	CodeDetectFailed  = 1200
	CodeDetectTimeout = 1201
	CodeOcrBackend    = 1202

	// Caption service errors (1300-1399)
	CodeCaptionFailed        = 1300
	CodeCaptionTimeout       = 1301
	CodeCaptionQuotaExceeded = 1302

	// Compositing errors (1400-1499)
	CodeOverlayFailed   = 1400
	CodeWatermarkFailed = 1401

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
	CodeObjectStore    = 1503

	// Selection errors (1600-1699)
	CodeNoAssetAvailable = 1600
	CodeEmptyCatalog     = 1601
	CodeLedgerConflict   = 1602
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")
	ErrUnauthorized  = New(CodeUnauthorized, "Unauthorized")

	// Media
	ErrVideoDownload  = New(CodeVideoDownload, "Video download failed")
	ErrVideoDecode    = New(CodeVideoDecode, "Video decode failed")
	ErrVideoEncode    = New(CodeVideoEncode, "Video encode failed")
	ErrVideoMalformed = New(CodeVideoMalformed, "Malformed video input")

	// Detection
	ErrDetectFailed  = New(CodeDetectFailed, "Text detection failed")
	ErrDetectTimeout = New(CodeDetectTimeout, "Text detection timeout")

	// Caption service
	ErrCaptionFailed  = New(CodeCaptionFailed, "Caption generation failed")
	ErrCaptionTimeout = New(CodeCaptionTimeout, "Caption service timeout")

	// Storage
	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")
	ErrObjectStore  = New(CodeObjectStore, "Object storage error")

	// Selection
	ErrNoAssetAvailable = New(CodeNoAssetAvailable, "No asset available")
	ErrEmptyCatalog     = New(CodeEmptyCatalog, "Catalog is empty")
)
