package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeFileTooLarge is used when an upload exceeds the size ceiling
	ErrCodeFileTooLarge = "ERR_FILE_TOO_LARGE"
	// ErrCodeUnsupportedType is used when an upload has a disallowed extension
	ErrCodeUnsupportedType = "ERR_UNSUPPORTED_TYPE"
)

// Print pipeline error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the job's state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInvalidCopies is used when the copy count is out of range
	ErrCodeInvalidCopies = "ERR_INVALID_COPIES"
	// ErrCodeInvalidPrinter is used when no target printer could be determined
	ErrCodeInvalidPrinter = "ERR_INVALID_PRINTER"
	// ErrCodeConversionFailed is used when PDF normalization fails
	ErrCodeConversionFailed = "ERR_CONVERSION_FAILED"
	// ErrCodeSpoolerUnavailable is used when the print spooler rejects or cannot be reached
	ErrCodeSpoolerUnavailable = "ERR_SPOOLER_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeFileTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedType: http.StatusBadRequest,

	// Print pipeline errors
	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeInvalidCopies:      http.StatusBadRequest,
	ErrCodeInvalidPrinter:     http.StatusBadRequest,
	ErrCodeConversionFailed:   http.StatusUnprocessableEntity,
	ErrCodeSpoolerUnavailable: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps short domain error codes to the wire format
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeAlreadyExists,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidState,
	"INVALID_COPIES":   ErrCodeInvalidCopies,
	"INVALID_PRINTER":  ErrCodeInvalidPrinter,
	"UNAUTHORIZED":     ErrCodeUnauthorized,
	"FORBIDDEN":        ErrCodeForbidden,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"INTERNAL_ERROR":   ErrCodeInternal,
	"UNSUPPORTED_TYPE": ErrCodeUnsupportedType,
	"FILE_TOO_LARGE":   ErrCodeFileTooLarge,
}

// NormalizeErrorCode converts a short domain error code to the wire format
// If the code is already in the wire format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
