package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateEntry indicates a unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrDocumentNotFound indicates the document was not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrFileNotFound indicates the stored file was not found
	ErrFileNotFound = errors.New("file not found")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")

	// Upload mapping errors. All of them are configuration or programmer
	// errors: the resolution call that hits them fails immediately.

	// ErrNotUploadable indicates the class carries no uploadable fields
	ErrNotUploadable = errors.New("class is not uploadable")

	// ErrUnknownMapping indicates a field references a mapping missing from the configuration
	ErrUnknownMapping = errors.New("unknown upload mapping")

	// ErrInvalidNamer indicates a configured namer service does not implement the namer capability
	ErrInvalidNamer = errors.New("invalid namer service")

	// ErrServiceNotFound indicates the service locator has no service with the requested id
	ErrServiceNotFound = errors.New("service not found")

	// ErrInvalidMetadata indicates malformed upload struct tags
	ErrInvalidMetadata = errors.New("invalid upload metadata")

	// ErrInvalidMappingConfig indicates a malformed upload mapping configuration
	ErrInvalidMappingConfig = errors.New("invalid upload mapping configuration")
)

// Error codes for API responses
const (
	CodeNotFound       = "NOT_FOUND"
	CodeDuplicateEntry = "DUPLICATE_ENTRY"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeNotUploadable  = "NOT_UPLOADABLE"
	CodeUnknownMapping = "UNKNOWN_MAPPING"
	CodeInvalidNamer   = "INVALID_NAMER"
	CodeInternalError  = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrFileNotFound)
}

// IsDuplicateEntry checks if the error is a duplicate entry error
func IsDuplicateEntry(err error) bool {
	return errors.Is(err, ErrDuplicateEntry)
}

// IsInvalidInput checks if the error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsMappingError reports whether err comes from upload mapping resolution
func IsMappingError(err error) bool {
	return errors.Is(err, ErrNotUploadable) ||
		errors.Is(err, ErrUnknownMapping) ||
		errors.Is(err, ErrInvalidNamer) ||
		errors.Is(err, ErrServiceNotFound)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}

	switch {
	case IsNotFound(err):
		return CodeNotFound
	case IsDuplicateEntry(err):
		return CodeDuplicateEntry
	case IsInvalidInput(err):
		return CodeInvalidInput
	case errors.Is(err, ErrNotUploadable):
		return CodeNotUploadable
	case errors.Is(err, ErrUnknownMapping):
		return CodeUnknownMapping
	case errors.Is(err, ErrInvalidNamer):
		return CodeInvalidNamer
	default:
		return CodeInternalError
	}
}
