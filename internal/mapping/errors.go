package mapping

import (
	"fmt"

	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
)

// NotUploadableError is returned when a class has no uploadable fields
type NotUploadableError struct {
	ClassName string
}

func (e *NotUploadableError) Error() string {
	return fmt.Sprintf("the object of class %q is not uploadable", e.ClassName)
}

// Unwrap returns apperrors.ErrNotUploadable
func (e *NotUploadableError) Unwrap() error {
	return apperrors.ErrNotUploadable
}

// UnknownMappingError is returned when a field references a mapping name
// that is absent from the configuration
type UnknownMappingError struct {
	Mapping   string
	ClassName string
}

func (e *UnknownMappingError) Error() string {
	return fmt.Sprintf("no upload mapping named %q configured (used by %s)", e.Mapping, e.ClassName)
}

// Unwrap returns apperrors.ErrUnknownMapping
func (e *UnknownMappingError) Unwrap() error {
	return apperrors.ErrUnknownMapping
}
