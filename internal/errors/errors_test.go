package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppError_CreatesErrorWithCorrectFields(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "custom message", CodeNotFound)

	assert.Equal(t, baseErr, appErr.Err)
	assert.Equal(t, "custom message", appErr.Message)
	assert.Equal(t, CodeNotFound, appErr.Code)
}

func TestAppError_Error_ReturnsMessage(t *testing.T) {
	appErr := NewAppError(errors.New("base error"), "custom message", CodeNotFound)

	assert.Equal(t, "custom message", appErr.Error())
}

func TestAppError_Error_ReturnsBaseErrorWhenNoMessage(t *testing.T) {
	appErr := NewAppError(errors.New("base error"), "", CodeNotFound)

	assert.Equal(t, "base error", appErr.Error())
}

func TestAppError_Unwrap_ReturnsWrappedError(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "custom message", CodeNotFound)

	assert.Equal(t, baseErr, appErr.Unwrap())
	assert.ErrorIs(t, appErr, baseErr)
}

func TestWrap_WrapsErrorWithContext(t *testing.T) {
	wrapped := Wrap(errors.New("base error"), "context")

	assert.Contains(t, wrapped.Error(), "context")
	assert.Contains(t, wrapped.Error(), "base error")
}

func TestWrap_ReturnsNilForNilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ErrNotFound", ErrNotFound, true},
		{"ErrDocumentNotFound", ErrDocumentNotFound, true},
		{"ErrFileNotFound", ErrFileNotFound, true},
		{"wrapped", fmt.Errorf("get: %w", ErrDocumentNotFound), true},
		{"ErrInvalidInput", ErrInvalidInput, false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestIsMappingError(t *testing.T) {
	assert.True(t, IsMappingError(fmt.Errorf("x: %w", ErrNotUploadable)))
	assert.True(t, IsMappingError(ErrUnknownMapping))
	assert.True(t, IsMappingError(ErrInvalidNamer))
	assert.True(t, IsMappingError(ErrServiceNotFound))
	assert.False(t, IsMappingError(ErrNotFound))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", ErrNotFound, CodeNotFound},
		{"document not found", ErrDocumentNotFound, CodeNotFound},
		{"duplicate", ErrDuplicateEntry, CodeDuplicateEntry},
		{"invalid input", ErrInvalidInput, CodeInvalidInput},
		{"not uploadable", fmt.Errorf("resolve: %w", ErrNotUploadable), CodeNotUploadable},
		{"unknown mapping", ErrUnknownMapping, CodeUnknownMapping},
		{"invalid namer", ErrInvalidNamer, CodeInvalidNamer},
		{"app error code wins", NewAppError(ErrInternal, "nope", CodeInvalidInput), CodeInvalidInput},
		{"unknown", errors.New("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(tt.err))
		})
	}
}
