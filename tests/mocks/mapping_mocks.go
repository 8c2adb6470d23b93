package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	"github.com/welldanyogia/webrana-uploadable/internal/metadata"
)

// MockMetadataReader implements metadata.Reader
type MockMetadataReader struct {
	mock.Mock
}

// IsUploadable reports whether the class is uploadable
func (m *MockMetadataReader) IsUploadable(className string) bool {
	args := m.Called(className)
	return args.Bool(0)
}

// UploadableFields returns the uploadable fields of a class
func (m *MockMetadataReader) UploadableFields(className string) []metadata.Field {
	args := m.Called(className)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]metadata.Field)
}

// UploadableField returns one uploadable field of a class
func (m *MockMetadataReader) UploadableField(className, field string) (*metadata.Field, bool) {
	args := m.Called(className, field)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*metadata.Field), args.Bool(1)
}

// MockContainer implements locator.Container
type MockContainer struct {
	mock.Mock
}

// Get resolves a service id
func (m *MockContainer) Get(id string) (any, error) {
	args := m.Called(id)
	return args.Get(0), args.Error(1)
}

// MockNamer implements mapping.Namer
type MockNamer struct {
	mock.Mock
}

// Name returns the stored filename
func (m *MockNamer) Name(obj any, pm *mapping.PropertyMapping) (string, error) {
	args := m.Called(obj, pm)
	return args.String(0), args.Error(1)
}

// MockDirectoryNamer implements mapping.DirectoryNamer
type MockDirectoryNamer struct {
	mock.Mock
}

// DirectoryName returns the storage subdirectory
func (m *MockDirectoryNamer) DirectoryName(obj any, pm *mapping.PropertyMapping) (string, error) {
	args := m.Called(obj, pm)
	return args.String(0), args.Error(1)
}
