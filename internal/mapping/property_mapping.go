package mapping

import (
	"fmt"
	"reflect"

	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/files"
)

// Namer computes the stored filename of an uploaded file
type Namer interface {
	Name(obj any, m *PropertyMapping) (string, error)
}

// DirectoryNamer computes the subdirectory a file is stored in
type DirectoryNamer interface {
	DirectoryName(obj any, m *PropertyMapping) (string, error)
}

// PropertyMapping is the resolved upload configuration of one
// uploadable property. It is built fresh for every resolution call.
type PropertyMapping struct {
	mappingName      string
	propertyName     string
	fileNameProperty string

	uploadDestination string
	uriPrefix         string
	namer             Namer
	directoryNamer    DirectoryNamer
	deleteOnRemove    bool
	deleteOnUpdate    bool
	injectOnLoad      bool
}

// NewPropertyMapping creates a mapping for property/fileNameProperty
// from a configuration record. Namers are left unset.
func NewPropertyMapping(name, property, fileNameProperty string, cfg Config) *PropertyMapping {
	return &PropertyMapping{
		mappingName:       name,
		propertyName:      property,
		fileNameProperty:  fileNameProperty,
		uploadDestination: cfg.UploadDestination,
		uriPrefix:         cfg.URIPrefix,
		deleteOnRemove:    cfg.DeleteOnRemove,
		deleteOnUpdate:    cfg.DeleteOnUpdate,
		injectOnLoad:      cfg.InjectOnLoad,
	}
}

func (m *PropertyMapping) MappingName() string       { return m.mappingName }
func (m *PropertyMapping) PropertyName() string      { return m.propertyName }
func (m *PropertyMapping) FileNameProperty() string  { return m.fileNameProperty }
func (m *PropertyMapping) UploadDestination() string { return m.uploadDestination }
func (m *PropertyMapping) URIPrefix() string         { return m.uriPrefix }
func (m *PropertyMapping) DeleteOnRemove() bool      { return m.deleteOnRemove }
func (m *PropertyMapping) DeleteOnUpdate() bool      { return m.deleteOnUpdate }
func (m *PropertyMapping) InjectOnLoad() bool        { return m.injectOnLoad }

// Namer returns the configured namer, or nil
func (m *PropertyMapping) Namer() Namer { return m.namer }

// HasNamer reports whether a namer is configured
func (m *PropertyMapping) HasNamer() bool { return m.namer != nil }

// SetNamer sets the namer
func (m *PropertyMapping) SetNamer(n Namer) { m.namer = n }

// DirectoryNamer returns the configured directory namer, or nil
func (m *PropertyMapping) DirectoryNamer() DirectoryNamer { return m.directoryNamer }

// HasDirectoryNamer reports whether a directory namer is configured
func (m *PropertyMapping) HasDirectoryNamer() bool { return m.directoryNamer != nil }

// SetDirectoryNamer sets the directory namer
func (m *PropertyMapping) SetDirectoryNamer(n DirectoryNamer) { m.directoryNamer = n }

// File reads the uploadable property of obj. It returns nil when the
// property is empty.
func (m *PropertyMapping) File(obj any) (files.File, error) {
	v, err := m.field(obj, m.propertyName, false)
	if err != nil {
		return nil, err
	}
	if !v.CanInterface() {
		return nil, fmt.Errorf("%w: property %s is not exported", apperrors.ErrInvalidMetadata, m.propertyName)
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
	}
	f, ok := v.Interface().(files.File)
	if !ok {
		return nil, fmt.Errorf("%w: property %s does not hold a files.File", apperrors.ErrInvalidMetadata, m.propertyName)
	}
	return f, nil
}

// SetFile writes the uploadable property of obj. obj must be a pointer.
func (m *PropertyMapping) SetFile(obj any, f files.File) error {
	v, err := m.field(obj, m.propertyName, true)
	if err != nil {
		return err
	}
	if f == nil {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	fv := reflect.ValueOf(f)
	if !fv.Type().AssignableTo(v.Type()) {
		return fmt.Errorf("%w: cannot assign %T to property %s", apperrors.ErrInvalidMetadata, f, m.propertyName)
	}
	v.Set(fv)
	return nil
}

// FileName reads the filename property of obj
func (m *PropertyMapping) FileName(obj any) (string, error) {
	v, err := m.field(obj, m.fileNameProperty, false)
	if err != nil {
		return "", err
	}
	if v.Kind() != reflect.String {
		return "", fmt.Errorf("%w: filename property %s is not a string", apperrors.ErrInvalidMetadata, m.fileNameProperty)
	}
	return v.String(), nil
}

// SetFileName writes the filename property of obj. obj must be a pointer.
func (m *PropertyMapping) SetFileName(obj any, name string) error {
	v, err := m.field(obj, m.fileNameProperty, true)
	if err != nil {
		return err
	}
	if v.Kind() != reflect.String {
		return fmt.Errorf("%w: filename property %s is not a string", apperrors.ErrInvalidMetadata, m.fileNameProperty)
	}
	v.SetString(name)
	return nil
}

func (m *PropertyMapping) field(obj any, name string, settable bool) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: nil object", apperrors.ErrInvalidInput)
	}
	if settable && v.Kind() != reflect.Pointer {
		return reflect.Value{}, fmt.Errorf("%w: %T must be passed by pointer", apperrors.ErrInvalidInput, obj)
	}
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %T", apperrors.ErrInvalidInput, obj)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %T is not a struct", apperrors.ErrInvalidInput, obj)
	}

	f := v.FieldByName(name)
	if !f.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: %T has no property %q", apperrors.ErrInvalidMetadata, obj, name)
	}
	if settable && !f.CanSet() {
		return reflect.Value{}, fmt.Errorf("%w: property %q of %T is not settable", apperrors.ErrInvalidMetadata, name, obj)
	}
	return f, nil
}
