// Package metadata answers which entity classes are uploadable and
// which of their properties carry uploadable files.
package metadata

import (
	"reflect"
)

// Field describes one uploadable property of an entity class
type Field struct {
	// PropertyKey is the key the field is listed under
	PropertyKey string
	// Mapping names the upload mapping configuration the field uses
	Mapping string
	// PropertyName is the struct field holding the files.File value
	PropertyName string
	// FileNameProperty is the struct field storing the persisted filename
	FileNameProperty string
}

// Reader provides upload metadata for entity classes
type Reader interface {
	IsUploadable(className string) bool
	// UploadableFields returns the uploadable fields in declaration order
	UploadableFields(className string) []Field
	// UploadableField looks up one field; ok is false when the class has
	// no uploadable field with that name
	UploadableField(className, field string) (*Field, bool)
}

// ClassName returns the fully qualified type name of obj with pointers
// dereferenced, e.g. "github.com/acme/app/internal/models.Document".
func ClassName(obj any) string {
	if obj == nil {
		return ""
	}
	return TypeName(reflect.TypeOf(obj))
}

// TypeName is ClassName for a reflect.Type
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
