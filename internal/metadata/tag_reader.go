package metadata

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/files"
)

// TagName is the struct tag read by TagReader
const TagName = "upload"

var fileType = reflect.TypeOf((*files.File)(nil)).Elem()

// TagReader builds upload metadata from struct tags of registered types.
//
//	type Document struct {
//		File     files.File `gorm:"-" upload:"mapping=document_file,filename=FileName"`
//		FileName string
//	}
type TagReader struct {
	mu      sync.RWMutex
	classes map[string][]Field
}

// NewTagReader creates an empty TagReader
func NewTagReader() *TagReader {
	return &TagReader{classes: make(map[string][]Field)}
}

// Register parses the upload tags of each object's type. Types without
// any upload tag are ignored and stay non-uploadable.
func (r *TagReader) Register(objs ...any) error {
	for _, obj := range objs {
		if obj == nil {
			return fmt.Errorf("%w: cannot register nil", apperrors.ErrInvalidMetadata)
		}
		if err := r.RegisterType(reflect.TypeOf(obj)); err != nil {
			return err
		}
	}
	return nil
}

// RegisterType is Register for a reflect.Type
func (r *TagReader) RegisterType(t reflect.Type) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s is not a struct", apperrors.ErrInvalidMetadata, t)
	}

	fields, err := parseFields(t)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	r.mu.Lock()
	r.classes[TypeName(t)] = fields
	r.mu.Unlock()

	return nil
}

// IsUploadable implements Reader
func (r *TagReader) IsUploadable(className string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.classes[className]
	return ok
}

// UploadableFields implements Reader
func (r *TagReader) UploadableFields(className string) []Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fields := r.classes[className]
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// UploadableField implements Reader
func (r *TagReader) UploadableField(className, field string) (*Field, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.classes[className] {
		if f.PropertyKey == field {
			f := f
			return &f, true
		}
	}
	return nil, false
}

// Classes returns the registered uploadable class names
func (r *TagReader) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	return names
}

func parseFields(t reflect.Type) ([]Field, error) {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}

		field, err := parseTag(sf.Name, tag)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name(), sf.Name, err)
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: %s.%s must be exported", apperrors.ErrInvalidMetadata, t.Name(), sf.Name)
		}
		if sf.Type != fileType {
			return nil, fmt.Errorf("%w: %s.%s must be of type files.File, got %s",
				apperrors.ErrInvalidMetadata, t.Name(), sf.Name, sf.Type)
		}

		nameField, ok := t.FieldByName(field.FileNameProperty)
		if !ok || !nameField.IsExported() {
			return nil, fmt.Errorf("%w: %s has no exported filename property %q",
				apperrors.ErrInvalidMetadata, t.Name(), field.FileNameProperty)
		}
		if nameField.Type.Kind() != reflect.String {
			return nil, fmt.Errorf("%w: filename property %s.%s must be a string",
				apperrors.ErrInvalidMetadata, t.Name(), field.FileNameProperty)
		}

		fields = append(fields, field)
	}
	return fields, nil
}

// parseTag reads "mapping=<name>,filename=<Property>"
func parseTag(property, tag string) (Field, error) {
	field := Field{PropertyKey: property, PropertyName: property}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return Field{}, fmt.Errorf("%w: malformed option %q", apperrors.ErrInvalidMetadata, part)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "mapping":
			field.Mapping = value
		case "filename":
			field.FileNameProperty = value
		default:
			return Field{}, fmt.Errorf("%w: unknown option %q", apperrors.ErrInvalidMetadata, key)
		}
	}

	if field.Mapping == "" {
		return Field{}, fmt.Errorf("%w: mapping is required", apperrors.ErrInvalidMetadata)
	}
	if field.FileNameProperty == "" {
		return Field{}, fmt.Errorf("%w: filename is required", apperrors.ErrInvalidMetadata)
	}

	return field, nil
}
