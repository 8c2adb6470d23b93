package naming

import (
	"fmt"
	"path"
	"reflect"
	"strings"

	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	"github.com/welldanyogia/webrana-uploadable/internal/validator"
)

// SubdirDirectoryNamer spreads files over nested subdirectories built
// from the leading characters of the stored filename, e.g. "ab/cd" for
// "abcdef.png" with 2 chars per dir and 2 dirs.
type SubdirDirectoryNamer struct {
	charsPerDir int
	dirs        int
}

// NewSubdirDirectoryNamer creates a SubdirDirectoryNamer. Non-positive
// arguments fall back to 2 chars and 1 level.
func NewSubdirDirectoryNamer(charsPerDir, dirs int) *SubdirDirectoryNamer {
	if charsPerDir <= 0 {
		charsPerDir = 2
	}
	if dirs <= 0 {
		dirs = 1
	}
	return &SubdirDirectoryNamer{charsPerDir: charsPerDir, dirs: dirs}
}

// DirectoryName implements mapping.DirectoryNamer. The filename property
// must already be set.
func (n *SubdirDirectoryNamer) DirectoryName(obj any, m *mapping.PropertyMapping) (string, error) {
	name, err := m.FileName(obj)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: %s is empty", apperrors.ErrInvalidInput, m.FileNameProperty())
	}

	// counted in runes so multi-byte names are never split mid-character
	runes := []rune(name)
	parts := make([]string, 0, n.dirs)
	for i := 0; i < n.dirs; i++ {
		start := i * n.charsPerDir
		if start >= len(runes) {
			break
		}
		end := min(start+n.charsPerDir, len(runes))
		part := strings.Trim(string(runes[start:end]), ".")
		if part == "" {
			break
		}
		parts = append(parts, part)
	}
	return path.Join(parts...), nil
}

// PropertyDirectoryNamer uses the value of another entity property as
// the directory, e.g. the owner id or a category slug.
type PropertyDirectoryNamer struct {
	property string
}

// NewPropertyDirectoryNamer creates a PropertyDirectoryNamer reading property
func NewPropertyDirectoryNamer(property string) *PropertyDirectoryNamer {
	return &PropertyDirectoryNamer{property: property}
}

// DirectoryName implements mapping.DirectoryNamer
func (n *PropertyDirectoryNamer) DirectoryName(obj any, _ *mapping.PropertyMapping) (string, error) {
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", fmt.Errorf("%w: nil object", apperrors.ErrInvalidInput)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("%w: %T is not a struct", apperrors.ErrInvalidInput, obj)
	}

	f := v.FieldByName(n.property)
	if !f.IsValid() || !f.CanInterface() {
		return "", fmt.Errorf("%w: %T has no exported property %q", apperrors.ErrInvalidMetadata, obj, n.property)
	}

	value := strings.ToLower(validator.SanitizeString(fmt.Sprint(f.Interface()), 64))
	if value == "" {
		return "", fmt.Errorf("%w: property %q is empty", apperrors.ErrInvalidInput, n.property)
	}
	return validator.SanitizeFilename(strings.ReplaceAll(value, " ", "-")), nil
}
