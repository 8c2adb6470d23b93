// Package naming provides the built-in namers and directory namers that
// upload mappings can reference by service id.
package naming

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/files"
	"github.com/welldanyogia/webrana-uploadable/internal/locator"
	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	"github.com/welldanyogia/webrana-uploadable/internal/validator"
)

// Service ids of the built-in namers
const (
	UniqidNamerID          = "namer.uniqid"
	OrignameNamerID        = "namer.origname"
	SubdirDirectoryNamerID = "directory_namer.subdir"
)

// UniqidNamer names files with a random UUID and the original extension
type UniqidNamer struct{}

// Name implements mapping.Namer
func (UniqidNamer) Name(obj any, m *mapping.PropertyMapping) (string, error) {
	f, err := pendingFile(obj, m)
	if err != nil {
		return "", err
	}
	return uuid.NewString() + strings.ToLower(files.Extension(f)), nil
}

// OrignameNamer prefixes the sanitized original filename with a UUID
type OrignameNamer struct{}

// Name implements mapping.Namer
func (OrignameNamer) Name(obj any, m *mapping.PropertyMapping) (string, error) {
	f, err := pendingFile(obj, m)
	if err != nil {
		return "", err
	}
	return uuid.NewString() + "_" + validator.SanitizeFilename(f.Name()), nil
}

func pendingFile(obj any, m *mapping.PropertyMapping) (files.File, error) {
	f, err := m.File(obj)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("%w: property %s holds no file", apperrors.ErrInvalidInput, m.PropertyName())
	}
	return f, nil
}

// RegisterDefaults registers the built-in namers under their service ids
func RegisterDefaults(reg *locator.Registry) {
	reg.Set(UniqidNamerID, UniqidNamer{})
	reg.Set(OrignameNamerID, OrignameNamer{})
	reg.Set(SubdirDirectoryNamerID, NewSubdirDirectoryNamer(2, 1))
}
