// Package mapping resolves the uploadable fields of an entity into
// property mappings carrying their upload configuration.
package mapping

import (
	"fmt"
	"log/slog"

	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/locator"
	"github.com/welldanyogia/webrana-uploadable/internal/metadata"
)

// Factory builds PropertyMappings from entity metadata and the static
// mapping configuration. It holds no mutable state and is safe for
// concurrent use.
type Factory struct {
	container locator.Container
	reader    metadata.Reader
	configs   Configs
	logger    *slog.Logger
}

// NewFactory creates a Factory. configs is copied.
func NewFactory(container locator.Container, reader metadata.Reader, configs Configs, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		container: container,
		reader:    reader,
		configs:   configs.Clone(),
		logger:    logger,
	}
}

// Configs returns a copy of the mapping configuration table
func (f *Factory) Configs() Configs {
	return f.configs.Clone()
}

// FromObject resolves every uploadable field of obj. When className is
// empty the runtime type of obj is used.
func (f *Factory) FromObject(obj any, className string) (*Mappings, error) {
	class, err := f.checkUploadable(obj, className)
	if err != nil {
		return nil, err
	}

	fields := f.reader.UploadableFields(class)

	// an unknown mapping fails the call before any namer is looked up
	for _, field := range fields {
		if _, ok := f.configs.Lookup(field.Mapping); !ok {
			return nil, &UnknownMappingError{Mapping: field.Mapping, ClassName: class}
		}
	}

	mappings := newMappings(len(fields))
	for _, field := range fields {
		m, err := f.createMapping(class, field)
		if err != nil {
			return nil, err
		}
		mappings.put(m)
	}

	f.logger.Debug("resolved upload mappings",
		slog.String("class", class),
		slog.Int("count", mappings.Len()),
	)

	return mappings, nil
}

// FromField resolves a single uploadable field of obj. It returns
// (nil, nil) when the class has no uploadable field with that name.
func (f *Factory) FromField(obj any, field, className string) (*PropertyMapping, error) {
	class, err := f.checkUploadable(obj, className)
	if err != nil {
		return nil, err
	}

	desc, ok := f.reader.UploadableField(class, field)
	if !ok || desc == nil {
		return nil, nil
	}

	return f.createMapping(class, *desc)
}

func (f *Factory) checkUploadable(obj any, className string) (string, error) {
	if className == "" {
		className = metadata.ClassName(obj)
	}
	if !f.reader.IsUploadable(className) {
		return "", &NotUploadableError{ClassName: className}
	}
	return className, nil
}

func (f *Factory) createMapping(class string, field metadata.Field) (*PropertyMapping, error) {
	cfg, ok := f.configs.Lookup(field.Mapping)
	if !ok {
		return nil, &UnknownMappingError{Mapping: field.Mapping, ClassName: class}
	}

	m := NewPropertyMapping(field.Mapping, field.PropertyName, field.FileNameProperty, cfg)

	if cfg.Namer != "" {
		svc, err := f.container.Get(cfg.Namer)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: failed to get namer: %w", field.Mapping, err)
		}
		namer, ok := svc.(Namer)
		if !ok {
			return nil, fmt.Errorf("%w: %q (%T) used by mapping %q is not a namer",
				apperrors.ErrInvalidNamer, cfg.Namer, svc, field.Mapping)
		}
		m.SetNamer(namer)
	}

	if cfg.DirectoryNamer != "" {
		svc, err := f.container.Get(cfg.DirectoryNamer)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: failed to get directory namer: %w", field.Mapping, err)
		}
		dirNamer, ok := svc.(DirectoryNamer)
		if !ok {
			return nil, fmt.Errorf("%w: %q (%T) used by mapping %q is not a directory namer",
				apperrors.ErrInvalidNamer, cfg.DirectoryNamer, svc, field.Mapping)
		}
		m.SetDirectoryNamer(dirNamer)
	}

	return m, nil
}
