package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/files"
	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	"github.com/welldanyogia/webrana-uploadable/internal/validator"
)

// Storage stores the files of uploadable entities according to their
// property mappings. Keys have the form destination/[directory/]name.
type Storage struct {
	backend FileStorage
	logger  *slog.Logger
}

// New creates a Storage writing to backend
func New(backend FileStorage, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{backend: backend, logger: logger}
}

// Backend returns the underlying FileStorage
func (s *Storage) Backend() FileStorage {
	return s.backend
}

// Upload writes the pending file held by obj and records its stored name
// in the filename property. obj must be a pointer.
func (s *Storage) Upload(ctx context.Context, obj any, m *mapping.PropertyMapping) error {
	f, err := m.File(obj)
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("%w: property %s holds no file", apperrors.ErrInvalidInput, m.PropertyName())
	}
	if err := ValidateFile(f.Name(), f.Size()); err != nil {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrInvalidInput, f.Name(), err)
	}

	previous, err := m.FileName(obj)
	if err != nil {
		return err
	}

	name := validator.SanitizeFilename(f.Name())
	if m.HasNamer() {
		if name, err = m.Namer().Name(obj, m); err != nil {
			return fmt.Errorf("failed to name file for mapping %s: %w", m.MappingName(), err)
		}
	}

	// Directory namers may read the filename, so it is set first
	if err := m.SetFileName(obj, name); err != nil {
		return err
	}

	key, err := s.key(obj, m, name)
	if err != nil {
		_ = m.SetFileName(obj, previous)
		return err
	}

	if err := s.write(ctx, key, f); err != nil {
		_ = m.SetFileName(obj, previous)
		return err
	}

	s.logger.Debug("file uploaded",
		slog.String("mapping", m.MappingName()),
		slog.String("key", key),
		slog.Int64("size", f.Size()))
	return nil
}

func (s *Storage) write(ctx context.Context, key string, f files.File) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	if err := s.backend.Save(ctx, key, r); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Remove deletes the stored file of obj. It is a no-op when no filename
// is recorded.
func (s *Storage) Remove(ctx context.Context, obj any, m *mapping.PropertyMapping) error {
	key, err := s.ResolvePath(obj, m)
	if err != nil || key == "" {
		return err
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	s.logger.Debug("file removed",
		slog.String("mapping", m.MappingName()),
		slog.String("key", key))
	return nil
}

// ResolvePath returns the storage key of the file recorded on obj, or ""
// when no filename is set.
func (s *Storage) ResolvePath(obj any, m *mapping.PropertyMapping) (string, error) {
	name, err := m.FileName(obj)
	if err != nil || name == "" {
		return "", err
	}
	return s.key(obj, m, name)
}

// ResolveURI returns the public URI of the file recorded on obj, or ""
// when no filename is set.
func (s *Storage) ResolveURI(obj any, m *mapping.PropertyMapping) (string, error) {
	name, err := m.FileName(obj)
	if err != nil || name == "" {
		return "", err
	}
	rel, err := s.relative(obj, m, name)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(m.URIPrefix(), "/") + "/" + rel, nil
}

// Open reads back the stored file of obj
func (s *Storage) Open(ctx context.Context, obj any, m *mapping.PropertyMapping) (io.ReadCloser, error) {
	key, err := s.ResolvePath(obj, m)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrFileNotFound
	}
	return s.backend.Open(ctx, key)
}

// Stored builds the reference injected into obj when it is loaded. It
// returns nil when no filename is recorded.
func (s *Storage) Stored(obj any, m *mapping.PropertyMapping) (*files.Stored, error) {
	key, err := s.ResolvePath(obj, m)
	if err != nil || key == "" {
		return nil, err
	}
	uri, err := s.ResolveURI(obj, m)
	if err != nil {
		return nil, err
	}
	open := func(k string) (io.ReadCloser, error) {
		return s.backend.Open(context.Background(), k)
	}
	return files.NewStored(key, key, uri, -1, open), nil
}

func (s *Storage) key(obj any, m *mapping.PropertyMapping, name string) (string, error) {
	rel, err := s.relative(obj, m, name)
	if err != nil {
		return "", err
	}
	key, err := cleanKey(path.Join(m.UploadDestination(), rel))
	if err != nil {
		return "", fmt.Errorf("invalid storage key for mapping %s: %w", m.MappingName(), err)
	}
	return key, nil
}

// relative returns [directory/]name, the part of the key below the
// upload destination.
func (s *Storage) relative(obj any, m *mapping.PropertyMapping, name string) (string, error) {
	if !m.HasDirectoryNamer() {
		return name, nil
	}
	dir, err := m.DirectoryNamer().DirectoryName(obj, m)
	if err != nil {
		return "", fmt.Errorf("failed to name directory for mapping %s: %w", m.MappingName(), err)
	}
	return path.Join(dir, name), nil
}
