// Package uploader runs the upload lifecycle of entities: storing pending
// files, cleaning replaced files, injecting stored references on load and
// deleting files of removed entities.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	"github.com/welldanyogia/webrana-uploadable/internal/metadata"
	"github.com/welldanyogia/webrana-uploadable/internal/storage"
)

// Handler applies the mapping flags of an entity to storage. Objects whose
// class is not uploadable are skipped by every lifecycle method.
type Handler struct {
	factory *mapping.Factory
	reader  metadata.Reader
	storage *storage.Storage
	logger  *slog.Logger
}

// NewHandler creates a Handler
func NewHandler(factory *mapping.Factory, reader metadata.Reader, store *storage.Storage, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		factory: factory,
		reader:  reader,
		storage: store,
		logger:  logger,
	}
}

// Storage returns the storage the handler writes to
func (h *Handler) Storage() *storage.Storage {
	return h.storage
}

// IsUploadable reports whether obj belongs to an uploadable class
func (h *Handler) IsUploadable(obj any) bool {
	return obj != nil && h.reader.IsUploadable(metadata.ClassName(obj))
}

// Mappings resolves the mappings of obj, or returns nil when obj is not
// uploadable.
func (h *Handler) Mappings(obj any) (*mapping.Mappings, error) {
	if !h.IsUploadable(obj) {
		return nil, nil
	}
	return h.factory.FromObject(obj, "")
}

// Mapping resolves one uploadable field of obj. It returns nil when obj is
// not uploadable or has no such field.
func (h *Handler) Mapping(obj any, field string) (*mapping.PropertyMapping, error) {
	if !h.IsUploadable(obj) {
		return nil, nil
	}
	return h.factory.FromField(obj, field, "")
}

// Factory returns the mapping factory
func (h *Handler) Factory() *mapping.Factory {
	return h.factory
}

// Upload stores every pending file held by obj and replaces it with a
// stored reference.
func (h *Handler) Upload(ctx context.Context, obj any) error {
	_, err := h.UploadKeys(ctx, obj)
	return err
}

// UploadKeys is Upload returning the storage keys it wrote. When a field
// fails, files already written for obj are deleted again.
func (h *Handler) UploadKeys(ctx context.Context, obj any) ([]string, error) {
	var keys []string
	err := h.each(obj, func(m *mapping.PropertyMapping) error {
		f, err := m.File(obj)
		if err != nil {
			return err
		}
		if f == nil || !f.Pending() {
			return nil
		}
		if err := h.storage.Upload(ctx, obj, m); err != nil {
			return err
		}
		key, err := h.storage.ResolvePath(obj, m)
		if err != nil {
			return err
		}
		keys = append(keys, key)

		stored, err := h.storage.Stored(obj, m)
		if err != nil {
			return err
		}
		return m.SetFile(obj, stored)
	})
	if err != nil {
		if discardErr := h.Discard(ctx, keys); discardErr != nil {
			h.logger.Warn("failed to discard partial upload", slog.String("error", discardErr.Error()))
		}
		return nil, err
	}
	return keys, nil
}

// Clean removes files about to be replaced by a pending upload, for
// mappings with delete_on_update.
func (h *Handler) Clean(ctx context.Context, obj any) error {
	keys, err := h.Replaced(obj)
	if err != nil {
		return err
	}
	return h.Discard(ctx, keys)
}

// Replaced returns the storage keys of files that a pending upload on obj
// replaces, for mappings with delete_on_update. Nothing is deleted.
func (h *Handler) Replaced(obj any) ([]string, error) {
	var keys []string
	err := h.each(obj, func(m *mapping.PropertyMapping) error {
		if !m.DeleteOnUpdate() {
			return nil
		}
		f, err := m.File(obj)
		if err != nil {
			return err
		}
		if f == nil || !f.Pending() {
			return nil
		}
		key, err := h.storage.ResolvePath(obj, m)
		if err != nil || key == "" {
			return err
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Discard deletes the given storage keys. Every key is attempted; the
// failures are joined.
func (h *Handler) Discard(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := h.storage.Backend().Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", key, err))
			continue
		}
		h.logger.Debug("file discarded", slog.String("key", key))
	}
	return errors.Join(errs...)
}

// Inject sets a stored file reference on obj for mappings with
// inject_on_load. Properties already holding a file are left alone.
func (h *Handler) Inject(_ context.Context, obj any) error {
	return h.each(obj, func(m *mapping.PropertyMapping) error {
		if !m.InjectOnLoad() {
			return nil
		}
		f, err := m.File(obj)
		if err != nil || f != nil {
			return err
		}
		stored, err := h.storage.Stored(obj, m)
		if err != nil || stored == nil {
			return err
		}
		return m.SetFile(obj, stored)
	})
}

// Remove deletes the stored files of obj for mappings with
// delete_on_remove.
func (h *Handler) Remove(ctx context.Context, obj any) error {
	return h.each(obj, func(m *mapping.PropertyMapping) error {
		if !m.DeleteOnRemove() {
			return nil
		}
		return h.storage.Remove(ctx, obj, m)
	})
}

// each runs fn once per uploadable field of obj. Mappings is keyed by
// mapping name, so fields sharing a mapping are resolved one by one here.
// Every field is resolved before fn runs.
func (h *Handler) each(obj any, fn func(m *mapping.PropertyMapping) error) error {
	if !h.IsUploadable(obj) {
		return nil
	}
	class := metadata.ClassName(obj)

	fields := h.reader.UploadableFields(class)
	resolved := make([]*mapping.PropertyMapping, 0, len(fields))
	for _, field := range fields {
		m, err := h.factory.FromField(obj, field.PropertyKey, class)
		if err != nil {
			return err
		}
		if m != nil {
			resolved = append(resolved, m)
		}
	}

	for _, m := range resolved {
		if err := fn(m); err != nil {
			return fmt.Errorf("%s (mapping %s): %w", m.PropertyName(), m.MappingName(), err)
		}
	}
	return nil
}
