// Package files holds the values that live in an entity's uploadable
// property: a pending upload waiting to be stored, or a reference to a
// file that is already in storage.
package files

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// File is the value held by an uploadable property
type File interface {
	// Name returns the client-side (original) filename
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
	// Pending reports whether the file still has to be written to storage
	Pending() bool
}

// Upload is a file received from a client that has not been stored yet
type Upload struct {
	name   string
	size   int64
	header *multipart.FileHeader
	data   []byte
}

// FromMultipart wraps a multipart form file
func FromMultipart(fh *multipart.FileHeader) *Upload {
	return &Upload{
		name:   fh.Filename,
		size:   fh.Size,
		header: fh,
	}
}

// FromBytes builds an upload from an in-memory payload
func FromBytes(name string, data []byte) *Upload {
	return &Upload{
		name: name,
		size: int64(len(data)),
		data: data,
	}
}

// Name returns the original filename
func (u *Upload) Name() string { return u.name }

// Size returns the payload size in bytes
func (u *Upload) Size() int64 { return u.size }

// Pending is always true for uploads
func (u *Upload) Pending() bool { return true }

// Open returns a reader over the upload content
func (u *Upload) Open() (io.ReadCloser, error) {
	if u.header != nil {
		f, err := u.header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open multipart file: %w", err)
		}
		return f, nil
	}
	return io.NopCloser(bytes.NewReader(u.data)), nil
}

// Opener opens a stored file by its storage key
type Opener func(key string) (io.ReadCloser, error)

// Stored references a file that already lives in storage. It is what
// gets injected into an entity when it is loaded.
type Stored struct {
	Key  string
	Path string
	URI  string
	size int64
	open Opener
}

// NewStored creates a Stored reference. open may be nil when the content
// is never read back through the entity.
func NewStored(key, path, uri string, size int64, open Opener) *Stored {
	return &Stored{Key: key, Path: path, URI: uri, size: size, open: open}
}

// Name returns the base name of the stored file
func (s *Stored) Name() string { return filepath.Base(s.Key) }

// Size returns the size recorded at injection time, -1 when unknown
func (s *Stored) Size() int64 { return s.size }

// Pending is always false for stored files
func (s *Stored) Pending() bool { return false }

// Open reads the stored file back through the storage backend
func (s *Stored) Open() (io.ReadCloser, error) {
	if s.open == nil {
		return nil, fmt.Errorf("stored file %s has no opener", s.Key)
	}
	return s.open(s.Key)
}

// DetectContentType sniffs the MIME type of f from its content
func DetectContentType(f File) (*mimetype.MIME, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type: %w", err)
	}
	return mt, nil
}

// Extension returns the extension of the original name, falling back to
// the one implied by the sniffed content type. The result keeps the
// leading dot and may be empty.
func Extension(f File) string {
	if ext := filepath.Ext(f.Name()); ext != "" {
		return ext
	}
	mt, err := DetectContentType(f)
	if err != nil {
		return ""
	}
	return mt.Extension()
}
