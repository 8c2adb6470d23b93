package metadata

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/files"
)

type dummyEntity struct {
	ID        uint
	File      files.File `upload:"mapping=dummy_file,filename=FileName"`
	FileName  string
	Image     files.File `upload:"mapping = dummy_image , filename = ImageName"`
	ImageName string
}

type plainEntity struct {
	ID   uint
	Name string
}

type badMappingEntity struct {
	File     files.File `upload:"filename=FileName"`
	FileName string
}

type badTypeEntity struct {
	File     string `upload:"mapping=dummy_file,filename=FileName"`
	FileName string
}

type badFilenameEntity struct {
	File     files.File `upload:"mapping=dummy_file,filename=Size"`
	FileName string
	Size     int64
}

type missingFilenameEntity struct {
	File files.File `upload:"mapping=dummy_file,filename=Nope"`
}

type unknownOptionEntity struct {
	File     files.File `upload:"mapping=dummy_file,filename=FileName,color=red"`
	FileName string
}

func TestClassName(t *testing.T) {
	const want = "github.com/welldanyogia/webrana-uploadable/internal/metadata.dummyEntity"

	assert.Equal(t, want, ClassName(dummyEntity{}))
	assert.Equal(t, want, ClassName(&dummyEntity{}))

	e := &dummyEntity{}
	assert.Equal(t, want, ClassName(&e))
	assert.Equal(t, "", ClassName(nil))
	assert.Equal(t, "string", ClassName("x"))
}

func TestTagReader_Register(t *testing.T) {
	r := NewTagReader()
	require.NoError(t, r.Register(&dummyEntity{}, plainEntity{}))

	assert.True(t, r.IsUploadable(ClassName(dummyEntity{})))
	assert.False(t, r.IsUploadable(ClassName(plainEntity{})))
	assert.False(t, r.IsUploadable("unknown.Class"))
	assert.Equal(t, []string{ClassName(dummyEntity{})}, r.Classes())
}

func TestTagReader_UploadableFields_KeepsDeclarationOrder(t *testing.T) {
	r := NewTagReader()
	require.NoError(t, r.Register(dummyEntity{}))

	fields := r.UploadableFields(ClassName(dummyEntity{}))
	require.Len(t, fields, 2)

	assert.Equal(t, Field{PropertyKey: "File", Mapping: "dummy_file", PropertyName: "File", FileNameProperty: "FileName"}, fields[0])
	assert.Equal(t, Field{PropertyKey: "Image", Mapping: "dummy_image", PropertyName: "Image", FileNameProperty: "ImageName"}, fields[1])
}

func TestTagReader_UploadableFields_ReturnsCopy(t *testing.T) {
	r := NewTagReader()
	require.NoError(t, r.Register(dummyEntity{}))

	fields := r.UploadableFields(ClassName(dummyEntity{}))
	fields[0].Mapping = "changed"

	assert.Equal(t, "dummy_file", r.UploadableFields(ClassName(dummyEntity{}))[0].Mapping)
}

func TestTagReader_UploadableField(t *testing.T) {
	r := NewTagReader()
	require.NoError(t, r.Register(dummyEntity{}))

	f, ok := r.UploadableField(ClassName(dummyEntity{}), "Image")
	require.True(t, ok)
	assert.Equal(t, "dummy_image", f.Mapping)

	f, ok = r.UploadableField(ClassName(dummyEntity{}), "oops")
	assert.False(t, ok)
	assert.Nil(t, f)
}

func TestTagReader_RegisterRejectsInvalidTags(t *testing.T) {
	tests := []struct {
		name string
		obj  any
	}{
		{"missing mapping", badMappingEntity{}},
		{"wrong field type", badTypeEntity{}},
		{"non string filename property", badFilenameEntity{}},
		{"missing filename property", missingFilenameEntity{}},
		{"unknown option", unknownOptionEntity{}},
		{"not a struct", 42},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTagReader().Register(tt.obj)
			assert.ErrorIs(t, err, apperrors.ErrInvalidMetadata)
		})
	}
}

func TestTagReader_ConcurrentAccess(t *testing.T) {
	r := NewTagReader()
	class := ClassName(dummyEntity{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = r.Register(dummyEntity{})
		}()
		go func() {
			defer wg.Done()
			_ = r.IsUploadable(class)
			_ = r.UploadableFields(class)
		}()
	}
	wg.Wait()

	assert.True(t, r.IsUploadable(class))
}
