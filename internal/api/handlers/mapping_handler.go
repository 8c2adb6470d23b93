package handlers

import (
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-uploadable/internal/api/response"
	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	"github.com/welldanyogia/webrana-uploadable/internal/repository"
	"github.com/welldanyogia/webrana-uploadable/internal/uploader"
)

// MappingHandler exposes the upload mapping configuration and its
// resolution against stored documents
type MappingHandler struct {
	documentRepo repository.DocumentRepository
	uploads      *uploader.Handler
}

// NewMappingHandler creates a new MappingHandler
func NewMappingHandler(documentRepo repository.DocumentRepository, uploads *uploader.Handler) *MappingHandler {
	return &MappingHandler{
		documentRepo: documentRepo,
		uploads:      uploads,
	}
}

// MappingView is a named mapping configuration
type MappingView struct {
	Name string `json:"name"`
	mapping.Config
}

// PropertyMappingView is a mapping resolved for one field of a document
type PropertyMappingView struct {
	Mapping           string `json:"mapping"`
	Property          string `json:"property"`
	FileNameProperty  string `json:"file_name_property"`
	UploadDestination string `json:"upload_destination"`
	URIPrefix         string `json:"uri_prefix"`
	HasNamer          bool   `json:"has_namer"`
	HasDirectoryNamer bool   `json:"has_directory_namer"`
	DeleteOnRemove    bool   `json:"delete_on_remove"`
	DeleteOnUpdate    bool   `json:"delete_on_update"`
	InjectOnLoad      bool   `json:"inject_on_load"`
	FileName          string `json:"file_name,omitempty"`
	Path              string `json:"path,omitempty"`
	URI               string `json:"uri,omitempty"`
}

// List handles GET /api/mappings
func (h *MappingHandler) List(c echo.Context) error {
	configs := h.uploads.Factory().Configs()

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	views := make([]MappingView, 0, len(names))
	for _, name := range names {
		views = append(views, MappingView{Name: name, Config: configs[name]})
	}
	return response.Success(c, views)
}

// Get handles GET /api/mappings/:name
func (h *MappingHandler) Get(c echo.Context) error {
	name := c.Param("name")
	cfg, ok := h.uploads.Factory().Configs().Lookup(name)
	if !ok {
		return response.NotFound(c, "mapping not found")
	}
	return response.Success(c, MappingView{Name: name, Config: cfg})
}

// Document handles GET /api/documents/:id/mappings
func (h *MappingHandler) Document(c echo.Context) error {
	docs := DocumentHandler{documentRepo: h.documentRepo, uploads: h.uploads}
	doc, err := docs.load(c)
	if err != nil {
		return response.Error(c, err)
	}

	mappings, err := h.uploads.Factory().FromObject(doc, "")
	if err != nil {
		return response.Error(c, err)
	}

	store := h.uploads.Storage()
	views := make([]PropertyMappingView, 0, mappings.Len())
	for _, m := range mappings.All() {
		view := PropertyMappingView{
			Mapping:           m.MappingName(),
			Property:          m.PropertyName(),
			FileNameProperty:  m.FileNameProperty(),
			UploadDestination: m.UploadDestination(),
			URIPrefix:         m.URIPrefix(),
			HasNamer:          m.HasNamer(),
			HasDirectoryNamer: m.HasDirectoryNamer(),
			DeleteOnRemove:    m.DeleteOnRemove(),
			DeleteOnUpdate:    m.DeleteOnUpdate(),
			InjectOnLoad:      m.InjectOnLoad(),
		}
		if view.FileName, err = m.FileName(doc); err != nil {
			return response.Error(c, err)
		}
		if view.Path, err = store.ResolvePath(doc, m); err != nil {
			return response.Error(c, err)
		}
		if view.URI, err = store.ResolveURI(doc, m); err != nil {
			return response.Error(c, err)
		}
		views = append(views, view)
	}
	return response.Success(c, views)
}
