package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-uploadable/internal/api/response"
	apperrors "github.com/welldanyogia/webrana-uploadable/internal/errors"
	"github.com/welldanyogia/webrana-uploadable/internal/files"
	"github.com/welldanyogia/webrana-uploadable/internal/logger"
	"github.com/welldanyogia/webrana-uploadable/internal/models"
	"github.com/welldanyogia/webrana-uploadable/internal/repository"
	"github.com/welldanyogia/webrana-uploadable/internal/storage"
	"github.com/welldanyogia/webrana-uploadable/internal/uploader"
	"github.com/welldanyogia/webrana-uploadable/internal/validator"
)

const (
	defaultCategory = "general"
	maxTitleLength  = 255
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// DocumentHandler handles document-related HTTP requests
type DocumentHandler struct {
	documentRepo repository.DocumentRepository
	uploads      *uploader.Handler
	security     *logger.SecurityLogger
}

// NewDocumentHandler creates a new DocumentHandler. security may be nil.
func NewDocumentHandler(documentRepo repository.DocumentRepository, uploads *uploader.Handler, security *logger.SecurityLogger) *DocumentHandler {
	return &DocumentHandler{
		documentRepo: documentRepo,
		uploads:      uploads,
		security:     security,
	}
}

// FileView describes a stored file of a document
type FileView struct {
	Mapping  string `json:"mapping"`
	FileName string `json:"file_name"`
	URI      string `json:"uri"`
}

// DocumentView is a document together with its stored files
type DocumentView struct {
	*models.Document
	Files map[string]FileView `json:"files"`
}

// Create handles POST /api/documents
func (h *DocumentHandler) Create(c echo.Context) error {
	title := validator.SanitizeString(c.FormValue("title"), maxTitleLength)
	if title == "" {
		return response.BadRequest(c, "title is required")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}

	slug := slugify(c.FormValue("slug"))
	if slug == "" {
		slug = slugify(title)
	}
	if slug == "" {
		return response.BadRequest(c, "title must contain letters or digits")
	}

	category := slugify(c.FormValue("category"))
	if category == "" {
		category = defaultCategory
	}

	doc := &models.Document{
		Title:    title,
		Slug:     slug,
		Category: category,
		File:     files.FromMultipart(fh),
	}
	if thumb, err := c.FormFile("thumbnail"); err == nil {
		doc.Thumbnail = files.FromMultipart(thumb)
	}

	if err := h.documentRepo.Create(c.Request().Context(), doc); err != nil {
		h.auditRejectedUpload(c, doc, err)
		return response.Error(c, err)
	}

	view, err := h.view(doc)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, view)
}

// List handles GET /api/documents
func (h *DocumentHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset = validator.ValidatePagination(limit, offset)

	docs, total, err := h.documentRepo.List(c.Request().Context(), repository.DocumentFilter{
		Category: slugify(c.QueryParam("category")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return response.InternalError(c, "failed to list documents")
	}

	views := make([]DocumentView, 0, len(docs))
	for i := range docs {
		view, err := h.view(&docs[i])
		if err != nil {
			return response.Error(c, err)
		}
		views = append(views, *view)
	}

	return response.Paginated(c, views, total, limit, offset)
}

// Get handles GET /api/documents/:id
func (h *DocumentHandler) Get(c echo.Context) error {
	doc, err := h.load(c)
	if err != nil {
		return response.Error(c, err)
	}

	view, err := h.view(doc)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

// Update handles PUT /api/documents/:id. The title can be changed and
// either file replaced; the category is fixed because it names the
// directory files are stored under.
func (h *DocumentHandler) Update(c echo.Context) error {
	doc, err := h.load(c)
	if err != nil {
		return response.Error(c, err)
	}

	if title := c.FormValue("title"); title != "" {
		doc.Title = validator.SanitizeString(title, maxTitleLength)
	}
	if fh, err := c.FormFile("file"); err == nil {
		doc.File = files.FromMultipart(fh)
	}
	if fh, err := c.FormFile("thumbnail"); err == nil {
		doc.Thumbnail = files.FromMultipart(fh)
	}

	if err := h.documentRepo.Update(c.Request().Context(), doc); err != nil {
		h.auditRejectedUpload(c, doc, err)
		return response.Error(c, err)
	}

	view, err := h.view(doc)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

// Delete handles DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "invalid document ID")
	}

	if err := h.documentRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "document not found")
		}
		return response.Error(c, err)
	}

	return response.NoContent(c)
}

// Download handles GET /api/documents/:id/files/:field
func (h *DocumentHandler) Download(c echo.Context) error {
	doc, err := h.load(c)
	if err != nil {
		return response.Error(c, err)
	}

	field := c.Param("field")
	m, err := h.uploads.Mapping(doc, field)
	if err != nil {
		return response.Error(c, err)
	}
	if m == nil {
		return response.NotFound(c, fmt.Sprintf("document has no uploadable field %q", field))
	}

	store := h.uploads.Storage()
	stored, err := store.Stored(doc, m)
	if err != nil {
		return response.Error(c, err)
	}
	if stored == nil {
		return response.NotFound(c, "no file stored")
	}

	contentType := "application/octet-stream"
	if mt, err := files.DetectContentType(stored); err == nil {
		contentType = mt.String()
	} else if errors.Is(err, storage.ErrFileNotFound) {
		return response.NotFound(c, "file not found")
	}

	file, err := store.Open(c.Request().Context(), doc, m)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return response.NotFound(c, "file not found")
		}
		return response.InternalError(c, "failed to retrieve file")
	}
	defer file.Close()

	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, stored.Name()))
	c.Response().WriteHeader(http.StatusOK)

	if _, err := io.Copy(c.Response().Writer, file); err != nil {
		return fmt.Errorf("failed to send file: %w", err)
	}
	return nil
}

// auditRejectedUpload records uploads refused by file validation
func (h *DocumentHandler) auditRejectedUpload(c echo.Context, doc *models.Document, err error) {
	var reason error
	switch {
	case errors.Is(err, storage.ErrBlockedExt):
		reason = storage.ErrBlockedExt
	case errors.Is(err, storage.ErrFileTooLarge):
		reason = storage.ErrFileTooLarge
	case errors.Is(err, storage.ErrPathTraversal):
		h.security.PathTraversalAttempt(c.RealIP(), c.Request().URL.Path, err.Error())
		return
	default:
		return
	}
	for _, f := range []files.File{doc.File, doc.Thumbnail} {
		if f != nil && f.Pending() {
			h.security.BlockedFileUpload(c.RealIP(), f.Name(), reason.Error())
		}
	}
}

// load fetches the document named by the :id path parameter
func (h *DocumentHandler) load(c echo.Context) (*models.Document, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, fmt.Errorf("invalid document ID: %w", apperrors.ErrInvalidInput)
	}

	doc, err := h.documentRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("document %d: %w", id, apperrors.ErrDocumentNotFound)
		}
		return nil, err
	}
	return doc, nil
}

// view resolves the URI of every stored file of doc
func (h *DocumentHandler) view(doc *models.Document) (*DocumentView, error) {
	view := &DocumentView{Document: doc, Files: map[string]FileView{}}

	mappings, err := h.uploads.Mappings(doc)
	if err != nil || mappings == nil {
		return view, err
	}

	store := h.uploads.Storage()
	for _, m := range mappings.All() {
		name, err := m.FileName(doc)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		uri, err := store.ResolveURI(doc, m)
		if err != nil {
			return nil, err
		}
		view.Files[m.PropertyName()] = FileView{
			Mapping:  m.MappingName(),
			FileName: name,
			URI:      uri,
		}
	}
	return view, nil
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func slugify(s string) string {
	s = slugInvalid.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}
