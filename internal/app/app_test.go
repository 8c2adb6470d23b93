package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-uploadable/internal/api/handlers"
	"github.com/welldanyogia/webrana-uploadable/internal/config"
	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	gormlogger "gorm.io/gorm/logger"
)

const testAPIKey = "test-api-key"

var (
	pdfContent = []byte("%PDF-1.4\n%annual report\n")
	pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

type upload struct {
	field, name string
	content     []byte
}

// AppTestSuite drives the assembled service over HTTP with a sqlite
// database and local storage
type AppTestSuite struct {
	suite.Suite
	cfg    *config.Config
	app    *App
	cancel context.CancelFunc
}

func (s *AppTestSuite) SetupTest() {
	dir := s.T().TempDir()
	s.cfg = &config.Config{
		DatabaseURL:    filepath.Join(dir, "app.db"),
		DatabaseDriver: "sqlite",
		APIPort:        8080,
		StorageBackend: config.StorageLocal,
		StoragePath:    filepath.Join(dir, "uploads"),
		LogLevel:       "error",
		APIKey:         testAPIKey,
		AppEnv:         "development",
	}

	configs, err := config.LoadMappingsFile(filepath.Join("..", "..", "config", "uploads.yaml"))
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	backend, err := NewBackend(ctx, s.cfg)
	s.Require().NoError(err)

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	s.app, err = New(ctx, s.cfg, configs, backend, logger)
	s.Require().NoError(err)
}

func (s *AppTestSuite) TearDownTest() {
	s.cancel()
	s.NoError(s.app.Close())
}

func TestAppTestSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func (s *AppTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	s.app.Echo.ServeHTTP(rec, req)
	return rec
}

func (s *AppTestSuite) multipart(method, path string, fields map[string]string, uploads ...upload) *http.Request {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		s.Require().NoError(w.WriteField(k, v))
	}
	for _, u := range uploads {
		part, err := w.CreateFormFile(u.field, u.name)
		s.Require().NoError(err)
		_, err = part.Write(u.content)
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (s *AppTestSuite) decodeDocument(rec *httptest.ResponseRecorder) handlers.DocumentView {
	var resp struct {
		Data handlers.DocumentView `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Data
}

// diskPath maps a public URI to the file the local backend wrote
func (s *AppTestSuite) diskPath(uri string) string {
	return filepath.Join(s.cfg.StoragePath, filepath.FromSlash(strings.TrimPrefix(uri, "/uploads/")))
}

func (s *AppTestSuite) createDocument() handlers.DocumentView {
	rec := s.do(s.multipart(http.MethodPost, "/api/documents",
		map[string]string{"title": "Annual Report", "category": "Finance"},
		upload{"file", "report.pdf", pdfContent},
		upload{"thumbnail", "cover.png", pngContent},
	))
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return s.decodeDocument(rec)
}

func (s *AppTestSuite) TestDocumentLifecycle() {
	doc := s.createDocument()
	s.Equal("annual-report", doc.Slug)

	file := doc.Files["File"]
	s.Regexp(`^/uploads/documents/finance/[0-9a-f-]{36}\.pdf$`, file.URI)
	s.Equal("document_file", file.Mapping)
	thumb := doc.Files["Thumbnail"]
	s.Regexp(`^/uploads/thumbnails/[0-9a-f]{2}/[0-9a-f-]{36}\.png$`, thumb.URI)

	s.FileExists(s.diskPath(file.URI))
	s.FileExists(s.diskPath(thumb.URI))

	// public URI is served by the local backend
	rec := httptest.NewRecorder()
	s.app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, file.URI, nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(pdfContent, rec.Body.Bytes())

	// download through the mapping
	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/documents/1/files/File", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/pdf", rec.Header().Get("Content-Type"))
	s.Equal(pdfContent, rec.Body.Bytes())

	// replacing the file removes the previous one
	rec = s.do(s.multipart(http.MethodPut, "/api/documents/1",
		map[string]string{"title": "Annual Report (final)"},
		upload{"file", "final.pdf", pdfContent},
	))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	updated := s.decodeDocument(rec)
	s.Equal("Annual Report (final)", updated.Title)
	s.NotEqual(file.URI, updated.Files["File"].URI)
	s.NoFileExists(s.diskPath(file.URI))
	s.FileExists(s.diskPath(updated.Files["File"].URI))
	s.Equal(thumb.URI, updated.Files["Thumbnail"].URI)

	// deleting the document removes its files
	rec = s.do(httptest.NewRequest(http.MethodDelete, "/api/documents/1", nil))
	s.Equal(http.StatusNoContent, rec.Code)
	s.NoFileExists(s.diskPath(updated.Files["File"].URI))
	s.NoFileExists(s.diskPath(thumb.URI))

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/documents/1", nil))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *AppTestSuite) TestDocumentMappings() {
	doc := s.createDocument()

	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/documents/1/mappings", nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data []handlers.PropertyMappingView `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Len(resp.Data, 2)
	s.Equal("document_file", resp.Data[0].Mapping)
	s.Equal(doc.Files["File"].URI, resp.Data[0].URI)
	s.Equal("/uploads/"+resp.Data[0].Path, resp.Data[0].URI)
	s.Equal("document_thumbnail", resp.Data[1].Mapping)
}

func (s *AppTestSuite) TestListMappings() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/api/mappings", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"name":"document_file"`)
	s.Contains(rec.Body.String(), `"name":"document_thumbnail"`)
}

func (s *AppTestSuite) TestBlockedUploadLeavesNothingBehind() {
	rec := s.do(s.multipart(http.MethodPost, "/api/documents",
		map[string]string{"title": "Installer"},
		upload{"file", "setup.exe", []byte("MZ")},
	))
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"total":0`)

	entries, err := os.ReadDir(s.cfg.StoragePath)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *AppTestSuite) TestAPIRequiresKey() {
	rec := httptest.NewRecorder()
	s.app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mappings", nil))
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	s.app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"storage":"healthy"`)
}

func TestCheckServices(t *testing.T) {
	services := Services()

	err := checkServices(mapping.Configs{
		"avatar": {UploadDestination: "avatars", Namer: "namer.uniqid", DirectoryNamer: "directory_namer.subdir"},
	}, services)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = checkServices(mapping.Configs{
		"avatar": {UploadDestination: "avatars", Namer: "namer.hash"},
	}, services)
	if err == nil || !strings.Contains(err.Error(), `"namer.hash"`) {
		t.Fatalf("expected unregistered namer error, got %v", err)
	}
}

func TestGormLogLevel(t *testing.T) {
	cases := map[slog.Level]gormlogger.LogLevel{
		slog.LevelDebug: gormlogger.Info,
		slog.LevelInfo:  gormlogger.Warn,
		slog.LevelWarn:  gormlogger.Warn,
		slog.LevelError: gormlogger.Error,
	}
	for in, want := range cases {
		if got := gormLogLevel(in); got != want {
			t.Errorf("gormLogLevel(%v) = %v, want %v", in, got, want)
		}
	}
}
