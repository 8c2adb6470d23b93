//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/welldanyogia/webrana-uploadable/internal/app"
	"github.com/welldanyogia/webrana-uploadable/internal/config"
	"github.com/welldanyogia/webrana-uploadable/internal/files"
	"github.com/welldanyogia/webrana-uploadable/internal/models"
	"github.com/welldanyogia/webrana-uploadable/internal/repository"
	"github.com/welldanyogia/webrana-uploadable/internal/storage"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

var pdfContent = []byte("%PDF-1.4\n%integration\n")

// UploadsIntegrationTestSuite runs the upload lifecycle against a real
// PostgreSQL database and a MinIO bucket
type UploadsIntegrationTestSuite struct {
	suite.Suite
	containers []testcontainers.Container
	app        *app.App
	backend    storage.FileStorage
	repo       repository.DocumentRepository
	cancel     context.CancelFunc
}

func (s *UploadsIntegrationTestSuite) start(ctx context.Context, req testcontainers.ContainerRequest) (string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}
	s.containers = append(s.containers, container)

	// each container exposes a single port
	return container.Endpoint(ctx, "")
}

// SetupSuite starts PostgreSQL and MinIO and assembles the service
func (s *UploadsIntegrationTestSuite) SetupSuite() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	pgAddr, err := s.start(ctx, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "uploads_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	})
	require.NoError(s.T(), err)

	minioAddr, err := s.start(ctx, testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").
			WithStartupTimeout(60 * time.Second),
	})
	require.NoError(s.T(), err)

	cfg := &config.Config{
		DatabaseURL:    fmt.Sprintf("postgres://test:test@%s/uploads_test?sslmode=disable", pgAddr),
		DatabaseDriver: "postgres",
		APIPort:        8080,
		StorageBackend: config.StorageMinio,
		MinioEndpoint:  minioAddr,
		MinioAccessKey: minioUser,
		MinioSecretKey: minioPassword,
		MinioBucket:    "uploads",
		LogLevel:       "error",
		AppEnv:         "development",
	}

	configs, err := config.LoadMappingsFile(filepath.Join("..", "..", "config", "uploads.yaml"))
	require.NoError(s.T(), err)

	s.backend, err = app.NewBackend(ctx, cfg)
	require.NoError(s.T(), err)

	s.app, err = app.New(ctx, cfg, configs, s.backend, slog.New(slog.DiscardHandler))
	require.NoError(s.T(), err)
	s.repo = repository.NewDocumentRepository(s.app.DB)
}

// TearDownSuite stops the containers
func (s *UploadsIntegrationTestSuite) TearDownSuite() {
	if s.app != nil {
		s.app.Close()
	}
	s.cancel()
	for _, c := range s.containers {
		c.Terminate(context.Background())
	}
}

// SetupTest cleans up data before each test
func (s *UploadsIntegrationTestSuite) SetupTest() {
	s.app.DB.Exec("TRUNCATE TABLE documents RESTART IDENTITY CASCADE")
}

// TestUploadsIntegrationTestSuite runs the test suite
func TestUploadsIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	suite.Run(t, new(UploadsIntegrationTestSuite))
}

func (s *UploadsIntegrationTestSuite) key(doc *models.Document) string {
	m, err := s.app.Uploads.Mapping(doc, "File")
	require.NoError(s.T(), err)
	key, err := s.app.Uploads.Storage().ResolvePath(doc, m)
	require.NoError(s.T(), err)
	return key
}

func (s *UploadsIntegrationTestSuite) exists(key string) bool {
	ok, err := s.backend.Exists(context.Background(), key)
	require.NoError(s.T(), err)
	return ok
}

func (s *UploadsIntegrationTestSuite) TestDocumentLifecycleOnMinio() {
	ctx := context.Background()

	doc := &models.Document{
		Title:    "Annual Report",
		Slug:     "annual-report",
		Category: "finance",
		File:     files.FromBytes("report.pdf", pdfContent),
	}
	require.NoError(s.T(), s.repo.Create(ctx, doc))
	assert.NotZero(s.T(), doc.ID)
	assert.Regexp(s.T(), `\.pdf$`, doc.FileName)

	first := s.key(doc)
	assert.Regexp(s.T(), `^documents/finance/`, first)
	assert.True(s.T(), s.exists(first))

	loaded, err := s.repo.GetByID(ctx, doc.ID)
	require.NoError(s.T(), err)
	stored, ok := loaded.File.(*files.Stored)
	require.True(s.T(), ok, "file is injected on load")
	r, err := stored.Open()
	require.NoError(s.T(), err)
	content, err := io.ReadAll(r)
	r.Close()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), pdfContent, content)

	loaded.File = files.FromBytes("final.pdf", pdfContent)
	require.NoError(s.T(), s.repo.Update(ctx, loaded))
	second := s.key(loaded)
	assert.NotEqual(s.T(), first, second)
	assert.False(s.T(), s.exists(first))
	assert.True(s.T(), s.exists(second))

	require.NoError(s.T(), s.repo.Delete(ctx, doc.ID))
	assert.False(s.T(), s.exists(second))
}

func (s *UploadsIntegrationTestSuite) TestDuplicateSlugKeepsOriginalFile() {
	ctx := context.Background()

	doc := &models.Document{Title: "A", Slug: "dup", Category: "misc", File: files.FromBytes("a.pdf", pdfContent)}
	require.NoError(s.T(), s.repo.Create(ctx, doc))

	dup := &models.Document{Title: "B", Slug: "dup", Category: "misc", File: files.FromBytes("b.pdf", pdfContent)}
	err := s.repo.Create(ctx, dup)
	assert.ErrorIs(s.T(), err, repository.ErrDuplicateEntry)
	assert.False(s.T(), s.exists(s.key(dup)), "file of the rejected row is discarded")

	assert.True(s.T(), s.exists(s.key(doc)))
}
