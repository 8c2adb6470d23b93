// Package app assembles the upload service from its configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-uploadable/internal/api"
	"github.com/welldanyogia/webrana-uploadable/internal/api/middleware"
	"github.com/welldanyogia/webrana-uploadable/internal/config"
	"github.com/welldanyogia/webrana-uploadable/internal/database"
	"github.com/welldanyogia/webrana-uploadable/internal/listener"
	"github.com/welldanyogia/webrana-uploadable/internal/locator"
	"github.com/welldanyogia/webrana-uploadable/internal/mapping"
	"github.com/welldanyogia/webrana-uploadable/internal/metadata"
	"github.com/welldanyogia/webrana-uploadable/internal/models"
	"github.com/welldanyogia/webrana-uploadable/internal/naming"
	"github.com/welldanyogia/webrana-uploadable/internal/storage"
	"github.com/welldanyogia/webrana-uploadable/internal/uploader"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// bodyLimit leaves room for both files of a document plus form overhead
const bodyLimit = "60M"

// App is the assembled service
type App struct {
	DB       *gorm.DB
	Uploads  *uploader.Handler
	Services *locator.Registry
	Echo     *echo.Echo
}

// Services registers the namers available to upload mappings
func Services() *locator.Registry {
	reg := locator.NewRegistry()
	naming.RegisterDefaults(reg)
	reg.Set("directory_namer.category", naming.NewPropertyDirectoryNamer("Category"))
	return reg
}

// NewBackend opens the storage backend selected by cfg
func NewBackend(ctx context.Context, cfg *config.Config) (storage.FileStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageMinio:
		return storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKey,
			SecretAccessKey: cfg.MinioSecretKey,
			Bucket:          cfg.MinioBucket,
			UseSSL:          cfg.MinioUseSSL,
		})
	default:
		return storage.NewLocalStorage(cfg.StoragePath)
	}
}

// New wires the service. The database is connected with the uploadable
// plugin registered and migrated. Background work started here stops when
// ctx is done.
func New(ctx context.Context, cfg *config.Config, configs mapping.Configs, backend storage.FileStorage, logger *slog.Logger) (*App, error) {
	reader := metadata.NewTagReader()
	if err := reader.Register(&models.Document{}); err != nil {
		return nil, fmt.Errorf("failed to read upload metadata: %w", err)
	}

	services := Services()
	if err := checkServices(configs, services); err != nil {
		return nil, err
	}

	factory := mapping.NewFactory(services, reader, configs, logger)
	uploads := uploader.NewHandler(factory, reader, storage.New(backend, logger), logger)

	db, err := database.Connect(database.Options{
		Driver:     cfg.DatabaseDriver,
		URL:        cfg.DatabaseURL,
		Production: cfg.IsProduction(),
		LogLevel:   gormLogLevel(cfg.SlogLevel()),
	}, listener.New(uploads))
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	routerCfg := &api.RouterConfig{
		DB:             db,
		Uploads:        uploads,
		Logger:         logger,
		BodyLimit:      bodyLimit,
		APIKey:         cfg.APIKey,
		AllowedOrigins: middleware.ParseOrigins(cfg.AllowedOrigins),
		Production:     cfg.IsProduction(),
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
	}
	if cfg.StorageBackend == config.StorageLocal {
		routerCfg.PublicDir = cfg.StoragePath
	}

	return &App{
		DB:       db,
		Uploads:  uploads,
		Services: services,
		Echo:     api.NewRouter(ctx, routerCfg),
	}, nil
}

// Close releases the database connection
func (a *App) Close() error {
	return database.Close(a.DB)
}

// checkServices fails fast on mappings naming a service that is not
// registered, rather than on the first upload that needs it
func checkServices(configs mapping.Configs, services *locator.Registry) error {
	for name, cfg := range configs {
		for _, id := range []string{cfg.Namer, cfg.DirectoryNamer} {
			if id != "" && !services.Has(id) {
				return fmt.Errorf("mapping %q: service %q is not registered", name, id)
			}
		}
	}
	return nil
}

func gormLogLevel(level slog.Level) gormlogger.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return gormlogger.Info
	case level >= slog.LevelError:
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}
