package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/catalog-sync/internal/adapter/objectstore"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/audioasset"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/batch"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/collection"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/lecture"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/scholar"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/series"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/topic"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/topiclink"
	"github.com/heartmarshall/catalog-sync/internal/config"
	"github.com/heartmarshall/catalog-sync/internal/service/ingestion"
	"github.com/heartmarshall/catalog-sync/internal/service/removal"
)

// App holds the resources shared by one command invocation.
type App struct {
	Config *config.Config
	Log    *slog.Logger
	Pool   *pgxpool.Pool
	// Store is nil when the object store is not configured.
	Store *objectstore.Client
}

// Options control how Open finds its configuration and where it logs.
type Options struct {
	// ConfigPath overrides CONFIG_PATH when set.
	ConfigPath string
	LogOutput  io.Writer
}

// Open loads configuration, initializes the logger, connects to the database
// and, when configured, builds the object store client.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.LoadFrom(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := NewLogger(out, cfg.Log)
	logger.Debug("starting",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	store, err := objectstore.New(ctx, cfg.Storage, cfg.Ingestion.DeleteChunkSize)
	switch {
	case errors.Is(err, objectstore.ErrNotConfigured):
		if missing := cfg.Storage.Missing(); len(missing) > 0 {
			logger.Warn("object store configuration incomplete, uploads disabled",
				slog.String("missing", strings.Join(missing, ", ")),
			)
		} else {
			logger.Info("object store not configured")
		}
		store = nil
	case err != nil:
		pool.Close()
		return nil, fmt.Errorf("object store: %w", err)
	default:
		logger.Debug("object store configured",
			slog.String("bucket", cfg.Storage.Bucket),
			slog.String("endpoint", cfg.Storage.EndpointURL()),
		)
	}

	return &App{Config: cfg, Log: logger, Pool: pool, Store: store}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}

// Migrate applies pending schema migrations.
func (a *App) Migrate(ctx context.Context) error {
	return postgres.Migrate(ctx, a.Pool, a.Log)
}

// IngestionService wires an ingestion service to the database and, when
// available, the object store.
func (a *App) IngestionService() *ingestion.Service {
	svc := ingestion.NewService(a.Log, ingestion.Repos{
		Batches:     batch.New(a.Pool),
		Topics:      topic.New(a.Pool),
		Scholars:    scholar.New(a.Pool),
		Collections: collection.New(a.Pool),
		Series:      series.New(a.Pool),
		Lectures:    lecture.New(a.Pool),
		AudioAssets: audioasset.New(a.Pool),
		TopicLinks:  topiclink.New(a.Pool),
	}, postgres.NewTxManager(a.Pool), a.Config.Ingestion)

	if a.Store != nil {
		svc.SetObjectStore(a.Store)
	}
	return svc
}

// RemovalService wires a removal service to the database and, when
// available, the object store.
func (a *App) RemovalService() *removal.Service {
	svc := removal.NewService(a.Log, removal.Repos{
		Batches:     batch.New(a.Pool),
		Scholars:    scholar.New(a.Pool),
		Collections: collection.New(a.Pool),
		Series:      series.New(a.Pool),
		Lectures:    lecture.New(a.Pool),
		AudioAssets: audioasset.New(a.Pool),
		TopicLinks:  topiclink.New(a.Pool),
		Topics:      topic.New(a.Pool),
	}, postgres.NewTxManager(a.Pool), a.Config.Ingestion)

	if a.Store != nil {
		svc.SetObjectStore(a.Store)
	}
	return svc
}
