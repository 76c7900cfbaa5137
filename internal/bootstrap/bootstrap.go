package bootstrap

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-intake/internal/config"
	"github.com/kirillkom/document-intake/internal/core/ports"
	"github.com/kirillkom/document-intake/internal/core/usecase"
	"github.com/kirillkom/document-intake/internal/infrastructure/fingerprint"
	"github.com/kirillkom/document-intake/internal/infrastructure/parser"
	"github.com/kirillkom/document-intake/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-intake/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-intake/internal/infrastructure/resilience"
	"github.com/kirillkom/document-intake/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue   ports.MessageQueue
	Repo    ports.FileRepository
	Storage ports.ObjectStorage

	IngestUC ports.FileIngestor
	// Concrete so binaries can install observers; still satisfies
	// ports.FileProcessor.
	ProcessUC *usecase.ProcessFileUseCase
	CatalogUC ports.FileCatalog

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewFileRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	hasher := fingerprint.New(cfg.HashAlgorithm)

	registry := parser.NewRegistry()
	registry.Register(parser.XlsxParser{})
	registry.Register(parser.HTMLParser{})

	ingestUC := usecase.NewIngestFileUseCase(repo, storage, queue, hasher)
	processUC := usecase.NewProcessFileUseCase(repo, registry)
	catalogUC := usecase.NewCatalogUseCase(repo)

	return &App{
		Config:  cfg,
		Queue:   queue,
		Repo:    repo,
		Storage: storage,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		CatalogUC: catalogUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
