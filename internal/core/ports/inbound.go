package ports

import (
	"context"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// FileIngestor is the inbound contract for upload orchestration.
type FileIngestor interface {
	Upload(ctx context.Context, req domain.UploadRequest) (*domain.IngestResult, error)
}

// FileProcessor is the inbound contract for asynchronous file processing.
type FileProcessor interface {
	ProcessByID(ctx context.Context, fileID int64) error
}

// FileCatalog is the inbound read model for file records and taxonomy.
type FileCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.FileRecord, error)
	List(ctx context.Context, userID int64, filter domain.Filter) ([]domain.FileRecord, error)
	FileTypes(ctx context.Context) ([]string, error)
	TagNames(ctx context.Context) ([]string, error)
	Counterparties(ctx context.Context) ([]string, error)
}
