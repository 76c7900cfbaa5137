package ports

import (
	"context"
	"io"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// FileRepository persists and reads file records.
type FileRepository interface {
	CreateFile(ctx context.Context, rec *domain.FileRecord) error
	GetFileByHash(ctx context.Context, userID int64, hash string) (*domain.FileRecord, error)
	GetFileRecord(ctx context.Context, id int64) (*domain.FileRecord, error)
	UpdateStatus(ctx context.Context, id int64, status domain.FileStatus, errMessage string) error
	SaveAnalysis(ctx context.Context, id int64, doc *domain.ParsedDocument, res domain.AnalysisResult) error
	ListFiles(ctx context.Context, userID int64, filter domain.Filter) ([]domain.FileRecord, error)
	ListFileTypes(ctx context.Context) ([]string, error)
	ListTagNames(ctx context.Context) ([]string, error)
	ListCounterparties(ctx context.Context) ([]string, error)
}

// ObjectStorage stores source documents per owner.
type ObjectStorage interface {
	Save(ctx context.Context, ownerID int64, originalFilename string, data io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// MessageQueue publishes/consumes upload events.
type MessageQueue interface {
	PublishFileUploaded(ctx context.Context, fileID int64) error
	SubscribeFileUploaded(ctx context.Context, handler func(context.Context, int64) error) error
}

// DocumentParser extracts normalized text and metadata from a stored file
// or a streamed upload.
type DocumentParser interface {
	Parse(path string) (*domain.ParsedDocument, error)
	ParseUpload(upload domain.Upload) (*domain.ParsedDocument, error)
}

// UploadHasher computes the content-independent dedup fingerprint of an
// upload identity.
type UploadHasher interface {
	Fingerprint(filename, contentType string, size int64) string
}
