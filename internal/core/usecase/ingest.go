package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

type IngestFileUseCase struct {
	repo    ports.FileRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	hasher  ports.UploadHasher
}

func NewIngestFileUseCase(
	repo ports.FileRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	hasher ports.UploadHasher,
) *IngestFileUseCase {
	return &IngestFileUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
		hasher:  hasher,
	}
}

// Upload runs the dedup gate on the upload fingerprint, stores the file,
// creates its record with the user's manual tags and publishes the
// processing event. A fingerprint hit short-circuits before any write.
func (uc *IngestFileUseCase) Upload(ctx context.Context, req domain.UploadRequest) (*domain.IngestResult, error) {
	if strings.TrimSpace(req.Filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("filename is required"))
	}

	hash := uc.hasher.Fingerprint(req.Filename, req.ContentType, req.Size)

	existing, err := uc.repo.GetFileByHash(ctx, req.OwnerID, hash)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil {
		return &domain.IngestResult{Record: existing, Deduplicated: true}, nil
	}

	path, err := uc.storage.Save(ctx, req.OwnerID, req.Filename, req.Body)
	if err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	now := time.Now().UTC()
	rec := &domain.FileRecord{
		Title:       uploadTitle(req),
		FilePath:    path,
		FileType:    fileType(req.Filename),
		SizeBytes:   req.Size,
		Fingerprint: hash,
		Status:      domain.StatusUploaded,
		UserID:      req.OwnerID,
		CategoryID:  req.CategoryID,
		SourceID:    req.SourceID,
		Tags:        manualTagLinks(req.ManualTags),
		UploadedAt:  now,
		ModifiedAt:  now,
	}

	if err := uc.repo.CreateFile(ctx, rec); err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}

	if err := uc.queue.PublishFileUploaded(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return &domain.IngestResult{Record: rec}, nil
}

func uploadTitle(req domain.UploadRequest) string {
	if title := strings.TrimSpace(req.Title); title != "" {
		return title
	}
	return filepath.Base(req.Filename)
}

// fileType is the lowercase extension without the leading dot.
func fileType(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func manualTagLinks(names []string) []domain.TagLink {
	seen := make(map[string]struct{}, len(names))
	var links []domain.TagLink
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		links = append(links, domain.TagLink{Name: name, Type: domain.TagSourceManual})
	}
	return links
}
