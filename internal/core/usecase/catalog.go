package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

// CatalogUseCase is the read side: filtered file listings and the taxonomy
// vocabularies the filters draw from.
type CatalogUseCase struct {
	repo ports.FileRepository
}

func NewCatalogUseCase(repo ports.FileRepository) *CatalogUseCase {
	return &CatalogUseCase{repo: repo}
}

func (uc *CatalogUseCase) GetByID(ctx context.Context, id int64) (*domain.FileRecord, error) {
	rec, err := uc.repo.GetFileRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch file record: %w", err)
	}
	return rec, nil
}

func (uc *CatalogUseCase) List(ctx context.Context, userID int64, filter domain.Filter) ([]domain.FileRecord, error) {
	files, err := uc.repo.ListFiles(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (uc *CatalogUseCase) FileTypes(ctx context.Context) ([]string, error) {
	return uc.repo.ListFileTypes(ctx)
}

func (uc *CatalogUseCase) TagNames(ctx context.Context) ([]string, error) {
	return uc.repo.ListTagNames(ctx)
}

func (uc *CatalogUseCase) Counterparties(ctx context.Context) ([]string, error) {
	return uc.repo.ListCounterparties(ctx)
}
