package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/document-intake/internal/core/analysis"
	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
)

type ProcessFileUseCase struct {
	repo          ports.FileRepository
	parser        ports.DocumentParser
	parseObserver func(fileType string, d time.Duration)
}

func NewProcessFileUseCase(repo ports.FileRepository, parser ports.DocumentParser) *ProcessFileUseCase {
	return &ProcessFileUseCase{
		repo:   repo,
		parser: parser,
	}
}

// SetParseObserver installs a callback timing each successful or failed
// parse by file type. Nil disables observation.
func (uc *ProcessFileUseCase) SetParseObserver(fn func(fileType string, d time.Duration)) {
	uc.parseObserver = fn
}

// ProcessByID runs the parse + analysis pipeline for one stored file.
// Parse failures are terminal: format and content errors are not transient,
// so the record is marked failed and never retried.
func (uc *ProcessFileUseCase) ProcessByID(ctx context.Context, fileID int64) error {
	if err := uc.markStatus(ctx, fileID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	doc, result, err := uc.runPipeline(ctx, fileID)
	if err != nil {
		if failErr := uc.markFailed(ctx, fileID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SaveAnalysis(ctx, fileID, doc, result); err != nil {
		if failErr := uc.markFailed(ctx, fileID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save analysis: %w", err)
	}

	if err := uc.markStatus(ctx, fileID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessFileUseCase) runPipeline(ctx context.Context, fileID int64) (*domain.ParsedDocument, domain.AnalysisResult, error) {
	rec, err := uc.repo.GetFileRecord(ctx, fileID)
	if err != nil {
		return nil, domain.AnalysisResult{}, fmt.Errorf("fetch file record: %w", err)
	}

	start := time.Now()
	doc, err := uc.parser.Parse(rec.FilePath)
	if uc.parseObserver != nil {
		uc.parseObserver(rec.FileType, time.Since(start))
	}
	if err != nil {
		return nil, domain.AnalysisResult{}, fmt.Errorf("parse stored file: %w", err)
	}

	return doc, analysis.AnalyzeRecord(*rec, doc), nil
}

func (uc *ProcessFileUseCase) markStatus(ctx context.Context, fileID int64, status domain.FileStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, fileID, status, errMessage)
}

func (uc *ProcessFileUseCase) markFailed(ctx context.Context, fileID int64, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, fileID, domain.StatusFailed, processErr.Error())
}
