package parser

import (
	"fmt"
	"os"

	"github.com/lu4p/cat/rtftxt"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// RtfParser handles rich-text files (.rtf).
type RtfParser struct{}

func (RtfParser) Supports(path string) bool {
	return hasExt(path, ".rtf")
}

func (RtfParser) Parse(path string) (*domain.ParsedDocument, error) {
	id, metadata, err := fileMetadata(path, "application/rtf")
	if err != nil {
		return nil, err
	}
	metadata["source_format"] = "rtf"

	f, err := os.Open(id)
	if err != nil {
		return nil, fmt.Errorf("open rtf %s: %w", path, err)
	}
	defer f.Close()

	buf, err := rtftxt.Text(f)
	if err != nil {
		return nil, fmt.Errorf("extract rtf text: %w", err)
	}

	return &domain.ParsedDocument{
		ID:       id,
		RawText:  Normalize(buf.String()),
		Metadata: metadata,
	}, nil
}
