package parser

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// TxtParser handles plain text files (.txt).
type TxtParser struct{}

func (TxtParser) Supports(path string) bool {
	return hasExt(path, ".txt")
}

func (TxtParser) Parse(path string) (*domain.ParsedDocument, error) {
	id, metadata, err := fileMetadata(path, "text/plain")
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(id)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	text := string(raw)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}

	return &domain.ParsedDocument{
		ID:       id,
		RawText:  Normalize(text),
		Metadata: metadata,
	}, nil
}
