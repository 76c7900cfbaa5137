package parser

import (
	"fmt"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// ImageParser recognizes raster images (.jpg, .png, .bmp). Text extraction
// needs an OCR engine that is not wired in, so Parse always fails; the
// parser is kept out of the default registry order.
type ImageParser struct{}

func (ImageParser) Supports(path string) bool {
	return hasExt(path, ".jpg", ".jpeg", ".png", ".bmp")
}

func (ImageParser) Parse(path string) (*domain.ParsedDocument, error) {
	if _, _, err := fileMetadata(path, ""); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("ocr extraction is not enabled: %s", path)
}
