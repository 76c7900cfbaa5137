package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// PdfParser handles text PDFs (.pdf). Scanned documents need OCR and are
// out of scope; they parse to empty text.
type PdfParser struct{}

func (PdfParser) Supports(path string) bool {
	return hasExt(path, ".pdf")
}

func (PdfParser) Parse(path string) (*domain.ParsedDocument, error) {
	id, metadata, err := fileMetadata(path, "application/pdf")
	if err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(id)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		// A malformed page yields empty text instead of failing the document.
		pages = append(pages, pageText(reader.Page(i)))
	}
	metadata["pages"] = strconv.Itoa(numPages)

	return &domain.ParsedDocument{
		ID:       id,
		RawText:  Normalize(strings.Join(pages, "\n")),
		Metadata: metadata,
	}, nil
}

func pageText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	extracted, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return extracted
}
