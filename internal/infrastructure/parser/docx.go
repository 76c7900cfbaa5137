package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocxParser handles Word documents (.docx): a ZIP archive whose main body
// lives in word/document.xml.
type DocxParser struct{}

func (DocxParser) Supports(path string) bool {
	return hasExt(path, ".docx")
}

func (DocxParser) Parse(path string) (*domain.ParsedDocument, error) {
	id, metadata, err := fileMetadata(path, docxContentType)
	if err != nil {
		return nil, err
	}

	text, err := extractDocxText(id)
	if err != nil {
		return nil, err
	}

	return &domain.ParsedDocument{
		ID:       id,
		RawText:  Normalize(text),
		Metadata: metadata,
	}, nil
}

// extractDocxText walks word/document.xml tokens and joins non-empty
// paragraphs with newlines.
func extractDocxText(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	defer archive.Close()

	var body *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("docx %s: word/document.xml not found", path)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open word/document.xml: %w", err)
	}
	defer rc.Close()

	var (
		paragraphs  []string
		current     strings.Builder
		inParagraph bool
		inText      bool
	)
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode word/document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				inParagraph = false
				if para := strings.TrimSpace(current.String()); para != "" {
					paragraphs = append(paragraphs, para)
				}
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
