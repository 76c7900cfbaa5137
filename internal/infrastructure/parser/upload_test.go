package parser

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

func TestParseUploadAugmentsMetadataAndCleansUp(t *testing.T) {
	upload := domain.Upload{
		Filename:    "заявление.txt",
		ContentType: "text/plain; charset=utf-8",
		Size:        19,
		Body:        strings.NewReader("прошу рассмотреть"),
	}

	doc, err := NewRegistry().ParseUpload(upload)
	if err != nil {
		t.Fatalf("ParseUpload() error = %v", err)
	}
	if doc.RawText != "прошу рассмотреть" {
		t.Fatalf("RawText = %q", doc.RawText)
	}
	if doc.Metadata["original_filename"] != "заявление.txt" {
		t.Fatalf("original_filename = %q", doc.Metadata["original_filename"])
	}
	if doc.Metadata["upload_content_type"] != "text/plain; charset=utf-8" {
		t.Fatalf("upload_content_type = %q", doc.Metadata["upload_content_type"])
	}
	if doc.Metadata["upload_size_bytes"] != "19" {
		t.Fatalf("upload_size_bytes = %q", doc.Metadata["upload_size_bytes"])
	}
	// The parser's own content_type must not be overridden by the upload.
	if doc.Metadata["content_type"] != "text/plain" {
		t.Fatalf("content_type = %q", doc.Metadata["content_type"])
	}

	if _, err := os.Stat(doc.ID); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file %s must be removed, stat err = %v", doc.ID, err)
	}
}

func TestParseUploadUnsupportedExtension(t *testing.T) {
	upload := domain.Upload{
		Filename: "dump.bin",
		Size:     2,
		Body:     strings.NewReader("\x00\x01"),
	}

	_, err := NewRegistry().ParseUpload(upload)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
