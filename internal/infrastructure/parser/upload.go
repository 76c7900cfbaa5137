package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// ParseUpload copies a streamed upload to a temporary file preserving the
// original extension, parses it through the registry, and augments the
// metadata with the upload identity. Keys the parser already set are never
// overridden. The temporary file is removed on every exit path; removal
// errors are ignored.
func (r *Registry) ParseUpload(upload domain.Upload) (*domain.ParsedDocument, error) {
	ext := filepath.Ext(upload.Filename)
	tmp, err := os.CreateTemp("", "intake-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, upload.Body); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("copy upload to temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	doc, err := r.Parse(tmpPath)
	if err != nil {
		return nil, err
	}

	setDefault(doc.Metadata, "original_filename", upload.Filename)
	setDefault(doc.Metadata, "upload_content_type", upload.ContentType)
	setDefault(doc.Metadata, "upload_size_bytes", strconv.FormatInt(upload.Size, 10))
	return doc, nil
}

func setDefault(metadata map[string]string, key, value string) {
	if _, ok := metadata[key]; !ok {
		metadata[key] = value
	}
}
