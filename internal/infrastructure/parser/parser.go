// Package parser extracts normalized text and file metadata from
// heterogeneous document formats behind a single capability interface.
package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// Parser is the contract every format parser implements.
type Parser interface {
	// Supports reports whether the parser can handle the file at path.
	// It is a pure predicate (extension check) and must not open the file.
	Supports(path string) bool
	// Parse extracts a ParsedDocument from the file at path.
	Parse(path string) (*domain.ParsedDocument, error)
}

// fileMetadata resolves path and builds the metadata keys every parser
// reports: file_name, absolute_path, size_bytes, last_modified, content_type.
// Returns the resolved absolute path as the document id.
func fileMetadata(path, contentType string) (string, map[string]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("resolve path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return "", nil, fmt.Errorf("stat %s: %w", path, err)
	}
	metadata := map[string]string{
		"file_name":     filepath.Base(abs),
		"absolute_path": abs,
		"size_bytes":    strconv.FormatInt(info.Size(), 10),
		"last_modified": info.ModTime().UTC().Format(time.RFC3339),
		"content_type":  contentType,
	}
	return abs, metadata, nil
}

func hasExt(path string, exts ...string) bool {
	ext := filepath.Ext(path)
	for _, want := range exts {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
