package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// Registry holds an ordered list of parsers and dispatches to the first one
// whose Supports returns true. Register is a startup-time operation; it must
// not race with Parse calls.
type Registry struct {
	parsers []Parser
}

// NewRegistry builds a registry with the default parser order: plain text,
// Word, PDF, rich text. Narrower parsers belong before broader ones.
func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			TxtParser{},
			DocxParser{},
			PdfParser{},
			RtfParser{},
		},
	}
}

// Register appends a parser after the defaults.
func (r *Registry) Register(p Parser) {
	r.parsers = append(r.parsers, p)
}

// Parse dispatches path to the first matching parser. Fails with
// domain.ErrFileNotFound before dispatch when the path does not exist and
// with domain.ErrUnsupportedFormat when no parser claims the file.
func (r *Registry) Parse(path string) (*domain.ParsedDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	for _, p := range r.parsers {
		if p.Supports(path) {
			return p.Parse(path)
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, path)
}
