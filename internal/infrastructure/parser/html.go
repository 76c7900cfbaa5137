package parser

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// HTMLParser handles HTML pages (.html, .htm). Text nodes are collected
// depth-first, one line per node; script and style subtrees are skipped.
type HTMLParser struct{}

func (HTMLParser) Supports(path string) bool {
	return hasExt(path, ".html", ".htm")
}

func (HTMLParser) Parse(path string) (*domain.ParsedDocument, error) {
	id, metadata, err := fileMetadata(path, "text/html")
	if err != nil {
		return nil, err
	}
	metadata["source_format"] = "html"

	f, err := os.Open(id)
	if err != nil {
		return nil, fmt.Errorf("open html %s: %w", path, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", path, err)
	}

	var lines []string
	collectText(doc, &lines)

	return &domain.ParsedDocument{
		ID:       id,
		RawText:  Normalize(strings.Join(lines, "\n")),
		Metadata: metadata,
	}, nil
}

func collectText(n *html.Node, lines *[]string) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*lines = append(*lines, text)
		}
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, lines)
	}
}
