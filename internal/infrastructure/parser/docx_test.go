package parser

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "договор.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	entry, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create archive entry: %v", err)
	}
	if _, err := entry.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write archive entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return path
}

func TestDocxParserJoinsParagraphs(t *testing.T) {
	path := writeDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Договор поставки</w:t></w:r></w:p>
    <w:p><w:r><w:t>Сумма: </w:t></w:r><w:r><w:t>50000</w:t></w:r></w:p>
    <w:p><w:r><w:t>   </w:t></w:r></w:p>
  </w:body>
</w:document>`)

	doc, err := DocxParser{}.Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := "Договор поставки\nСумма: 50000"
	if doc.RawText != want {
		t.Fatalf("RawText = %q, want %q", doc.RawText, want)
	}
	if doc.Metadata["content_type"] != docxContentType {
		t.Fatalf("content_type = %q", doc.Metadata["content_type"])
	}
}

func TestDocxParserMissingBodyPart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	w := zip.NewWriter(f)
	if err := w.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	f.Close()

	_, err = DocxParser{}.Parse(path)
	if err == nil {
		t.Fatalf("expected error for archive without word/document.xml")
	}
	if !strings.Contains(err.Error(), "word/document.xml") {
		t.Fatalf("unexpected error: %v", err)
	}
}
