package parser

import (
	"strings"
	"testing"
)

func TestHTMLParserSkipsScriptAndStyle(t *testing.T) {
	path := writeTempFile(t, "страница.html", `<!DOCTYPE html>
<html>
<head>
  <title>Счёт</title>
  <style>body { color: red; }</style>
  <script>console.log("hidden");</script>
</head>
<body>
  <h1>Счёт на оплату</h1>
  <p>Сумма: 50000 руб.</p>
</body>
</html>`)

	doc, err := HTMLParser{}.Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !strings.Contains(doc.RawText, "Счёт на оплату") || !strings.Contains(doc.RawText, "Сумма: 50000 руб.") {
		t.Fatalf("RawText = %q", doc.RawText)
	}
	if strings.Contains(doc.RawText, "hidden") || strings.Contains(doc.RawText, "color: red") {
		t.Fatalf("script/style leaked into %q", doc.RawText)
	}
	if doc.Metadata["source_format"] != "html" {
		t.Fatalf("source_format = %q", doc.Metadata["source_format"])
	}
}

func TestHTMLParserSupportsBothExtensions(t *testing.T) {
	p := HTMLParser{}
	if !p.Supports("a.html") || !p.Supports("b.HTM") {
		t.Fatalf("expected .html and .htm to match")
	}
	if p.Supports("c.xhtml") {
		t.Fatalf(".xhtml must not match")
	}
}
