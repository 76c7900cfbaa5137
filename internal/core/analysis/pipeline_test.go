package analysis

import (
	"testing"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

func TestAnalyzeCombinesManualAndDerivedTags(t *testing.T) {
	meta := domain.FileMetadata{
		FileID:               7,
		CategoryDocumentType: "Договор поставки",
		Priority:             domain.PriorityCritical,
		Confidentiality:      domain.ConfidentialityOpen,
	}
	text := "Договор № 45/А от 15.03.2024. Сумма договора: 50000 руб. Поставщик ООО «Ромашка»."

	res := Analyze(meta, text, []string{"важное", "важное"})

	if res.FileID != 7 || res.DocType != "Договор поставки" {
		t.Fatalf("result header = %+v", res)
	}

	var names []string
	for _, tag := range res.Tags {
		names = append(names, tag.Name)
	}
	want := []string{"важное", "договор", "срочный"}
	if len(names) != len(want) {
		t.Fatalf("tags = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("tags = %v, want %v", names, want)
		}
	}
	for _, tag := range res.Tags {
		if tag.Name == "конфиденциально" {
			t.Fatalf("open document must not get the confidentiality tag")
		}
	}
	if res.Tags[0].Source != domain.TagSourceManual || res.Tags[0].Reason != "" {
		t.Fatalf("manual tag = %+v", res.Tags[0])
	}

	if res.Fields["date"] != "15.03.2024" {
		t.Fatalf("date = %v", res.Fields["date"])
	}
	if res.Fields["number"] != "45/А" {
		t.Fatalf("number = %v", res.Fields["number"])
	}
	if res.Fields["total_amount"] != 50000.0 {
		t.Fatalf("total_amount = %v", res.Fields["total_amount"])
	}
	orgs := res.Fields["organizations"].([]string)
	if len(orgs) != 1 || orgs[0] != "ООО «Ромашка»" {
		t.Fatalf("organizations = %v", orgs)
	}
}

func TestAnalyzeRecordUsesCategoryAndManualLinks(t *testing.T) {
	rec := domain.FileRecord{
		ID:       11,
		Title:    "скан.pdf",
		FileType: "pdf",
		Category: &domain.Category{
			DocumentType:    "Договор",
			Priority:        domain.PriorityHigh,
			Confidentiality: domain.ConfidentialityConfidential,
		},
		Tags: []domain.TagLink{
			{Name: "архив", Type: domain.TagSourceManual},
			{Name: "договор", Type: domain.TagSourceAutoMetadata},
		},
	}
	doc := &domain.ParsedDocument{RawText: "текст без реквизитов"}

	res := AnalyzeRecord(rec, doc)
	if res.FileID != 11 {
		t.Fatalf("file id = %d", res.FileID)
	}

	var names []string
	for _, tag := range res.Tags {
		names = append(names, tag.Name)
	}
	// The stored auto tag is not a manual tag, so "договор" is re-derived.
	want := []string{"архив", "договор", "срочный", "конфиденциально"}
	if len(names) != len(want) {
		t.Fatalf("tags = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("tags = %v, want %v", names, want)
		}
	}
}

func TestAnalyzeRecordNilDocument(t *testing.T) {
	res := AnalyzeRecord(domain.FileRecord{ID: 1}, nil)
	if len(res.Fields) != 0 {
		t.Fatalf("fields = %v", res.Fields)
	}
	if res.DocType != "unknown" {
		t.Fatalf("doc type = %q", res.DocType)
	}
}

func TestMetadataFromRecordDefaults(t *testing.T) {
	meta := MetadataFromRecord(domain.FileRecord{ID: 2, Title: "x", FileType: "txt"})
	if meta.CategoryDocumentType != "unknown" {
		t.Fatalf("document type = %q", meta.CategoryDocumentType)
	}
	if meta.Priority != domain.PriorityNormal || meta.Confidentiality != domain.ConfidentialityInternal {
		t.Fatalf("defaults = %+v", meta)
	}
}

func TestMetadataFromRecordSourceType(t *testing.T) {
	meta := MetadataFromRecord(domain.FileRecord{
		ID:     3,
		Source: &domain.Source{Name: "почта", Type: "email"},
	})
	if meta.SourceType != "email" {
		t.Fatalf("source type = %q", meta.SourceType)
	}
}
