// Package analysis derives structured fields and tags from parsed document
// text plus the file's classification metadata. Every function here is pure:
// no I/O, no shared state, safe for concurrent use.
package analysis

import (
	"github.com/kirillkom/document-intake/internal/core/domain"
)

// Analyze combines metadata-derived tags, content field extraction and the
// user's manual tags into one result. Manual tags always precede auto tags;
// it never fails on valid-shaped input.
func Analyze(meta domain.FileMetadata, text string, manualTagNames []string) domain.AnalysisResult {
	manual := dedupeOrdered(manualTagNames)

	tags := make([]domain.TagResult, 0, len(manual))
	for _, name := range manual {
		tags = append(tags, domain.TagResult{Name: name, Source: domain.TagSourceManual})
	}
	tags = append(tags, DeriveTags(meta, manual)...)

	return domain.AnalysisResult{
		FileID:  meta.FileID,
		DocType: meta.CategoryDocumentType,
		Fields:  ExtractFields(text),
		Tags:    tags,
	}
}

// AnalyzeRecord is a convenience wrapper over Analyze for a persisted file
// record and its parsed document.
func AnalyzeRecord(rec domain.FileRecord, doc *domain.ParsedDocument) domain.AnalysisResult {
	text := ""
	if doc != nil {
		text = doc.RawText
	}
	return Analyze(MetadataFromRecord(rec), text, ManualTagNames(rec))
}

func dedupeOrdered(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
