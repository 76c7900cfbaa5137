package analysis

import (
	"github.com/kirillkom/document-intake/internal/core/domain"
)

// MetadataFromRecord builds the analysis metadata view from a persisted file
// record. A missing category falls back to document type "unknown", normal
// priority and internal confidentiality; a missing source is tolerated.
func MetadataFromRecord(rec domain.FileRecord) domain.FileMetadata {
	meta := domain.FileMetadata{
		FileID:               rec.ID,
		Title:                rec.Title,
		CategoryDocumentType: "unknown",
		Priority:             domain.PriorityNormal,
		Confidentiality:      domain.ConfidentialityInternal,
		FileType:             rec.FileType,
	}

	if cat := rec.Category; cat != nil {
		if cat.DocumentType != "" {
			meta.CategoryDocumentType = cat.DocumentType
		}
		if cat.Priority != "" {
			meta.Priority = cat.Priority
		}
		if cat.Confidentiality != "" {
			meta.Confidentiality = cat.Confidentiality
		}
	}
	if src := rec.Source; src != nil {
		meta.SourceType = src.Type
	}

	return meta
}

// ManualTagNames extracts the names of manually assigned tags from a file
// record's tag associations, deduplicated in first-seen order.
func ManualTagNames(rec domain.FileRecord) []string {
	var names []string
	for _, link := range rec.Tags {
		if link.Type != domain.TagSourceManual {
			continue
		}
		names = append(names, link.Name)
	}
	return dedupeOrdered(names)
}
