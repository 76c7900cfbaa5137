package analysis

import (
	"strings"

	"github.com/kirillkom/document-intake/internal/core/domain"
)

// DeriveTags builds auto tags from the file's classification metadata.
// Rules run in fixed order and each appends at most one tag; a tag whose
// name collides case-insensitively with an existing manual tag is dropped.
func DeriveTags(meta domain.FileMetadata, existingManualNames []string) []domain.TagResult {
	existing := make(map[string]struct{}, len(existingManualNames))
	for _, name := range existingManualNames {
		existing[strings.ToLower(name)] = struct{}{}
	}

	var tags []domain.TagResult
	add := func(name, reason string) {
		key := strings.ToLower(name)
		if _, ok := existing[key]; ok {
			return
		}
		existing[key] = struct{}{}
		tags = append(tags, domain.TagResult{
			Name:   name,
			Source: domain.TagSourceAutoMetadata,
			Reason: reason,
		})
	}

	if strings.Contains(strings.ToLower(meta.CategoryDocumentType), "договор") {
		add("договор", "Тип документа: "+meta.CategoryDocumentType)
	}

	if meta.Priority == domain.PriorityHigh || meta.Priority == domain.PriorityCritical {
		add("срочный", "Приоритет: "+string(meta.Priority))
	}

	if meta.Confidentiality == domain.ConfidentialityConfidential ||
		meta.Confidentiality == domain.ConfidentialityStrict {
		add("конфиденциально", "Конфиденциальность: "+string(meta.Confidentiality))
	}

	return tags
}
