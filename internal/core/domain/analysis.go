package domain

type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "low"
	PriorityNormal   PriorityLevel = "normal"
	PriorityHigh     PriorityLevel = "high"
	PriorityCritical PriorityLevel = "critical"
)

type ConfidentialityLevel string

const (
	ConfidentialityOpen         ConfidentialityLevel = "open"
	ConfidentialityInternal     ConfidentialityLevel = "internal"
	ConfidentialityConfidential ConfidentialityLevel = "confidential"
	ConfidentialityStrict       ConfidentialityLevel = "strictly_confidential"
)

type TagSource string

const (
	TagSourceManual       TagSource = "manual"
	TagSourceAutoMetadata TagSource = "auto_metadata"
	TagSourceAutoContent  TagSource = "auto_content"
)

// TagResult is one derived or manual tag in an analysis result.
type TagResult struct {
	Name   string    `json:"name"`
	Source TagSource `json:"source"`
	Reason string    `json:"reason,omitempty"`
}

// FileMetadata is the classification context for analysis. It comes from the
// persisted file record, not from the document text. SourceType and FileType
// are optional; empty means unset.
type FileMetadata struct {
	FileID               int64
	Title                string
	CategoryDocumentType string
	Priority             PriorityLevel
	Confidentiality      ConfidentialityLevel
	SourceType           string
	FileType             string
}

// AnalysisResult is the output of one analysis run. Tag names are
// case-insensitively unique; manual tags always precede auto tags.
type AnalysisResult struct {
	FileID  int64          `json:"file_id"`
	DocType string         `json:"doc_type"`
	Fields  map[string]any `json:"fields"`
	Tags    []TagResult    `json:"tags"`
}
