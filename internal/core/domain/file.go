package domain

import (
	"io"
	"time"
)

type FileStatus string

const (
	StatusUploaded   FileStatus = "uploaded"
	StatusProcessing FileStatus = "processing"
	StatusReady      FileStatus = "ready"
	StatusFailed     FileStatus = "failed"
)

// Category classifies files for the metadata tag rules.
type Category struct {
	ID              int64                `json:"id"`
	Name            string               `json:"name"`
	DocumentType    string               `json:"document_type"`
	Priority        PriorityLevel        `json:"priority_level"`
	Confidentiality ConfidentialityLevel `json:"confidentiality"`
}

// Source records where a file came from (website, email, scan, EDO, ERP).
type Source struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// TagLink is one tag association on a persisted file record.
type TagLink struct {
	Name   string    `json:"name"`
	Type   TagSource `json:"type"`
	Reason string    `json:"reason,omitempty"`
}

// FileRecord is the persisted state of one uploaded file, including the
// linked category, source and tag associations the analysis adapters read.
// Category and Source are nil when the file has no classification yet.
type FileRecord struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	FilePath    string         `json:"file_path"`
	FileType    string         `json:"file_type,omitempty"`
	SizeBytes   int64          `json:"size_bytes"`
	Fingerprint string         `json:"fingerprint"`
	Status      FileStatus     `json:"status"`
	Error       string         `json:"error,omitempty"`
	RawText     string         `json:"raw_text,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	UserID      int64          `json:"user_id"`
	CategoryID  int64          `json:"category_id,omitempty"`
	SourceID    int64          `json:"source_id,omitempty"`
	Category    *Category      `json:"category,omitempty"`
	Source      *Source        `json:"source,omitempty"`
	Tags        []TagLink      `json:"tags,omitempty"`
	UploadedAt  time.Time      `json:"uploaded_at"`
	ModifiedAt  time.Time      `json:"last_modified"`
}

// UploadRequest carries one incoming upload into the ingest use case.
// CategoryID and SourceID are optional; zero means unset.
type UploadRequest struct {
	OwnerID     int64
	Title       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	CategoryID  int64
	SourceID    int64
	ManualTags  []string
}

// IngestResult reports the outcome of one upload. Deduplicated is true when
// the fingerprint matched an already stored file; Record then points at the
// existing record and nothing new was written.
type IngestResult struct {
	Record       *FileRecord `json:"record"`
	Deduplicated bool        `json:"deduplicated"`
}

// Filter narrows file listings. Zero values mean "no constraint".
// Counterparty matches a tag name, same as the Tags entries.
type Filter struct {
	FileType     string
	Tags         []string
	Counterparty string
}
