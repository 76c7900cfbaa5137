package domain

import "io"

// ParsedDocument is the immutable result of parsing one source file.
// ID is the resolved absolute path of the parsed file; RawText has already
// been normalized by the parser.
type ParsedDocument struct {
	ID       string            `json:"id"`
	RawText  string            `json:"raw_text"`
	Metadata map[string]string `json:"metadata"`
}

// Upload is a streamed file upload without a guaranteed on-disk path.
// Size is the declared byte size, not a verified one.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
