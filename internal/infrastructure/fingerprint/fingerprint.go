// Package fingerprint computes the content-independent dedup key of an
// upload from its declared identity: filename, MIME type and byte size.
package fingerprint

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

type Hasher struct {
	algorithm string
}

// New returns a Hasher for the given algorithm (sha256, sha1, md5).
// Unknown algorithms fall back to sha256.
func New(algorithm string) *Hasher {
	switch algorithm {
	case "sha1", "md5":
		return &Hasher{algorithm: algorithm}
	default:
		return &Hasher{algorithm: "sha256"}
	}
}

// Fingerprint hashes "filename|contentType|size". File content is
// deliberately not read: the dedup gate runs before the upload is stored.
func (h *Hasher) Fingerprint(filename, contentType string, size int64) string {
	meta := fmt.Sprintf("%s|%s|%d", filename, contentType, size)

	switch h.algorithm {
	case "sha1":
		sum := sha1.Sum([]byte(meta))
		return hex.EncodeToString(sum[:])
	case "md5":
		sum := md5.Sum([]byte(meta))
		return hex.EncodeToString(sum[:])
	default:
		sum := sha256.Sum256([]byte(meta))
		return hex.EncodeToString(sum[:])
	}
}
