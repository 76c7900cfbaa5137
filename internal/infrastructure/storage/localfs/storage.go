package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Storage keeps uploaded documents on the local filesystem, one
// directory per owner. Stored names are timestamped so concurrent
// uploads of identically named files never collide.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Save(_ context.Context, ownerID int64, originalFilename string, data io.Reader) (string, error) {
	dir := filepath.Join(s.basePath, strconv.FormatInt(ownerID, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create owner dir: %w", err)
	}

	path := filepath.Join(dir, storedName(originalFilename, time.Now().UTC()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *Storage) Delete(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func storedName(originalFilename string, now time.Time) string {
	ext := filepath.Ext(originalFilename)
	return fmt.Sprintf("file_%s_%06d%s", now.Format("20060102_150405"), now.Nanosecond()/1000, ext)
}
