package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const timestampLayout = "20060102150405"

// UploadStore keeps a copy of every uploaded label photograph
type UploadStore struct {
	dir string
	now func() time.Time
}

// NewUploadStore creates a store rooted at dir, creating it if needed
func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &UploadStore{dir: dir, now: time.Now}, nil
}

// Dir returns the upload directory
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes data as <timestamp>_<name> and returns the file path
func (s *UploadStore) Save(name string, data []byte) (string, error) {
	fileName := s.now().Format(timestampLayout) + "_" + sanitizeName(name)
	path := filepath.Join(s.dir, fileName)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save upload: %w", err)
	}
	return path, nil
}

// sanitizeName keeps the base name only and replaces anything outside
// letters, digits, dot, dash and underscore
func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
