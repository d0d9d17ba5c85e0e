package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rmitchellscott/palettedither/internal/config"
	"github.com/rmitchellscott/palettedither/internal/logging"
)

// OutputStorage stores encoded dither results
type OutputStorage struct {
	backend Backend
}

// NewOutputStorage wraps a backend
func NewOutputStorage(backend Backend) *OutputStorage {
	return &OutputStorage{backend: backend}
}

// DefaultOutputStorage stores below OUTPUT_DIR (default ./output)
func DefaultOutputStorage() *OutputStorage {
	return NewOutputStorage(NewFilesystemBackend(config.Get("OUTPUT_DIR", "output")))
}

// Store saves data under a content-addressed name and returns its key.
// Identical outputs map to the same key.
func (s *OutputStorage) Store(ctx context.Context, data []byte, prefix string) (string, error) {
	hash := sha256.Sum256(data)
	prefix = strings.Trim(strings.ReplaceAll(prefix, "/", "_"), "._ ")
	if prefix == "" {
		prefix = "dither"
	}
	key := fmt.Sprintf("%s_%x.png", prefix, hash[:8])

	if err := s.backend.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to store output: %w", err)
	}
	logging.InfoWithComponent(logging.ComponentStorage, "Stored output", "key", key, "bytes", len(data))
	return key, nil
}

// outputKey matches names produced by Store: a prefix without separators,
// an underscore and 16 hex digits of the content hash
var outputKey = regexp.MustCompile(`^[^/]+_[0-9a-f]{16}\.png$`)

// IsOutputKey reports whether key has the shape of a Store result at the
// storage root
func IsOutputKey(key string) bool {
	return outputKey.MatchString(key)
}

// Cleanup removes outputs written by Store that are older than maxAge and
// returns how many were removed. Other files, and anything in
// subdirectories, are left alone.
func (s *OutputStorage) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	files, err := s.backend.List(ctx, "")
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, f := range files {
		if !IsOutputKey(f.Key) || !f.ModTime.Before(cutoff) {
			continue
		}
		if err := s.backend.Delete(ctx, f.Key); err != nil {
			logging.WarnWithComponent(logging.ComponentStorage, "Failed to remove old output", "key", f.Key, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// WriteFile writes data to an explicit path through a backend rooted at the
// path's directory.
func WriteFile(ctx context.Context, outPath string, data []byte) error {
	dir, name := filepath.Split(outPath)
	if dir == "" {
		dir = "."
	}
	if name == "" {
		return fmt.Errorf("output path %q has no file name", outPath)
	}
	if err := NewFilesystemBackend(dir).Put(ctx, name, bytes.NewReader(data)); err != nil {
		return err
	}
	logging.InfoWithComponent(logging.ComponentStorage, "Wrote output", "path", outPath, "bytes", len(data))
	return nil
}
