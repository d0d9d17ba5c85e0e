package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileInfo describes a stored output file
type FileInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Backend is where rendered outputs end up
type Backend interface {
	Put(ctx context.Context, key string, reader io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]FileInfo, error)
}

// FilesystemBackend stores files below a root directory
type FilesystemBackend struct {
	dataDir string
}

// NewFilesystemBackend creates a new filesystem storage backend
func NewFilesystemBackend(dataDir string) *FilesystemBackend {
	return &FilesystemBackend{dataDir: dataDir}
}

func (f *FilesystemBackend) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.dataDir, clean), nil
}

// Put writes the reader to key. The data goes to a temporary file first and is
// renamed into place, so readers never observe a partial file.
func (f *FilesystemBackend) Put(ctx context.Context, key string, reader io.Reader) error {
	fullPath, err := f.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", tmpPath, err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file %s: %w", fullPath, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place %s: %w", fullPath, err)
	}
	return nil
}

// Get opens the file stored under key
func (f *FilesystemBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := f.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fullPath, err)
	}
	return file, nil
}

// Delete removes a file. Missing files are not an error.
func (f *FilesystemBackend) Delete(ctx context.Context, key string) error {
	fullPath, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

// List returns the files whose key starts with prefix, sorted by key
func (f *FilesystemBackend) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(f.dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(f.dataDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !strings.HasPrefix(rel, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Key: rel, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}
