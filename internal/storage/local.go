package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// membersDir is the subdirectory holding member documents, one directory
// per member keyed by the member's database id. Uploads are staged under a
// temp_* directory until the record exists.
const membersDir = "members"

const tempPrefix = "temp_"

// LocalStorage handles file storage on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Ensure the base directory exists
	if err := os.MkdirAll(filepath.Join(basePath, membersDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// NewTempDir creates a staging directory for one registration attempt and
// returns its path relative to the storage root. The name combines a
// timestamp with request-local randomness so concurrent submissions never
// share a directory.
func (s *LocalStorage) NewTempDir() (string, error) {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	rel := filepath.Join(membersDir, fmt.Sprintf("%s%d_%s", tempPrefix, time.Now().Unix(), suffix))
	if err := os.MkdirAll(filepath.Join(s.basePath, rel), 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	return rel, nil
}

// SaveUpload writes an uploaded file into dir under a randomized name and
// returns the stored file's path relative to the storage root.
func (s *LocalStorage) SaveUpload(file multipart.File, header *multipart.FileHeader, dir, fieldKey string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := fmt.Sprintf("%s_%d_%s%s", fieldKey, time.Now().Unix(), randomHex(8), ext)
	relPath := filepath.Join(dir, filename)

	dst, err := os.Create(filepath.Join(s.basePath, relPath))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(filepath.Join(s.basePath, relPath))
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return relPath, nil
}

// SaveBytes writes data into dir under the given filename and returns the
// stored file's path relative to the storage root.
func (s *LocalStorage) SaveBytes(data []byte, dir, filename string) (string, error) {
	relPath := filepath.Join(dir, filename)
	if err := os.WriteFile(filepath.Join(s.basePath, relPath), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return relPath, nil
}

// Promote renames a staging directory to the permanent member directory and
// returns the new directory path relative to the storage root.
func (s *LocalStorage) Promote(tempDir string, memberID uint) (string, error) {
	newRel := filepath.Join(membersDir, fmt.Sprintf("%d", memberID))
	if err := os.Rename(filepath.Join(s.basePath, tempDir), filepath.Join(s.basePath, newRel)); err != nil {
		return "", fmt.Errorf("failed to promote upload directory: %w", err)
	}
	return newRel, nil
}

// Rebase rewrites a stored file path from its staging directory to the
// promoted directory.
func Rebase(relPath, tempDir, newDir string) string {
	return strings.Replace(relPath, tempDir, newDir, 1)
}

// Purge removes a staging directory and everything in it. Safe to call on a
// directory that no longer exists.
func (s *LocalStorage) Purge(tempDir string) error {
	if tempDir == "" || !strings.Contains(filepath.Base(tempDir), tempPrefix) {
		return fmt.Errorf("refusing to purge non-temp directory %q", tempDir)
	}
	err := os.RemoveAll(filepath.Join(s.basePath, tempDir))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SweepStaleTempDirs removes staging directories untouched for longer than
// maxAge. These are orphans from requests that died before cleanup ran.
// Returns the number of directories removed.
func (s *LocalStorage) SweepStaleTempDirs(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, membersDir))
	if err != nil {
		return 0, err
	}

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := s.Purge(filepath.Join(membersDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Download returns a file for reading
func (s *LocalStorage) Download(relativePath string) (*os.File, error) {
	return os.Open(filepath.Join(s.basePath, relativePath))
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	_, err := os.Stat(filepath.Join(s.basePath, relativePath))
	return err == nil
}

// GetFullPath returns the absolute path for serving files
func (s *LocalStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.basePath, relativePath)
}

// randomHex returns n random bytes hex-encoded
func randomHex(n int) string {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
