package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Store persists uploaded originals. The only implementation writes to a
// local directory; uploads are never persisted anywhere else.
type Store interface {
	Save(ctx context.Context, originalName string, data []byte) (SavedFile, error)
}

type SavedFile struct {
	StoredName string
	Path       string
}

type localStore struct {
	dir     string
	log     *zap.Logger
	counter atomic.Uint64
}

func NewLocalStore(dir string, log *zap.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &localStore{dir: dir, log: log}, nil
}

// Save writes data under a collision-avoiding name built from a timestamp,
// a per-process ordinal and the sanitized original filename.
func (s *localStore) Save(ctx context.Context, originalName string, data []byte) (SavedFile, error) {
	if err := ctx.Err(); err != nil {
		return SavedFile{}, err
	}

	ordinal := s.counter.Add(1)
	storedName := fmt.Sprintf("%d_%d_%s", time.Now().UnixNano(), ordinal, SanitizeFilename(originalName))
	path := filepath.Join(s.dir, storedName)

	if err := os.WriteFile(path, data, 0644); err != nil {
		s.log.Error("Failed to write uploaded file",
			zap.String("path", path),
			zap.Error(err))
		return SavedFile{}, fmt.Errorf("failed to store %s: %w", originalName, err)
	}

	s.log.Info("File stored",
		zap.String("original", originalName),
		zap.String("stored", storedName),
		zap.Int("size", len(data)))

	return SavedFile{StoredName: storedName, Path: path}, nil
}

// SanitizeFilename strips path components and replaces characters that are
// unsafe in filenames with underscores.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "upload"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
