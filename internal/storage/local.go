package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore keeps documents as files under a directory.
type LocalStore struct {
	dir string
	log *zap.Logger
}

// NewLocalStore returns a LocalStore rooted at dir, creating it if needed.
func NewLocalStore(dir string, log *zap.Logger) (*LocalStore, error) {
	s := &LocalStore{dir: filepath.Clean(dir), log: log}
	if err := s.ensureDir(s.dir); err != nil {
		return nil, err
	}
	return s, nil
}

// ensureDir checks if a directory exists, and if not, creates it.
func (s *LocalStore) ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		s.log.Info("creating directory", zap.String("dir", dir))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	return nil
}

// Put writes data to <dir>/<key> through a temp file and rename, so a reader
// sees either the previous document or the new one.
func (s *LocalStore) Put(_ context.Context, key string, data []byte) (string, error) {
	dest := filepath.Join(s.dir, filepath.Base(key))
	if err := s.ensureDir(s.dir); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		if removeErr := os.Remove(tmpName); removeErr != nil {
			s.log.Warn("failed to remove temp file", zap.String("path", tmpName), zap.Error(removeErr))
		}
		return "", fmt.Errorf("move document into place: %w", err)
	}
	return dest, nil
}

// Open opens a document previously written by Put. Paths outside the store
// directory are treated as missing.
func (s *LocalStore) Open(_ context.Context, path string) (io.ReadCloser, int64, error) {
	clean := filepath.Clean(path)
	if filepath.Dir(clean) != s.dir || strings.HasPrefix(filepath.Base(clean), ".") {
		return nil, 0, ErrNotFound
	}

	f, err := os.Open(clean)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("open document: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat document: %w", err)
	}
	return f, info.Size(), nil
}
