package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// File stores each key as one JSON file inside dir.
type File struct{ dir string }

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// pathFor escapes the key so separators stay inside dir and names stay
// valid on filesystems that reject ':'.
func (s *File) pathFor(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

func (s *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *File) Put(_ context.Context, key string, value []byte) error {
	target := s.pathFor(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (s *File) Close() error { return nil }
