// Package storage persists serialized selection maps under string keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wowtoc/internal/config"
)

// ErrUnknownDriver is returned by Open for an unsupported storage.driver.
var ErrUnknownDriver = errors.New("unknown storage driver")

// KV is a minimal byte-oriented key-value store.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open builds the backend selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg config.Config) (KV, error) {
	var (
		kv  KV
		err error
	)
	switch cfg.Storage.Driver {
	case "memory":
		return NewMemory(), nil
	case "file":
		kv, err = NewFile(cfg.Storage.FileDir)
	case "redis":
		kv, err = NewRedis(ctx, cfg)
	case "postgres":
		kv, err = New(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}
	return kv, nil
}

// Memory keeps values in process memory.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{m: map[string][]byte{}}
}

func (s *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *Memory) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *Memory) Close() error { return nil }
