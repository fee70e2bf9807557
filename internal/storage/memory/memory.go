// Package memory is an in-process storage backend for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/retroconnect/idverify/internal/storage"
)

// Storage keeps objects in a map keyed by bucket/path.
type Storage struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// New returns an empty store whose public URLs start with baseURL.
func New(baseURL string) *Storage {
	return &Storage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Put(ctx context.Context, bucket, path string, payload []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := bucket + "/" + path

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; exists {
		return fmt.Errorf("put %s: object already exists", key)
	}
	s.objects[key] = append([]byte(nil), payload...)
	return nil
}

func (s *Storage) PublicURL(bucket, path string) string {
	return s.baseURL + "/" + url.PathEscape(bucket) + "/" + escapePath(path)
}

func (s *Storage) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.objects[bucket+"/"+path]
	if !ok {
		return nil, fmt.Errorf("download %s/%s: %w", bucket, path, storage.ErrObjectNotFound)
	}
	return append([]byte(nil), payload...), nil
}

// Len reports how many objects are stored.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
