// Package memory provides an in-memory part store used in tests and dry
// runs.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// BlobStore keeps written parts in memory, in write order.
type BlobStore struct {
	mu    sync.Mutex
	names []string
	parts map[string][]byte
}

// New creates an empty in-memory store.
func New() *BlobStore {
	return &BlobStore{parts: make(map[string][]byte)}
}

// WritePart records one part and returns a mem:// URI.
func (s *BlobStore) WritePart(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.parts[name]; !dup {
		s.names = append(s.names, name)
	}
	s.parts[name] = append([]byte(nil), data...)
	return "mem://" + name, nil
}

// Part returns the stored bytes for name.
func (s *BlobStore) Part(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.parts[name]
	return data, ok
}

// Names returns part names in write order.
func (s *BlobStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}
