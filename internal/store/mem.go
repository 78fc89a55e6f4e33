package store

import (
	"sync"

	"github.com/warpgrid/warpgrid/internal/pcm"
)

// MemStore keeps samples in memory. It is the store used by tests and
// by the render queue for stretch results.
type MemStore struct {
	mu      sync.RWMutex
	samples map[string]*pcm.Buffer
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{samples: make(map[string]*pcm.Buffer)}
}

// Sample returns the buffer registered under id.
func (s *MemStore) Sample(id string) (*pcm.Buffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.samples[id]
	if !ok {
		return nil, ErrSampleNotFound
	}
	return buf, nil
}

// Register stores buf under id.
func (s *MemStore) Register(id string, buf *pcm.Buffer) error {
	if buf == nil {
		return ErrNilBuffer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[id] = buf
	return nil
}

// Len returns the number of registered samples.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}
