// Package store resolves sample IDs to decoded PCM buffers. The
// scheduler looks samples up at clip start and treats a miss as a
// silent region rather than an error.
package store

import (
	"github.com/warpgrid/warpgrid/internal/pcm"
)

// Store validation errors
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	ErrSampleNotFound StoreError = "store: sample not found"
	ErrNilBuffer      StoreError = "store: buffer is nil"
)

// Store resolves sample IDs and accepts rendered buffers back.
type Store interface {
	// Sample returns the decoded buffer for id, or ErrSampleNotFound.
	Sample(id string) (*pcm.Buffer, error)
	// Register makes buf available under id, replacing any previous entry.
	Register(id string, buf *pcm.Buffer) error
}
