package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/warpgrid/warpgrid/internal/logger"
	"github.com/warpgrid/warpgrid/internal/metrics"
	"github.com/warpgrid/warpgrid/internal/pcm"
)

// DirStore resolves sample IDs against WAV files in a directory,
// caching decoded buffers. Registered buffers shadow files with the
// same ID.
type DirStore struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]*pcm.Buffer
}

var _ Store = (*DirStore)(nil)

// NewDirStore creates a store rooted at dir. The directory does not
// need to exist until the first lookup.
func NewDirStore(dir string) *DirStore {
	return &DirStore{
		dir:   dir,
		cache: make(map[string]*pcm.Buffer),
	}
}

// Sample returns the cached buffer for id, decoding <dir>/<id>.wav on
// the first lookup.
func (s *DirStore) Sample(id string) (*pcm.Buffer, error) {
	s.mu.RLock()
	buf, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return buf, nil
	}

	path := filepath.Join(s.dir, id)
	if filepath.Ext(path) == "" {
		path += ".wav"
	}

	buf, err := LoadWAV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSampleNotFound
		}
		return nil, err
	}

	logger.Debug("sample decoded",
		logger.WithSample(id),
		zap.Int("frames", buf.Frames()),
		zap.Int("sample_rate", buf.SampleRate))
	metrics.Get().SamplesDecoded.Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have decoded the same file meanwhile.
	if cached, ok := s.cache[id]; ok {
		return cached, nil
	}
	s.cache[id] = buf
	return buf, nil
}

// Register caches buf under id without touching the filesystem.
func (s *DirStore) Register(id string, buf *pcm.Buffer) error {
	if buf == nil {
		return ErrNilBuffer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[id] = buf
	return nil
}

// LoadWAV decodes a WAV file into a planar buffer.
func LoadWAV(path string) (*pcm.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	intBuf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio buffer: %w", err)
	}
	if intBuf == nil || len(intBuf.Data) == 0 {
		return nil, fmt.Errorf("empty audio buffer: %s", path)
	}

	return pcm.FromIntBuffer(intBuf), nil
}

// SaveWAV encodes buf as a 16 bit WAV file.
func SaveWAV(path string, buf *pcm.Buffer) error {
	if buf == nil {
		return ErrNilBuffer
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, buf.SampleRate, 16, buf.NumChannels(), 1)
	if err := enc.Write(buf.IntBuffer(16)); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write WAV file: %w", err)
	}
	// Close finalizes the RIFF header, so its error matters.
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}
