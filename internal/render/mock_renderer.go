package render

import (
	"sync"

	"github.com/warpgrid/warpgrid/internal/timebase"
)

// MockCall records a method call for assertion
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockRenderer is a mock implementation of AudioRenderer for testing.
// It tracks every call and keeps the set of currently active playbacks
// so scheduler tests can assert on what is sounding.
type MockRenderer struct {
	mu sync.Mutex

	// Call tracking
	Calls []MockCall

	// Configurable function overrides - set these to customize behavior
	SchedulePlaybackFunc func(pb Playback) Handle
	StopPlaybackFunc     func(h Handle, at timebase.Seconds)

	active map[Handle]Playback
	stops  map[Handle]timebase.Seconds
}

var _ AudioRenderer = (*MockRenderer)(nil)

// NewMockRenderer creates a new mock renderer
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		Calls:  make([]MockCall, 0),
		active: make(map[Handle]Playback),
		stops:  make(map[Handle]timebase.Seconds),
	}
}

// recordCall records a method call for later assertion
func (m *MockRenderer) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// SchedulePlayback records the playback and returns a fresh handle.
func (m *MockRenderer) SchedulePlayback(pb Playback) Handle {
	m.recordCall("SchedulePlayback", pb)
	if m.SchedulePlaybackFunc != nil {
		return m.SchedulePlaybackFunc(pb)
	}
	h := NewHandle()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[h] = pb
	return h
}

// StopPlayback records the stop and retires the handle.
func (m *MockRenderer) StopPlayback(h Handle, at timebase.Seconds) {
	m.recordCall("StopPlayback", h, at)
	if m.StopPlaybackFunc != nil {
		m.StopPlaybackFunc(h, at)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.active[h]; ok {
		delete(m.active, h)
		m.stops[h] = at
	}
}

// ActiveCount returns how many playbacks have been scheduled and not
// yet stopped.
func (m *MockRenderer) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// ActivePlaybacks returns a copy of the playbacks still sounding.
func (m *MockRenderer) ActivePlaybacks() []Playback {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Playback, 0, len(m.active))
	for _, pb := range m.active {
		result = append(result, pb)
	}
	return result
}

// StopTimes returns a copy of the recorded stop times by handle.
func (m *MockRenderer) StopTimes() map[Handle]timebase.Seconds {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[Handle]timebase.Seconds, len(m.stops))
	for h, at := range m.stops {
		result[h] = at
	}
	return result
}

// GetCallsForMethod returns calls for a specific method
func (m *MockRenderer) GetCallsForMethod(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []MockCall
	for _, call := range m.Calls {
		if call.Method == method {
			result = append(result, call)
		}
	}
	return result
}

// Reset clears all recorded calls and active playbacks
func (m *MockRenderer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = make([]MockCall, 0)
	m.active = make(map[Handle]Playback)
	m.stops = make(map[Handle]timebase.Seconds)
}
