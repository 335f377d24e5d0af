package mocks

import (
	"sync"

	"github.com/user/framepipe/pkg/ports"
)

// EncoderPipe is a mock implementation of ports.EncoderPipe that records
// every frame written to it.
type EncoderPipe struct {
	mu      sync.Mutex
	running bool
	writes  [][]byte

	AvailableFunc func() bool
	StartFunc     func(settings ports.EncoderSettings) error
	WriteFunc     func(p []byte) (int, error)
	CloseFunc     func() error

	// Recorded calls for verification
	StartCalls []ports.EncoderSettings
	CloseCalls int
}

func (m *EncoderPipe) Available() bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return true
}

func (m *EncoderPipe) Start(settings ports.EncoderSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls = append(m.StartCalls, settings)
	if m.StartFunc != nil {
		if err := m.StartFunc(settings); err != nil {
			return err
		}
	}
	m.running = true
	return nil
}

func (m *EncoderPipe) Write(p []byte) (int, error) {
	if m.WriteFunc != nil {
		return m.WriteFunc(p)
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	m.mu.Lock()
	m.writes = append(m.writes, buf)
	m.mu.Unlock()
	return len(p), nil
}

func (m *EncoderPipe) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	m.running = false
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *EncoderPipe) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Writes returns a copy of the recorded frame writes in order.
func (m *EncoderPipe) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

// WriteCount returns the number of recorded frame writes.
func (m *EncoderPipe) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

// Ensure EncoderPipe implements ports.EncoderPipe.
var _ ports.EncoderPipe = (*EncoderPipe)(nil)
