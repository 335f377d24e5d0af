package mocks

import (
	"sync"

	"github.com/user/framepipe/pkg/ports"
)

// ImageWriter is a mock implementation of ports.ImageWriter that records
// the paths written, with optional injected behavior.
type ImageWriter struct {
	mu    sync.Mutex
	paths []string

	WritePNGFunc func(path string, width, height int, pixels []byte) error
	WriteHDRFunc func(path string, width, height int, pixels []float32) error
}

func (m *ImageWriter) WritePNG(path string, width, height int, pixels []byte) error {
	var err error
	if m.WritePNGFunc != nil {
		err = m.WritePNGFunc(path, width, height, pixels)
	}
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	return err
}

func (m *ImageWriter) WriteHDR(path string, width, height int, pixels []float32) error {
	var err error
	if m.WriteHDRFunc != nil {
		err = m.WriteHDRFunc(path, width, height, pixels)
	}
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	return err
}

// Paths returns a copy of the recorded write paths.
func (m *ImageWriter) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.paths))
	copy(out, m.paths)
	return out
}

// Ensure ImageWriter implements ports.ImageWriter.
var _ ports.ImageWriter = (*ImageWriter)(nil)
