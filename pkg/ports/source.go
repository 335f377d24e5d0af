// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// Frame is one owned raster buffer captured from a frame source for a
// single output time-step. Ownership transfers fully to whichever queue
// accepts it; the producer must not touch Pixels afterwards.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}

// ByteLen returns the expected byte length of the frame (width * height * channels).
func (f Frame) ByteLen() int {
	return f.Width * f.Height * f.Channels
}

// FrameSource abstracts a real-time renderer that produces raw pixel frames.
type FrameSource interface {
	// Start begins frame production and returns a channel delivering frames
	// in capture order. The channel is closed when the source stops or the
	// context is cancelled.
	Start(ctx context.Context) (<-chan Frame, error)

	// Stop halts frame production and releases source resources.
	Stop() error

	// Dimensions returns the width and height of produced frames.
	Dimensions() (width, height int)
}
