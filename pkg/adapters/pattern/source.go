// Package pattern provides a synthetic frame source that renders an
// animated test card. It exercises the recording pipeline without a GPU
// renderer attached.
package pattern

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/user/framepipe/pkg/ports"
)

// Source implements ports.FrameSource with procedurally drawn RGB24 frames.
type Source struct {
	width  int
	height int
	fps    float64

	mu      sync.Mutex
	stop    chan struct{}
	stopped bool
}

// New creates a test-card source with the given geometry and frame rate.
func New(width, height int, fps float64) *Source {
	if fps <= 0 {
		fps = 24
	}
	return &Source{width: width, height: height, fps: fps}
}

// Dimensions returns the frame geometry.
func (s *Source) Dimensions() (int, int) {
	return s.width, s.height
}

// Start begins producing frames at the configured rate until the context
// is cancelled or Stop is called.
func (s *Source) Start(ctx context.Context) (<-chan ports.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return nil, fmt.Errorf("pattern source already started")
	}
	s.stop = make(chan struct{})
	s.stopped = false

	frames := make(chan ports.Frame, 1)
	interval := time.Duration(float64(time.Second) / s.fps)

	go func() {
		defer close(frames)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				// The consumer may walk away without draining; the send
				// must still yield to shutdown.
				select {
				case frames <- s.render(i):
				case <-ctx.Done():
					return
				case <-s.stop:
					return
				}
			}
		}
	}()

	return frames, nil
}

// Stop halts frame production.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil && !s.stopped {
		close(s.stop)
		s.stopped = true
	}
	return nil
}

// render draws one test-card frame: a phase-shifted gradient, a sweeping
// dot and the frame index, so consecutive frames are visually distinct.
func (s *Source) render(index int) ports.Frame {
	dc := gg.NewContext(s.width, s.height)
	t := float64(index) / s.fps
	phase := 0.5 + 0.5*math.Sin(t)

	// Background gradient drawn as horizontal bands; cheap and stable.
	for y := 0; y < s.height; y++ {
		f := float64(y) / float64(s.height)
		dc.SetRGB(0.1+0.4*phase, 0.1+0.6*f, 0.3+0.5*(1-f)*phase)
		dc.DrawLine(0, float64(y), float64(s.width), float64(y))
		dc.Stroke()
	}

	// Sweeping dot.
	cx := float64(s.width) * (0.5 + 0.4*math.Cos(2*math.Pi*t/4))
	cy := float64(s.height) * (0.5 + 0.4*math.Sin(2*math.Pi*t/4))
	dc.SetRGB(1, 1, 1)
	dc.DrawCircle(cx, cy, float64(s.height)/24)
	dc.Fill()

	// Frame index label.
	dc.SetRGB(1, 1, 1)
	dc.DrawString(fmt.Sprintf("frame %05d", index), 8, float64(s.height)-8)

	return ports.Frame{
		Width:    s.width,
		Height:   s.height,
		Channels: 3,
		Pixels:   toRGB24(dc.Image()),
	}
}

// toRGB24 flattens an image into a packed RGB byte buffer, channel order
// RGB, no padding, as the encoder pipe expects.
func toRGB24(img image.Image) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]byte, 0, w*h*3)
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < h; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			for x := 0; x < w*4; x += 4 {
				out = append(out, row[x], row[x+1], row[x+2])
			}
		}
		return out
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out = append(out, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}
	return out
}

// Ensure Source implements ports.FrameSource.
var _ ports.FrameSource = (*Source)(nil)
