// Package screencast provides a frame source that captures a live web page
// through the Chrome DevTools screencast, letting the recording pipeline
// treat a browser as the renderer.
package screencast

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/image/draw"

	"github.com/user/framepipe/pkg/ports"
)

// Options configures the screencast source.
type Options struct {
	// URL is the page to capture. Required.
	URL string

	// Width and Height are the output frame geometry; captured frames are
	// scaled to fit.
	Width  int
	Height int

	// Quality is the screencast JPEG quality (1-100, default 80).
	Quality int

	// ChromePath overrides Chrome executable resolution.
	ChromePath string

	// Logger receives capture diagnostics.
	Logger ports.Logger
}

// Source implements ports.FrameSource on a Chrome screencast.
type Source struct {
	opts   Options
	logger ports.Logger

	mu          sync.Mutex
	allocCancel context.CancelFunc
	cancel      context.CancelFunc
	browserCtx  context.Context
	frames      chan ports.Frame
	active      bool
}

// New creates a screencast source.
func New(opts Options) *Source {
	if opts.Quality <= 0 {
		opts.Quality = 80
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Source{opts: opts, logger: logger.WithComponent("screencast")}
}

// Dimensions returns the output frame geometry.
func (s *Source) Dimensions() (int, int) {
	return s.opts.Width, s.opts.Height
}

// Start launches Chrome, navigates to the page and begins the screencast.
// Frames arrive scaled to the configured geometry as packed RGB24.
func (s *Source) Start(ctx context.Context) (<-chan ports.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return nil, fmt.Errorf("screencast already active")
	}
	if s.opts.URL == "" {
		return nil, fmt.Errorf("screencast URL is not set")
	}

	chromePath := ResolveChromePath(s.opts.ChromePath)
	if chromePath == "" {
		return nil, fmt.Errorf("chrome not found: install Chrome/Chromium or set CHROME_PATH")
	}

	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(s.opts.Width, s.opts.Height),
		chromedp.Flag("window-size", fmt.Sprintf("%d,%d", s.opts.Width, s.opts.Height)),
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedpOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	s.frames = make(chan ports.Frame, 8)
	s.active = true
	s.allocCancel = allocCancel
	s.cancel = cancel
	s.browserCtx = browserCtx

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		e, ok := ev.(*page.EventScreencastFrame)
		if !ok {
			return
		}
		// Acknowledge first so Chrome keeps sending even if decode fails.
		go chromedp.Run(browserCtx, page.ScreencastFrameAck(e.SessionID))

		frame, err := s.decode(e.Data)
		if err != nil {
			s.logger.Debug("Dropping undecodable frame: %s", err)
			return
		}

		s.mu.Lock()
		if s.active {
			select {
			case s.frames <- frame:
			default:
				// Consumer is behind; skip rather than block the event loop.
			}
		}
		s.mu.Unlock()
	})

	s.logger.Debug("Starting screencast")
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.opts.URL),
		page.StartScreencast().
			WithFormat(page.ScreencastFormatJpeg).
			WithQuality(int64(s.opts.Quality)).
			WithEveryNthFrame(1),
	)
	if err != nil {
		s.active = false
		close(s.frames)
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start screencast: %w", err)
	}

	return s.frames, nil
}

// Stop halts the screencast and shuts the browser down.
func (s *Source) Stop() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	// Flip first so the frame listener stops sending; the DevTools call
	// below must run unlocked or it would contend with the listener.
	s.active = false
	browserCtx := s.browserCtx
	s.mu.Unlock()

	// Bounded so a wedged browser cannot hang shutdown.
	stopCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	defer cancel()
	chromedp.Run(stopCtx, page.StopScreencast())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	close(s.frames)
	s.logger.Debug("Screencast stopped")
	return nil
}

// decode turns one base64 JPEG screencast payload into a packed RGB24
// frame at the configured geometry.
func (s *Source) decode(data string) (ports.Frame, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return ports.Frame{}, fmt.Errorf("base64: %w", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		return ports.Frame{}, fmt.Errorf("jpeg: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.opts.Width, s.opts.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	pixels := make([]byte, 0, s.opts.Width*s.opts.Height*3)
	for i := 0; i < len(dst.Pix); i += 4 {
		pixels = append(pixels, dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2])
	}
	return ports.Frame{
		Width:    s.opts.Width,
		Height:   s.opts.Height,
		Channels: 3,
		Pixels:   pixels,
	}, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithComponent(string) ports.Logger {
	return noopLogger{}
}

// Ensure Source implements ports.FrameSource.
var _ ports.FrameSource = (*Source)(nil)
