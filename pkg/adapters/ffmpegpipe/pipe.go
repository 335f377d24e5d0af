// Package ffmpegpipe provides an encoder subprocess handle that feeds raw
// RGB24 frames to ffmpeg over its standard input.
package ffmpegpipe

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/user/framepipe/pkg/ports"
)

// Pipe implements ports.EncoderPipe on an ffmpeg subprocess.
type Pipe struct {
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  bytes.Buffer
	running bool
}

// New creates an unstarted Pipe.
func New() *Pipe {
	return &Pipe{}
}

// Available reports whether an ffmpeg binary can be resolved. When it
// returns false every pipe recording attempt fails cleanly.
func (p *Pipe) Available() bool {
	_, err := FindFFmpeg("")
	return err == nil
}

// BuildArgs assembles the order-sensitive subprocess argument list:
// overwrite flag, disabled audio, optional quiet logging, input frame
// rate/resolution/format/pixel format, custom input args, the pipe input,
// custom output args, and the output path.
func BuildArgs(s ports.EncoderSettings) []string {
	args := []string{
		"-y",
		"-an",
	}
	if s.Quiet {
		args = append(args, "-loglevel", "quiet")
	}
	args = append(args,
		"-r", fmt.Sprintf("%g", s.FPS),
		"-s", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
	)
	args = append(args, s.SourceArgs...)
	args = append(args, "-i", "pipe:0")
	args = append(args, s.TargetArgs...)
	args = append(args, s.TargetPath)
	return args
}

// Start spawns the ffmpeg subprocess. On failure no process is left
// running and the handle can be started again.
func (p *Pipe) Start(settings ports.EncoderSettings) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("encoder already running")
	}

	binary, err := FindFFmpeg(settings.BinaryPath)
	if err != nil {
		return err
	}

	cmd := exec.Command(binary, BuildArgs(settings)...)
	p.stderr.Reset()
	cmd.Stderr = &p.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("start %s: %w", binary, err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.running = true
	return nil
}

// Write sends one frame's raw bytes down the pipe.
func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	stdin := p.stdin
	p.mu.Unlock()

	if stdin == nil {
		return 0, fmt.Errorf("encoder pipe is not open")
	}
	return stdin.Write(b)
}

// Running reports whether the subprocess has been started and not closed.
func (p *Pipe) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Close closes the pipe and waits for the subprocess to exit. A non-zero
// exit status is returned as an error carrying the captured stderr; the
// output file may still be malformed and that is surfaced only this way.
func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	if p.stdin != nil {
		p.stdin.Close()
		p.stdin = nil
	}

	err := p.cmd.Wait()
	p.cmd = nil
	if err != nil {
		if msg := bytes.TrimSpace(p.stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("encoding failed: %w: %s", err, msg)
		}
		return fmt.Errorf("encoding failed: %w", err)
	}
	return nil
}

// Ensure Pipe implements ports.EncoderPipe.
var _ ports.EncoderPipe = (*Pipe)(nil)
