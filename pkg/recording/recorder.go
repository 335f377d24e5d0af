package recording

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/framepipe/pkg/ports"
)

var (
	// ErrAlreadyRecording is returned when a pipe recording is opened
	// while a session is still active.
	ErrAlreadyRecording = errors.New("recording already started")
	// ErrQueueNotDrained is returned when a pipe recording is opened
	// before the previous recording's queue has fully flushed.
	ErrQueueNotDrained = errors.New("previous recording is still processing")
	// ErrEmptyTargetPath is returned when no output path is set.
	ErrEmptyTargetPath = errors.New("output path is not set")
	// ErrNotRecording is returned by Close when no pipe recording was opened.
	ErrNotRecording = errors.New("not in recording mode")
)

// pollInterval bounds the CPU burn of the writer's pacing loop. The loop
// polls rather than blocking on a primitive so the producer-side contract
// stays wait-free; the cost is up to pollInterval of extra latency per
// frame.
const pollInterval = 500 * time.Microsecond

// Recorder owns one pipe recording at a time: the frame queue, the encoder
// subprocess handle and the single writer goroutine that drains the queue
// into the subprocess at the encoder's nominal frame interval.
type Recorder struct {
	session *Session
	queue   *FrameQueue
	pipe    ports.EncoderPipe
	fs      ports.FileSystem
	logger  ports.Logger

	mu         sync.Mutex
	settings   ports.EncoderSettings
	interval   time.Duration
	writerDone chan struct{}
}

// New creates a Recorder with an idle session and an empty queue.
func New(pipe ports.EncoderPipe, fs ports.FileSystem, logger ports.Logger) *Recorder {
	return &Recorder{
		session: NewSession(),
		queue:   NewFrameQueue(),
		pipe:    pipe,
		fs:      fs,
		logger:  logger.WithComponent("recorder"),
	}
}

// Session exposes the session state machine for capture drivers.
func (r *Recorder) Session() *Session {
	return r.session
}

// QueueDepth returns the number of frames awaiting encoding.
func (r *Recorder) QueueDepth() int {
	return r.queue.Size()
}

// TargetPath returns the collision-resolved output path of the current or
// last recording.
func (r *Recorder) TargetPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings.TargetPath
}

// OpenPipe validates settings, resolves output-name collisions, spawns the
// encoder subprocess, marks the session active and starts the writer
// goroutine. On any failure the state remains Idle and no goroutine is
// started.
func (r *Recorder) OpenPipe(settings ports.EncoderSettings, startSec, endSec float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.IsActive() {
		return ErrAlreadyRecording
	}
	if r.queue.Size() > 0 {
		return ErrQueueNotDrained
	}
	if settings.TargetPath == "" {
		return ErrEmptyTargetPath
	}
	if settings.Channels <= 0 {
		settings.Channels = 3
	}
	if settings.FPS <= 0 {
		settings.FPS = 24
	}

	resolved, err := ResolvePath(r.fs, settings.TargetPath)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	if resolved != settings.TargetPath {
		r.logger.Info("Output %s already exists, saving to %s instead", settings.TargetPath, resolved)
		settings.TargetPath = resolved
	}

	if err := r.pipe.Start(settings); err != nil {
		return fmt.Errorf("start encoder: %w", err)
	}

	// Join the previous writer before starting a new one so two writers
	// never run against the same subprocess handle.
	if r.writerDone != nil {
		<-r.writerDone
	}

	if err := r.session.StartPipe(startSec, endSec, settings.FPS); err != nil {
		r.pipe.Close()
		return err
	}

	r.settings = settings
	r.interval = time.Duration(float64(time.Second) / settings.FPS)
	r.writerDone = make(chan struct{})
	go r.drain(r.writerDone)

	r.logger.Debug("Recording %s at %.2f fps (%dx%d)", settings.TargetPath, settings.FPS, settings.Width, settings.Height)
	return nil
}

// AddFrame transfers ownership of one frame into the queue. It never
// blocks the caller. It returns false, with a warning, when no pipe
// recording is active or the subprocess is gone.
func (r *Recorder) AddFrame(f ports.Frame) bool {
	if r.session.Mode() != ModePipe || !r.session.IsActive() {
		r.logger.Warn("Can't add new frame: not in recording mode")
		return false
	}
	if !r.pipe.Running() {
		r.logger.Warn("Can't add new frame: encoder pipe is not running")
		return false
	}
	r.queue.Produce(f)
	return true
}

// drain runs on the single writer goroutine. It loops while the session is
// active or the queue is non-empty, which guarantees a final flush after
// the session deactivates: the goroutine exits only once recording is
// inactive and every queued frame has been written.
func (r *Recorder) drain(done chan struct{}) {
	defer close(done)

	// Pacing measures elapsed time against the previous write, not a
	// fixed schedule anchored at the session start; under sustained
	// overload the output drifts late rather than bursting.
	last := time.Now()
	stopNoticed := false
	for r.session.IsActive() || r.queue.Size() > 0 {
		if r.queue.Size() == 0 || time.Since(last) < r.interval {
			time.Sleep(pollInterval)
			continue
		}

		if !stopNoticed && !r.session.IsActive() {
			r.logger.Info("Recording stopped, still processing %d frames", r.queue.Size())
			stopNoticed = true
		}

		frame, ok := r.queue.Consume()
		if !ok {
			continue
		}
		n, err := r.pipe.Write(frame.Pixels)
		if err != nil {
			r.logger.Warn("Unable to write the frame: %s", err)
		} else if n <= 0 {
			r.logger.Warn("Unable to write the frame")
		}
		last = time.Now()
	}
}

// Close ends the pipe recording: it marks the session inactive, blocks
// until the writer goroutine has flushed the queue and exited, then closes
// the subprocess pipe. A non-zero subprocess exit status is logged as an
// encoding error, not returned as a failure.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writerDone == nil && !r.pipe.Running() {
		return ErrNotRecording
	}

	r.session.Deactivate()
	if r.writerDone != nil {
		<-r.writerDone
		r.writerDone = nil
	}

	if r.pipe.Running() {
		if err := r.pipe.Close(); err != nil {
			r.logger.Error("Encoder exited with error: %s", err)
		} else {
			r.logger.Info("Finished saving %s", r.settings.TargetPath)
		}
	}

	r.session.Reset()
	return nil
}
