package recording

import (
	"errors"
	"sync"
)

// Mode identifies the kind of recording session in progress.
type Mode int

const (
	// ModeIdle means no recording is active.
	ModeIdle Mode = iota
	// ModeSeconds is an image-sequence recording bounded by seconds.
	ModeSeconds
	// ModeFrames is an image-sequence recording bounded by frame indices.
	ModeFrames
	// ModePipe is a video recording bounded by seconds and gated by the
	// encoder subprocess liveness.
	ModePipe
)

// ErrSessionActive is returned when a new session is started while a
// previous one is still active.
var ErrSessionActive = errors.New("recording session already active")

// Session tracks whether a time- or frame-bounded recording is active,
// derives progress and output frame indices, and decides when the session
// ends. At most one session is active at a time; starting a new one while
// active is rejected.
type Session struct {
	mu      sync.Mutex
	mode    Mode
	active  bool
	delta   float64 // frame interval, 1/fps
	counter int     // frames captured since start

	secStart float64
	secHead  float64
	secEnd   float64

	frameStart int
	frameHead  int
	frameEnd   int
}

// NewSession creates an idle session.
func NewSession() *Session {
	return &Session{delta: 1.0 / 24.0}
}

// StartSeconds begins a seconds-bounded image-sequence session.
func (s *Session) StartSeconds(start, end, fps float64) error {
	return s.start(ModeSeconds, start, end, 0, 0, fps)
}

// StartFrames begins a frame-bounded image-sequence session.
func (s *Session) StartFrames(start, end int, fps float64) error {
	return s.start(ModeFrames, 0, 0, start, end, fps)
}

// StartPipe begins a seconds-bounded video pipe session. The caller is
// responsible for having the encoder subprocess running first.
func (s *Session) StartPipe(start, end, fps float64) error {
	return s.start(ModePipe, start, end, 0, 0, fps)
}

func (s *Session) start(mode Mode, secStart, secEnd float64, frameStart, frameEnd int, fps float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return ErrSessionActive
	}
	if fps <= 0 {
		fps = 24
	}
	s.mode = mode
	s.active = true
	s.delta = 1.0 / fps
	s.counter = 0
	s.secStart, s.secHead, s.secEnd = secStart, secStart, secEnd
	s.frameStart, s.frameHead, s.frameEnd = frameStart, frameStart, frameEnd
	return nil
}

// Advance is invoked exactly once per produced frame. It increments the
// capture counter, advances the head, and deactivates the session when the
// head crosses the configured end. Image-sequence modes return to Idle
// immediately; pipe mode stays in ModePipe (inactive) until the recorder
// finishes draining and calls Reset.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}
	s.counter++
	switch s.mode {
	case ModeSeconds, ModePipe:
		s.secHead += s.delta
		if s.secHead >= s.secEnd {
			s.active = false
			if s.mode == ModeSeconds {
				s.mode = ModeIdle
			}
		}
	case ModeFrames:
		s.frameHead++
		if s.frameHead >= s.frameEnd {
			s.active = false
			s.mode = ModeIdle
		}
	}
}

// Deactivate marks the session inactive without resetting its heads, so
// progress stays derivable while queued frames drain.
func (s *Session) Deactivate() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// Reset returns the session to Idle and clears the capture counter.
func (s *Session) Reset() {
	s.mu.Lock()
	s.mode = ModeIdle
	s.active = false
	s.counter = 0
	s.mu.Unlock()
}

// IsActive is the single predicate all other components query to decide
// whether to keep capturing.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Mode returns the current session mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Progress returns the head position as a fraction in [0,1] relative to
// the session bounds. It returns 1.0 when idle and is monotonically
// non-decreasing during an active session.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p float64
	switch s.mode {
	case ModeSeconds, ModePipe:
		if s.secEnd <= s.secStart {
			return 1.0
		}
		p = (s.secHead - s.secStart) / (s.secEnd - s.secStart)
	case ModeFrames:
		if s.frameEnd <= s.frameStart {
			return 1.0
		}
		p = float64(s.frameHead-s.frameStart) / float64(s.frameEnd-s.frameStart)
	default:
		return 1.0
	}
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// Count returns the number of frames captured since the session started.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// Delta returns the frame interval in seconds.
func (s *Session) Delta() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delta
}

// OutputFrame returns the output frame index of the current head, used to
// name image-sequence files and for status display.
func (s *Session) OutputFrame() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ModeSeconds, ModePipe:
		return int(s.secStart/s.delta) + s.counter
	case ModeFrames:
		return s.frameHead
	default:
		return 0
	}
}

// OutputTime returns the output timestamp of the current head in seconds.
func (s *Session) OutputTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ModeSeconds, ModePipe:
		return s.secHead
	default:
		return float64(s.frameHead) * s.delta
	}
}
