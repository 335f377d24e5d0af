package ports

// EncoderSettings configures an external encoder subprocess.
type EncoderSettings struct {
	// BinaryPath is the path to the encoder binary. Empty means resolve a
	// well-known name ("ffmpeg") via the OS lookup chain.
	BinaryPath string

	// TargetPath is the output media file path. Required.
	TargetPath string

	// TargetArgs are free-form extra output arguments placed between the
	// pipe input and the output path.
	TargetArgs []string

	// SourceArgs are free-form extra input arguments placed before the
	// pipe input.
	SourceArgs []string

	// Width and Height are the source frame dimensions in pixels.
	Width  int
	Height int

	// Channels is the source channel count. The pipe format is fixed to
	// RGB24, so this is 3 for every piped frame.
	Channels int

	// FPS is the source frame rate; the frame interval is 1/FPS.
	FPS float64

	// Quiet adds a quiet-logging flag to the subprocess invocation.
	Quiet bool
}

// FrameBytes returns the exact byte count the subprocess expects per frame.
func (s EncoderSettings) FrameBytes() int {
	return s.Width * s.Height * s.Channels
}

// EncoderPipe owns the lifecycle of an external encoder subprocess that
// reads raw pixel bytes from its standard input.
type EncoderPipe interface {
	// Available reports whether an encoder binary can be resolved. When it
	// returns false, Start fails and no pipe recording can begin.
	Available() bool

	// Start spawns the subprocess. The settings' target path must already
	// be collision-resolved by the caller.
	Start(settings EncoderSettings) error

	// Write sends one frame's raw bytes down the pipe. A short or failed
	// write is reported to the caller but is not fatal to the subprocess.
	Write(p []byte) (int, error)

	// Close closes the pipe and waits for the subprocess to exit. A
	// non-zero exit status is returned as an error for the caller to log.
	Close() error

	// Running reports whether the subprocess has been started and not yet
	// closed.
	Running() bool
}
