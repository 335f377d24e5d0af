package recording

import (
	"errors"
	"testing"

	"github.com/user/framepipe/pkg/adapters/logger"
	"github.com/user/framepipe/pkg/mocks"
	"github.com/user/framepipe/pkg/ports"
)

func pipeSettings(path string) ports.EncoderSettings {
	return ports.EncoderSettings{
		TargetPath: path,
		Width:      2,
		Height:     1,
		Channels:   3,
		FPS:        1000,
	}
}

func TestRecorderWritesFramesInOrder(t *testing.T) {
	pipe := &mocks.EncoderPipe{}
	rec := New(pipe, mocks.NewFileSystem(), logger.NewNoop())

	if err := rec.OpenPipe(pipeSettings("out.mp4"), 0, 100); err != nil {
		t.Fatalf("OpenPipe failed: %v", err)
	}

	for i := byte(0); i < 5; i++ {
		if !rec.AddFrame(frameWithMarker(i)) {
			t.Fatalf("AddFrame %d rejected", i)
		}
		rec.Session().Advance()
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	writes := pipe.Writes()
	if len(writes) != 5 {
		t.Fatalf("expected 5 writes, got %d", len(writes))
	}
	for i := byte(0); i < 5; i++ {
		if writes[i][0] != i {
			t.Errorf("write %d has marker %d, want %d", i, writes[i][0], i)
		}
	}
}

func TestRecorderFlushesQueueOnClose(t *testing.T) {
	pipe := &mocks.EncoderPipe{}
	rec := New(pipe, mocks.NewFileSystem(), logger.NewNoop())

	if err := rec.OpenPipe(pipeSettings("out.mp4"), 0, 100); err != nil {
		t.Fatalf("OpenPipe failed: %v", err)
	}

	// Produce far faster than the writer can pace, then stop immediately.
	// Every accepted frame must still reach the pipe.
	const total = 20
	for i := 0; i < total; i++ {
		rec.AddFrame(frameWithMarker(byte(i)))
		rec.Session().Advance()
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := pipe.WriteCount(); got != total {
		t.Errorf("expected %d writes after close, got %d", total, got)
	}
	if rec.QueueDepth() != 0 {
		t.Errorf("expected empty queue after close, got %d", rec.QueueDepth())
	}
	if pipe.CloseCalls != 1 {
		t.Errorf("expected 1 pipe close, got %d", pipe.CloseCalls)
	}
}

func TestRecorderRejectsOverlap(t *testing.T) {
	pipe := &mocks.EncoderPipe{}
	rec := New(pipe, mocks.NewFileSystem(), logger.NewNoop())

	if err := rec.OpenPipe(pipeSettings("a.mp4"), 0, 100); err != nil {
		t.Fatalf("first OpenPipe failed: %v", err)
	}
	if err := rec.OpenPipe(pipeSettings("b.mp4"), 0, 100); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("expected ErrAlreadyRecording, got %v", err)
	}
	if len(pipe.StartCalls) != 1 {
		t.Errorf("expected a single subprocess start, got %d", len(pipe.StartCalls))
	}
	rec.Close()
}

func TestRecorderRejectsEmptyPath(t *testing.T) {
	rec := New(&mocks.EncoderPipe{}, mocks.NewFileSystem(), logger.NewNoop())
	if err := rec.OpenPipe(pipeSettings(""), 0, 100); !errors.Is(err, ErrEmptyTargetPath) {
		t.Errorf("expected ErrEmptyTargetPath, got %v", err)
	}
}

func TestRecorderSpawnFailureLeavesIdle(t *testing.T) {
	pipe := &mocks.EncoderPipe{
		StartFunc: func(ports.EncoderSettings) error {
			return errors.New("spawn failed")
		},
	}
	rec := New(pipe, mocks.NewFileSystem(), logger.NewNoop())

	if err := rec.OpenPipe(pipeSettings("out.mp4"), 0, 100); err == nil {
		t.Fatal("expected error from spawn failure")
	}
	if rec.Session().IsActive() {
		t.Error("expected idle session after spawn failure")
	}
	if rec.Session().Mode() != ModeIdle {
		t.Errorf("expected ModeIdle, got %v", rec.Session().Mode())
	}
	if err := rec.Close(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("expected ErrNotRecording, got %v", err)
	}
}

func TestRecorderResolvesNameCollision(t *testing.T) {
	pipe := &mocks.EncoderPipe{}
	fs := mocks.NewFileSystem()
	fs.Put("out.mp4", nil)
	rec := New(pipe, fs, logger.NewNoop())

	if err := rec.OpenPipe(pipeSettings("out.mp4"), 0, 100); err != nil {
		t.Fatalf("OpenPipe failed: %v", err)
	}
	if got := rec.TargetPath(); got != "out_000.mp4" {
		t.Errorf("expected out_000.mp4, got %s", got)
	}
	if got := pipe.StartCalls[0].TargetPath; got != "out_000.mp4" {
		t.Errorf("subprocess received %s, want out_000.mp4", got)
	}
	rec.Close()
}

func TestRecorderAddFrameWhenIdle(t *testing.T) {
	rec := New(&mocks.EncoderPipe{}, mocks.NewFileSystem(), logger.NewNoop())
	if rec.AddFrame(frameWithMarker(0)) {
		t.Error("expected AddFrame to be rejected while idle")
	}
	if rec.QueueDepth() != 0 {
		t.Errorf("expected empty queue, got %d", rec.QueueDepth())
	}
}

func TestRecorderCloseWithoutOpen(t *testing.T) {
	rec := New(&mocks.EncoderPipe{}, mocks.NewFileSystem(), logger.NewNoop())
	if err := rec.Close(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("expected ErrNotRecording, got %v", err)
	}
}

func TestRecorderReusableAfterClose(t *testing.T) {
	pipe := &mocks.EncoderPipe{}
	rec := New(pipe, mocks.NewFileSystem(), logger.NewNoop())

	for run := 0; run < 2; run++ {
		if err := rec.OpenPipe(pipeSettings("out.mp4"), 0, 100); err != nil {
			t.Fatalf("run %d: OpenPipe failed: %v", run, err)
		}
		rec.AddFrame(frameWithMarker(byte(run)))
		rec.Session().Advance()
		if err := rec.Close(); err != nil {
			t.Fatalf("run %d: Close failed: %v", run, err)
		}
	}
	if got := pipe.WriteCount(); got != 2 {
		t.Errorf("expected 2 writes across runs, got %d", got)
	}
}
