package savequeue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/user/framepipe/pkg/adapters/logger"
	"github.com/user/framepipe/pkg/mocks"
)

func job(path string, size int) Job {
	return Job{Path: path, Width: size / 3, Height: 1, Pixels: make([]byte, size)}
}

func TestQueueSavesAllJobs(t *testing.T) {
	writer := &mocks.ImageWriter{}
	q := New(writer, logger.NewNoop(), Options{MaxQueuedBytes: 1 << 20, Workers: 2})

	for i := 0; i < 10; i++ {
		q.Submit(job(fmt.Sprintf("frame_%d.png", i), 300))
	}
	q.Close()

	if got := len(writer.Paths()); got != 10 {
		t.Errorf("expected 10 saves, got %d", got)
	}
	if q.InFlight() != 0 {
		t.Errorf("expected 0 in-flight after close, got %d", q.InFlight())
	}
	if q.QueuedBytes() != 0 {
		t.Errorf("expected 0 queued bytes after close, got %d", q.QueuedBytes())
	}
}

func TestQueueSynchronousFallbackOverBudget(t *testing.T) {
	release := make(chan struct{})
	writer := &mocks.ImageWriter{
		WritePNGFunc: func(path string, _, _ int, _ []byte) error {
			if strings.HasPrefix(path, "blocked") {
				<-release
			}
			return nil
		},
	}
	// Ceiling fits exactly one job, so the second submission cannot
	// acquire budget while the first is still being written.
	q := New(writer, logger.NewNoop(), Options{MaxQueuedBytes: 300, Workers: 1})

	q.Submit(job("blocked.png", 300))
	if q.QueuedBytes() != 300 {
		t.Fatalf("expected 300 queued bytes, got %d", q.QueuedBytes())
	}

	// Runs on this goroutine; must be complete when Submit returns.
	q.Submit(job("sync.png", 300))
	found := false
	for _, p := range writer.Paths() {
		if p == "sync.png" {
			found = true
		}
	}
	if !found {
		t.Error("expected synchronous save to finish before Submit returned")
	}

	close(release)
	q.Close()
	if q.InFlight() != 0 {
		t.Errorf("expected 0 in-flight after close, got %d", q.InFlight())
	}
}

func TestQueueSubmitNeverBlocksUnderBudget(t *testing.T) {
	release := make(chan struct{})
	writer := &mocks.ImageWriter{
		WritePNGFunc: func(string, int, int, []byte) error {
			<-release
			return nil
		},
	}
	// One worker, parked on the first save. Every further submission fits
	// the budget and must return without waiting for the worker.
	q := New(writer, logger.NewNoop(), Options{MaxQueuedBytes: 1 << 30, Workers: 1})

	const total = 9
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < total; i++ {
			q.Submit(job(fmt.Sprintf("frame_%d.png", i), 3))
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Submit blocked with budget available")
	}
	if q.InFlight() != total {
		t.Errorf("expected %d in-flight, got %d", total, q.InFlight())
	}

	close(release)
	q.Close()
	if got := len(writer.Paths()); got != total {
		t.Errorf("expected %d saves, got %d", total, got)
	}
	if q.InFlight() != 0 {
		t.Errorf("expected 0 in-flight after close, got %d", q.InFlight())
	}
}

func TestQueueFullySynchronousWithoutCeiling(t *testing.T) {
	writer := &mocks.ImageWriter{}
	q := New(writer, logger.NewNoop(), Options{MaxQueuedBytes: 0, Workers: 1})

	for i := 0; i < 3; i++ {
		q.Submit(job(fmt.Sprintf("frame_%d.png", i), 300))
		if q.InFlight() != 0 {
			t.Errorf("expected synchronous completion, %d still in flight", q.InFlight())
		}
		if got := len(writer.Paths()); got != i+1 {
			t.Errorf("expected %d saves after submit %d, got %d", i+1, i, got)
		}
	}
	q.Close()
}

func TestQueueCountersSurviveWriteFailures(t *testing.T) {
	writer := &mocks.ImageWriter{
		WritePNGFunc: func(path string, _, _ int, _ []byte) error {
			if strings.HasPrefix(path, "bad") {
				return errors.New("disk full")
			}
			return nil
		},
	}
	q := New(writer, logger.NewNoop(), Options{MaxQueuedBytes: 1 << 20, Workers: 2})

	for i := 0; i < 4; i++ {
		q.Submit(job(fmt.Sprintf("bad_%d.png", i), 300))
		q.Submit(job(fmt.Sprintf("good_%d.png", i), 300))
	}
	q.Close()

	if got := len(writer.Paths()); got != 8 {
		t.Errorf("expected 8 attempted saves, got %d", got)
	}
	if q.InFlight() != 0 {
		t.Errorf("expected 0 in-flight after failures, got %d", q.InFlight())
	}
	if q.QueuedBytes() != 0 {
		t.Errorf("expected 0 queued bytes after failures, got %d", q.QueuedBytes())
	}
}

func TestQueueDrainWaitsForCompletion(t *testing.T) {
	release := make(chan struct{})
	writer := &mocks.ImageWriter{
		WritePNGFunc: func(path string, _, _ int, _ []byte) error {
			<-release
			return nil
		},
	}
	q := New(writer, logger.NewNoop(), Options{MaxQueuedBytes: 1 << 20, Workers: 2})

	for i := 0; i < 4; i++ {
		q.Submit(job(fmt.Sprintf("frame_%d.png", i), 300))
	}
	if q.InFlight() != 4 {
		t.Fatalf("expected 4 in-flight, got %d", q.InFlight())
	}

	close(release)
	q.Drain()
	if q.InFlight() != 0 {
		t.Errorf("expected 0 in-flight after drain, got %d", q.InFlight())
	}
	if got := len(writer.Paths()); got != 4 {
		t.Errorf("expected 4 saves after drain, got %d", got)
	}
	q.Close()
}
