// Package recording implements the lossless frame recording pipeline: a
// FIFO frame queue, the session state machine and the recorder that drains
// frames into an external encoder subprocess.
package recording

import (
	"sync"

	"github.com/user/framepipe/pkg/ports"
)

// FrameQueue is a thread-safe FIFO of ownership-transferred frames.
// Exactly one producer and one consumer touch it, so a coarse mutex is
// sufficient. Produce never blocks; backpressure is applied upstream by
// the session bounds, not here.
type FrameQueue struct {
	mu     sync.Mutex
	frames []ports.Frame
}

// NewFrameQueue creates an empty frame queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// Produce transfers ownership of one frame into the queue.
func (q *FrameQueue) Produce(f ports.Frame) {
	q.mu.Lock()
	q.frames = append(q.frames, f)
	q.mu.Unlock()
}

// Consume removes and returns the oldest frame, transferring ownership to
// the caller. It never blocks; ok is false when the queue is empty.
func (q *FrameQueue) Consume() (f ports.Frame, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) == 0 {
		return ports.Frame{}, false
	}
	f = q.frames[0]
	// Drop the buffer reference before shifting so the backing array does
	// not pin consumed pixel data.
	q.frames[0] = ports.Frame{}
	q.frames = q.frames[1:]
	if len(q.frames) == 0 {
		q.frames = nil
	}
	return f, true
}

// Size returns the current queue depth without side effects.
func (q *FrameQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.frames)
}
