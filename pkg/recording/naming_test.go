package recording

import (
	"testing"

	"github.com/user/framepipe/pkg/mocks"
)

func TestResolvePathFree(t *testing.T) {
	fs := mocks.NewFileSystem()

	path, err := ResolvePath(fs, "out/video.mp4")
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if path != "out/video.mp4" {
		t.Errorf("expected unchanged path, got %s", path)
	}
}

func TestResolvePathCollisions(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.Put("video.mp4", nil)

	path, err := ResolvePath(fs, "video.mp4")
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if path != "video_000.mp4" {
		t.Errorf("expected video_000.mp4, got %s", path)
	}

	fs.Put("video_000.mp4", nil)
	fs.Put("video_001.mp4", nil)
	path, err = ResolvePath(fs, "video.mp4")
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if path != "video_002.mp4" {
		t.Errorf("expected video_002.mp4, got %s", path)
	}
}

func TestResolvePathNoExtension(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.Put("capture", nil)

	path, err := ResolvePath(fs, "capture")
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if path != "capture_000" {
		t.Errorf("expected capture_000, got %s", path)
	}
}

func TestSequenceFileName(t *testing.T) {
	cases := []struct {
		prefix string
		index  int
		want   string
	}{
		{"", 0, "00000.png"},
		{"frame_", 7, "frame_00007.png"},
		{"out/", 123456, "out/123456.png"},
	}
	for _, c := range cases {
		if got := SequenceFileName(c.prefix, c.index); got != c.want {
			t.Errorf("SequenceFileName(%q, %d) = %q, want %q", c.prefix, c.index, got, c.want)
		}
	}
}
