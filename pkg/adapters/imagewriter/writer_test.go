package imagewriter

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWritePNGFromRGB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rgb.png")
	// 2x2 RGB: red, green, blue, white.
	pixels := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}

	w := New()
	if err := w.WritePNG(path, 2, 2, pixels); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 || a>>8 != 255 {
		t.Errorf("pixel (0,0) = %d,%d,%d,%d, want opaque red", r>>8, g>>8, b>>8, a>>8)
	}
	r, g, b, _ = img.At(1, 1).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("pixel (1,1) = %d,%d,%d, want white", r>>8, g>>8, b>>8)
	}
}

func TestWritePNGFromRGBA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rgba.png")
	pixels := []byte{10, 20, 30, 255}

	w := New()
	if err := w.WritePNG(path, 1, 1, pixels); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("pixel = %d,%d,%d, want 10,20,30", r>>8, g>>8, b>>8)
	}
}

func TestWritePNGCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "frame.png")
	w := New()
	if err := w.WritePNG(path, 1, 1, []byte{0, 0, 0}); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}

func TestWritePNGBadBufferSize(t *testing.T) {
	w := New()
	err := w.WritePNG(filepath.Join(t.TempDir(), "bad.png"), 2, 2, []byte{1, 2, 3})
	if err == nil {
		t.Error("expected error for undersized buffer")
	}
}

func TestWriteHDRHeaderAndSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.hdr")
	// 2x1 RGBA float pixels.
	pixels := []float32{
		1, 0, 0, 1,
		0, 0.5, 0, 1,
	}

	w := New()
	if err := w.WriteHDR(path, 2, 1, pixels); err != nil {
		t.Fatalf("WriteHDR failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	header := "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 2\n"
	if !strings.HasPrefix(string(data), header) {
		t.Errorf("unexpected header: %q", string(data[:min(len(data), len(header))]))
	}
	// One RGBE quad per pixel after the header.
	if got := len(data) - len(header); got != 2*4 {
		t.Errorf("expected 8 payload bytes, got %d", got)
	}

	// A black pixel encodes as all zeros; a lit one must not.
	payload := data[len(header):]
	if payload[0] == 0 && payload[3] == 0 {
		t.Error("expected non-zero RGBE for a lit pixel")
	}
}

func TestWriteHDRBadBufferSize(t *testing.T) {
	w := New()
	err := w.WriteHDR(filepath.Join(t.TempDir(), "bad.hdr"), 2, 2, make([]float32, 3))
	if err == nil {
		t.Error("expected error for undersized buffer")
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
