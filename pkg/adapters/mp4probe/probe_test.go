package mp4probe

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestProbeGarbage(t *testing.T) {
	r := bytes.NewReader([]byte("this is not an mp4 file, not even close"))
	if _, err := Probe(r); err == nil {
		t.Error("expected error for non-MP4 data")
	}
}

func TestProbeEmpty(t *testing.T) {
	if _, err := Probe(bytes.NewReader(nil)); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestProbeFileMissing(t *testing.T) {
	if _, err := ProbeFile(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}
