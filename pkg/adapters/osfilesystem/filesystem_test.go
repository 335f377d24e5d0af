package osfilesystem

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundtrip(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "sub", "dir", "file.bin")
	data := []byte{0xde, 0xad, 0xbe, 0xef}

	if err := fs.WriteFile(path, data); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("read %v, want %v", got, data)
	}
}

func TestExists(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")

	ok, err := fs.Exists(path)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("expected missing file")
	}

	if err := fs.WriteFile(path, []byte("x")); err != nil {
		t.Fatal(err)
	}
	ok, err = fs.Exists(path)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("expected file to exist")
	}

	ok, _ = fs.Exists(dir)
	if !ok {
		t.Error("expected directory to exist")
	}
}

func TestRemove(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := fs.WriteFile(path, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	ok, _ := fs.Exists(path)
	if ok {
		t.Error("expected file gone after remove")
	}
}
