package recording

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/framepipe/pkg/ports"
)

// ResolvePath returns a collision-free variant of path. A free path is
// returned unchanged; otherwise a 3-digit numeric suffix is inserted
// before the extension, starting at 000 and incrementing until a free
// name is found.
func ResolvePath(fs ports.FileSystem, path string) (string, error) {
	exists, err := fs.Exists(path)
	if err != nil {
		return "", err
	}
	if !exists {
		return path, nil
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s_%03d%s", base, i, ext)
		exists, err := fs.Exists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// SequenceFileName names one frame of an image-sequence recording, with a
// 5-digit zero-padded output frame index.
func SequenceFileName(prefix string, index int) string {
	return fmt.Sprintf("%s%05d.png", prefix, index)
}
