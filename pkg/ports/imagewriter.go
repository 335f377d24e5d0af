package ports

// ImageWriter abstracts still-image encoding to disk.
type ImageWriter interface {
	// WritePNG encodes an RGBA8 (4 bytes/pixel) or RGB8 (3 bytes/pixel)
	// buffer as a PNG file at path.
	WritePNG(path string, width, height int, pixels []byte) error

	// WriteHDR encodes an RGBA float buffer (4 floats/pixel) as a Radiance
	// HDR file at path. HDR saves are rare and expensive; callers run them
	// synchronously instead of queueing them.
	WriteHDR(path string, width, height int, pixels []float32) error
}
