// Package imagewriter encodes raw pixel buffers to still-image files.
package imagewriter

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/user/framepipe/pkg/ports"
)

// Writer implements ports.ImageWriter. PNG output goes through the gg
// drawing library; HDR output uses the Radiance format.
type Writer struct{}

// New creates a new Writer.
func New() *Writer {
	return &Writer{}
}

// WritePNG encodes an RGB8 or RGBA8 buffer as a PNG file at path, creating
// parent directories as needed.
func (w *Writer) WritePNG(path string, width, height int, pixels []byte) error {
	img, err := toNRGBA(width, height, pixels)
	if err != nil {
		return err
	}
	if err := mkParent(path); err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}

// WriteHDR encodes an RGBA float buffer (4 floats/pixel) as a Radiance HDR
// file at path. Scanlines are written uncompressed, which every Radiance
// reader accepts.
func (w *Writer) WriteHDR(path string, width, height int, pixels []float32) error {
	if len(pixels) != width*height*4 {
		return fmt.Errorf("hdr buffer is %d floats, want %d", len(pixels), width*height*4)
	}
	if err := mkParent(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y %d +X %d\n", height, width); err != nil {
		return err
	}

	buf := make([]byte, 0, width*4)
	for y := 0; y < height; y++ {
		buf = buf[:0]
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			r, g, b, e := toRGBE(pixels[i], pixels[i+1], pixels[i+2])
			buf = append(buf, r, g, b, e)
		}
		if _, err := f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// toNRGBA wraps a raw buffer as an image, expanding RGB to RGBA with full
// alpha. The buffer length selects the channel count.
func toNRGBA(width, height int, pixels []byte) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	switch len(pixels) {
	case width * height * 4:
		copy(img.Pix, pixels)
	case width * height * 3:
		for i, j := 0, 0; i < len(pixels); i, j = i+3, j+4 {
			img.Pix[j] = pixels[i]
			img.Pix[j+1] = pixels[i+1]
			img.Pix[j+2] = pixels[i+2]
			img.Pix[j+3] = 0xff
		}
	default:
		return nil, fmt.Errorf("pixel buffer is %d bytes, want %d (RGB) or %d (RGBA)",
			len(pixels), width*height*3, width*height*4)
	}
	return img, nil
}

// toRGBE converts one linear RGB pixel to the shared-exponent RGBE encoding.
func toRGBE(r, g, b float32) (byte, byte, byte, byte) {
	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if max < 1e-32 {
		return 0, 0, 0, 0
	}
	frac, exp := math.Frexp(float64(max))
	scale := frac * 256.0 / float64(max)
	return byte(float64(r) * scale), byte(float64(g) * scale), byte(float64(b) * scale), byte(exp + 128)
}

func mkParent(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// Ensure Writer implements ports.ImageWriter.
var _ ports.ImageWriter = (*Writer)(nil)
