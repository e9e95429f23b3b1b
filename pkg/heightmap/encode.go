package heightmap

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"os"
)

// ToGray16 renders the grid as a 16-bit grayscale image.
func (g *Grid) ToGray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	for i, s := range g.Samples {
		// Gray16 stores samples big-endian.
		img.Pix[2*i] = byte(s >> 8)
		img.Pix[2*i+1] = byte(s)
	}
	return img
}

// WritePNG16 writes the grid as a 16-bit grayscale PNG.
func WritePNG16(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, g.ToGray16()); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}

// WriteR16 writes the grid in the headerless raw convention: nothing but
// little-endian uint16 samples in row-major order. Only square grids can
// round-trip through this layout.
func WriteR16(path string, g *Grid) error {
	if g.Width != g.Height {
		return fmt.Errorf("writing %s: %dx%d grid is not square", path, g.Width, g.Height)
	}
	raw := make([]byte, 2*len(g.Samples))
	for i, s := range g.Samples {
		binary.LittleEndian.PutUint16(raw[2*i:], s)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
