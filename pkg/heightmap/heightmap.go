package heightmap

import "fmt"

// Grid is a rectangular, row-major matrix of unsigned 16-bit elevation
// samples. A grid is immutable once returned by the decoder.
type Grid struct {
	Width   int
	Height  int
	Samples []uint16 // len == Width*Height, row 0 first
}

// At returns the sample at column x, row y.
func (g *Grid) At(x, y int) uint16 {
	return g.Samples[y*g.Width+x]
}

// Range returns the lowest and highest sample in the grid.
func (g *Grid) Range() (lo, hi uint16) {
	if len(g.Samples) == 0 {
		return 0, 0
	}
	lo, hi = g.Samples[0], g.Samples[0]
	for _, s := range g.Samples[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

// SourceFormat tags the decode strategy derived from a file's extension
// and, for images, its pixel layout. Classification runs before any
// sample conversion.
type SourceFormat int

const (
	FormatRawR16 SourceFormat = iota
	FormatPNG8
	FormatPNG16Gray
	FormatPNGRGB
)

func (f SourceFormat) String() string {
	switch f {
	case FormatRawR16:
		return "raw r16"
	case FormatPNG8:
		return "8-bit grayscale"
	case FormatPNG16Gray:
		return "16-bit grayscale"
	case FormatPNGRGB:
		return "16-bit packed RGB"
	default:
		return fmt.Sprintf("SourceFormat(%d)", int(f))
	}
}

// FormatError reports a file whose extension or pixel layout is not a
// supported heightmap encoding.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported heightmap format %s: %s", e.Path, e.Reason)
}

// DecodeError reports a file whose byte layout is inconsistent with the
// dimensions it implies or declares.
type DecodeError struct {
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %s", e.Path, e.Reason)
}
