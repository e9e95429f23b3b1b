package heightmap

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// DecodeOptions controls the raw-format convention and where non-fatal
// diagnostics go.
type DecodeOptions struct {
	// HeaderDims selects the .r16 variant that starts with two uint32-le
	// dimension fields. The default convention is headerless: the file is
	// a square sample grid whose side is implied by the byte count, which
	// is what Gaea and most terrain exporters emit.
	HeaderDims bool

	// Warn receives non-fatal decode diagnostics. Defaults to os.Stderr.
	Warn io.Writer
}

// Decoder loads heightmaps from disk. The zero options are suitable for
// typical exported terrain files.
type Decoder struct {
	opts DecodeOptions
}

// NewDecoder creates a decoder with the given options.
func NewDecoder(opts DecodeOptions) *Decoder {
	if opts.Warn == nil {
		opts.Warn = os.Stderr
	}
	return &Decoder{opts: opts}
}

// Load decodes the heightmap at path with default options.
func Load(path string) (*Grid, error) {
	return NewDecoder(DecodeOptions{}).Load(path)
}

// Load reads the file at path and returns its elevation grid. The decode
// strategy is chosen by extension: .r16 is raw 16-bit samples, .png/.tif/
// .tiff go through image decoding and pixel-layout classification.
func (d *Decoder) Load(path string) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".r16":
		return d.loadR16(path)
	case ".png", ".tif", ".tiff":
		return d.loadImage(path)
	default:
		return nil, &FormatError{Path: path, Reason: "unrecognized extension"}
	}
}

func (d *Decoder) loadR16(path string) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if d.opts.HeaderDims {
		return decodeR16Header(path, raw)
	}
	return decodeR16Square(path, raw)
}

// decodeR16Square handles the headerless convention: the file holds
// nothing but little-endian uint16 samples and must describe a square
// grid exactly, so len(raw) == 2*side*side for an integer side.
func decodeR16Square(path string, raw []byte) (*Grid, error) {
	if len(raw) == 0 || len(raw)%2 != 0 {
		return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("%d bytes is not a whole number of 16-bit samples", len(raw))}
	}
	n := len(raw) / 2
	side := int(math.Sqrt(float64(n)))
	// Guard against float sqrt landing one off for large files.
	for side*side > n {
		side--
	}
	for (side+1)*(side+1) <= n {
		side++
	}
	if side < 1 || side*side != n {
		return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("%d samples do not form a square grid", n)}
	}
	return gridFromLE(raw, side, side), nil
}

// decodeR16Header handles the variant with a leading pair of uint32-le
// dimension fields followed by exactly width*height samples.
func decodeR16Header(path string, raw []byte) (*Grid, error) {
	if len(raw) < 8 {
		return nil, &DecodeError{Path: path, Reason: "file shorter than the 8-byte dimension header"}
	}
	width := binary.LittleEndian.Uint32(raw[0:4])
	height := binary.LittleEndian.Uint32(raw[4:8])
	if width == 0 || height == 0 {
		return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("header declares %dx%d grid", width, height)}
	}
	body := raw[8:]
	if uint64(len(body)) != 2*uint64(width)*uint64(height) {
		return nil, &DecodeError{Path: path, Reason: fmt.Sprintf("%d sample bytes do not match the declared %dx%d grid", len(body), width, height)}
	}
	return gridFromLE(body, int(width), int(height)), nil
}

func gridFromLE(raw []byte, width, height int) *Grid {
	samples := make([]uint16, width*height)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}
	return &Grid{Width: width, Height: height, Samples: samples}
}

func (d *Decoder) loadImage(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Reason: err.Error()}
	}

	switch d.classify(path, img) {
	case FormatPNG16Gray:
		return convertGray16(img), nil
	case FormatPNGRGB:
		return d.convertRGB(path, img), nil
	default:
		return convertGray8(img), nil
	}
}

// classify inspects the decoded pixel layout and picks the conversion
// strategy before any samples are read. Layouts with no direct elevation
// interpretation are demoted to the 8-bit grayscale path with a warning.
func (d *Decoder) classify(path string, img image.Image) SourceFormat {
	switch img.(type) {
	case *image.Gray16:
		return FormatPNG16Gray
	case *image.Gray:
		return FormatPNG8
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return FormatPNGRGB
	default:
		fmt.Fprintf(d.opts.Warn, "%s: no elevation interpretation for pixel layout %T, converting to grayscale\n", path, img)
		return FormatPNG8
	}
}

// convertGray16 copies 16-bit grayscale samples through unchanged.
func convertGray16(img image.Image) *Grid {
	g := newGridFor(img)
	b := img.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			g.Samples[i] = uint16(r)
			i++
		}
	}
	return g
}

// convertGray8 expands 8-bit grayscale to the full 16-bit range via
// s*257, so 0 maps to 0 and 255 maps to exactly 65535.
func convertGray8(img image.Image) *Grid {
	g := newGridFor(img)
	b := img.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			g.Samples[i] = uint16(s) * 257
			i++
		}
	}
	return g
}

// convertRGB packs the first channel as the high byte and the second as
// the low byte. A green channel that is zero everywhere means the file
// carries plain 8-bit data in red, in which case the samples become
// R*256 high-byte placements instead.
func (d *Decoder) convertRGB(path string, img image.Image) *Grid {
	g := newGridFor(img)
	b := img.Bounds()
	if greenChannelZero(img) {
		fmt.Fprintf(d.opts.Warn, "%s: low channel is empty, treating as 8-bit data\n", path)
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, _, _, _ := img.At(x, y).RGBA()
				g.Samples[i] = uint16(r>>8) * 256
				i++
			}
		}
		return g
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, gr, _, _ := img.At(x, y).RGBA()
			g.Samples[i] = uint16(r>>8)<<8 | uint16(gr>>8)
			i++
		}
	}
	return g
}

func greenChannelZero(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, g, _, _ := img.At(x, y).RGBA(); g != 0 {
				return false
			}
		}
	}
	return true
}

func newGridFor(img image.Image) *Grid {
	b := img.Bounds()
	return &Grid{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Samples: make([]uint16, b.Dx()*b.Dy()),
	}
}
