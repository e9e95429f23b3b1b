package splitter

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"

	"github.com/reliefmap/reliefmap/pkg/chunk"
)

// Splitter cuts large renders into a fixed grid of chunk files.
type Splitter struct {
	layout chunk.Layout
}

// New creates a splitter for the given layout.
func New(layout chunk.Layout) *Splitter {
	return &Splitter{layout: layout}
}

// SplitFile decodes the image at path and writes its chunks into a fresh
// subdirectory next to the file, named after the file's base name.
func (s *Splitter) SplitFile(path string) ([]chunk.Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outDir := filepath.Join(filepath.Dir(path), base)
	return s.Split(img, base, outDir)
}

// Split writes the populated grid cells of img as individual PNG files
// under outDir. Cells whose origin falls outside the image are skipped,
// as are clipped cells narrower than the layout's minimum edge; neither
// is an error. Chunks are written verbatim, with no resampling.
func (s *Splitter) Split(img image.Image, base, outDir string) ([]chunk.Descriptor, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", outDir, err)
	}

	bounds := img.Bounds()
	size := s.layout.ChunkSize
	var tiles []chunk.Descriptor
	for row := 0; row < s.layout.GridSide; row++ {
		for col := 0; col < s.layout.GridSide; col++ {
			cell := image.Rect(col*size, row*size, (col+1)*size, (row+1)*size).Add(bounds.Min)
			clipped := cell.Intersect(bounds)
			if clipped.Empty() || clipped.Dx() < s.layout.MinEdge || clipped.Dy() < s.layout.MinEdge {
				continue
			}

			d := chunk.Descriptor{Base: base, Row: row, Col: col}
			d.Path = filepath.Join(outDir, d.FileName())
			if err := writePNG(d.Path, crop(img, clipped)); err != nil {
				return tiles, err
			}
			tiles = append(tiles, d)
		}
	}
	return tiles, nil
}

// SplitDir splits every PNG in dir, reporting per-file progress. A file
// that fails to split is reported and skipped so the remaining files
// still get processed.
func (s *Splitter) SplitDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}

	found := false
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		found = true
		path := filepath.Join(dir, e.Name())
		tiles, err := s.SplitFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Can't split %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "Split %s into %d chunks\n", e.Name(), len(tiles))
	}
	if !found {
		fmt.Fprintf(os.Stderr, "Warning: no PNG files found in %s\n", dir)
	}
	return nil
}

func crop(img image.Image, r image.Rectangle) image.Image {
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)
	return out
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
