package chunk

import (
	"fmt"
	"regexp"
	"strconv"
)

// Default tiling parameters: an 8x8 grid of 1K chunks, dropping edge
// slivers narrower than 200px.
const (
	DefaultChunkSize = 1024
	DefaultGridSide  = 8
	DefaultMinEdge   = 200
)

// Layout describes the fixed tiling grid applied to a source image.
type Layout struct {
	ChunkSize int // square chunk edge in pixels
	GridSide  int // chunks per side of the tiling grid
	MinEdge   int // minimum edge of a clipped chunk worth keeping
}

// DefaultLayout returns the standard 8x8 grid of 1024px chunks.
func DefaultLayout() Layout {
	return Layout{
		ChunkSize: DefaultChunkSize,
		GridSide:  DefaultGridSide,
		MinEdge:   DefaultMinEdge,
	}
}

// Descriptor identifies one chunk within a named tile group.
type Descriptor struct {
	Base string // name of the source image, without extension
	Row  int    // zero-based grid row (y)
	Col  int    // zero-based grid column (x)
	Path string // on-disk location, set once the chunk file exists
}

// FileName renders the canonical chunk filename for d.
func (d Descriptor) FileName() string {
	return fmt.Sprintf("%s_chunk_y%d_x%d.png", d.Base, d.Row, d.Col)
}

// namePattern accepts "{base}_chunk_y{row}_x{col}.png" with an optional
// "-suffix" inserted before the extension (exported variants and the like).
var namePattern = regexp.MustCompile(`^(.+)_chunk_y(\d+)_x(\d+)(?:-[^.]*)?\.png$`)

// ParseFileName recovers a descriptor from a chunk filename. ok is false
// for names outside the grammar; callers treat those as foreign files,
// not errors.
func ParseFileName(name string) (Descriptor, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil {
		return Descriptor{}, false
	}
	row, err := strconv.Atoi(m[2])
	if err != nil {
		return Descriptor{}, false
	}
	col, err := strconv.Atoi(m[3])
	if err != nil {
		return Descriptor{}, false
	}
	return Descriptor{Base: m[1], Row: row, Col: col}, true
}

// MergedFileName is the output filename for a reassembled group.
func MergedFileName(base string) string {
	return base + "_merged.png"
}
