package heightmap

import "github.com/nfnt/resize"

// Resample scales the grid to width x height using bilinear filtering,
// preserving the full 16-bit sample range. The input grid is not
// modified.
func Resample(g *Grid, width, height int) *Grid {
	if width == g.Width && height == g.Height {
		out := &Grid{Width: g.Width, Height: g.Height, Samples: make([]uint16, len(g.Samples))}
		copy(out.Samples, g.Samples)
		return out
	}
	scaled := resize.Resize(uint(width), uint(height), g.ToGray16(), resize.Bilinear)
	return convertGray16(scaled)
}
