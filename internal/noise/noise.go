package noise

import (
	"github.com/aquilax/go-perlin"

	"github.com/reliefmap/reliefmap/pkg/heightmap"
)

const (
	detailFrequency = 6.0
	ridgeFrequency  = 1.5
)

// Generator produces synthetic terrain heightmaps from layered perlin
// noise. Useful for exercising the pipeline without a real export.
type Generator struct {
	detail *perlin.Perlin // smaller, higher frequency relief
	ridges *perlin.Perlin // larger, lower frequency landmass shape
}

// New creates a generator. Output is deterministic per seed.
func New(seed int64) *Generator {
	return &Generator{
		detail: perlin.NewPerlin(1.5, 2.0, 4, seed),
		ridges: perlin.NewPerlin(2.5, 3.0, 4, seed+1),
	}
}

// Grid renders a size x size heightmap spanning the full 16-bit range.
func (g *Generator) Grid(size int) *heightmap.Grid {
	grid := &heightmap.Grid{
		Width:   size,
		Height:  size,
		Samples: make([]uint16, size*size),
	}

	inv := 1.0 / float64(size)
	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float64(x) * inv
			fy := float64(y) * inv

			h := g.ridges.Noise2D(fx*ridgeFrequency, fy*ridgeFrequency)*0.65 +
				g.detail.Noise2D(fx*detailFrequency, fy*detailFrequency)*0.35

			v := (h + 1) * 0.5
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			grid.Samples[i] = uint16(v * 65535)
			i++
		}
	}
	return grid
}
