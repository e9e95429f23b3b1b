package merger

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "image/jpeg"

	"github.com/reliefmap/reliefmap/pkg/chunk"
)

// Result holds the outcome of one group's merge. Exactly one of Image
// and Err is set; Path names the written output when WriteFiles was
// requested and the group succeeded.
type Result struct {
	Image image.Image
	Path  string
	Err   error
}

// Merger reassembles chunk directories into full images.
type Merger struct {
	layout chunk.Layout
}

// New creates a merger for the given layout.
func New(layout chunk.Layout) *Merger {
	return &Merger{layout: layout}
}

// Merge scans dir for files matching the chunk filename grammar, groups
// them by base name and reassembles each group. Files outside the
// grammar are ignored. The returned map is empty, not an error, when the
// directory holds no chunks. One group's failure is confined to its own
// Result; sibling groups still merge. Groups are independent and run
// concurrently.
func (m *Merger) Merge(dir string) (map[string]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	groups := make(map[string][]chunk.Descriptor)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		d, ok := chunk.ParseFileName(e.Name())
		if !ok {
			continue
		}
		d.Path = filepath.Join(dir, e.Name())
		groups[d.Base] = append(groups[d.Base], d)
	}

	results := make(map[string]Result, len(groups))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for base, tiles := range groups {
		wg.Add(1)
		go func(base string, tiles []chunk.Descriptor) {
			defer wg.Done()
			img, err := m.mergeGroup(tiles)
			mu.Lock()
			results[base] = Result{Image: img, Err: err}
			mu.Unlock()
		}(base, tiles)
	}
	wg.Wait()
	return results, nil
}

// MergeToFiles merges dir and writes each successful group to
// "{base}_merged.png" in the parent of dir. Write failures become that
// group's Err.
func (m *Merger) MergeToFiles(dir string) (map[string]Result, error) {
	results, err := m.Merge(dir)
	if err != nil {
		return nil, err
	}

	parent := filepath.Dir(filepath.Clean(dir))
	for base, res := range results {
		if res.Err != nil {
			continue
		}
		out := filepath.Join(parent, chunk.MergedFileName(base))
		if err := writePNG(out, res.Image); err != nil {
			res.Err = err
			res.Image = nil
		} else {
			res.Path = out
		}
		results[base] = res
	}
	return results, nil
}

// MergeTree merges every immediate subdirectory of root, falling back to
// root itself when it has none. This mirrors how split lays out one
// chunk directory per source image.
func (m *Merger) MergeTree(root string) (map[string]Result, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, filepath.Join(root, e.Name()))
		}
	}
	if len(subdirs) == 0 {
		return m.MergeToFiles(root)
	}

	all := make(map[string]Result)
	for _, sub := range subdirs {
		results, err := m.MergeToFiles(sub)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Can't merge %s: %v\n", sub, err)
			continue
		}
		for base, res := range results {
			all[base] = res
		}
	}
	return all, nil
}

// mergeGroup assembles one group's tiles onto a transparent canvas sized
// by the highest row and column present, then crops to the bounding box
// of non-transparent content. Placement is keyed by the parsed grid
// coordinates, so filesystem enumeration order never affects the output.
func (m *Merger) mergeGroup(tiles []chunk.Descriptor) (image.Image, error) {
	// Deterministic paste order; relevant only if suffixed duplicates
	// target the same cell.
	sort.Slice(tiles, func(i, j int) bool {
		a, b := tiles[i], tiles[j]
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.Path < b.Path
	})

	size := m.layout.ChunkSize
	maxRow, maxCol := 0, 0
	for _, t := range tiles {
		if t.Row > maxRow {
			maxRow = t.Row
		}
		if t.Col > maxCol {
			maxCol = t.Col
		}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, (maxCol+1)*size, (maxRow+1)*size))
	for _, t := range tiles {
		tile, err := loadImage(t.Path)
		if err != nil {
			return nil, err
		}
		// Tiles are placed, not composited; cells never overlap.
		off := image.Pt(t.Col*size, t.Row*size)
		dst := image.Rectangle{Min: off, Max: off.Add(tile.Bounds().Size())}
		draw.Draw(canvas, dst, tile, tile.Bounds().Min, draw.Src)
	}

	if box, ok := opaqueBounds(canvas); ok {
		return canvas.SubImage(box), nil
	}
	// Fully transparent canvas: nothing to trim against.
	return canvas, nil
}

// opaqueBounds returns the bounding box of pixels that are not fully
// transparent. ok is false when every pixel is transparent.
func opaqueBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x >= maxX {
				maxX = x + 1
			}
			if y < minY {
				minY = y
			}
			if y >= maxY {
				maxY = y + 1
			}
		}
	}
	if minX >= maxX || minY >= maxY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX, maxY), true
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tile %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding tile %s: %w", path, err)
	}
	return img, nil
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
