package merger

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefmap/reliefmap/internal/splitter"
	"github.com/reliefmap/reliefmap/pkg/chunk"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	return img
}

func writeTile(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func samePixels(t *testing.T, want, got image.Image) {
	t.Helper()
	wb, gb := want.Bounds(), got.Bounds()
	require.Equal(t, wb.Dx(), gb.Dx())
	require.Equal(t, wb.Dy(), gb.Dy())
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			wr, wg, wbl, wa := want.At(wb.Min.X+x, wb.Min.Y+y).RGBA()
			gr, gg, gbl, ga := got.At(gb.Min.X+x, gb.Min.Y+y).RGBA()
			require.Equal(t, [4]uint32{wr, wg, wbl, wa}, [4]uint32{gr, gg, gbl, ga},
				"pixel mismatch at (%d,%d)", x, y)
		}
	}
}

func TestMergeSplitRoundTrip(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "map")
	src := testImage(2048, 2048)

	_, err := splitter.New(chunk.DefaultLayout()).Split(src, "map", dir)
	require.NoError(t, err)

	results, err := New(chunk.DefaultLayout()).Merge(dir)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results["map"]
	require.NoError(t, res.Err)
	samePixels(t, src, res.Image)
}

func TestMergeToFilesWritesToParent(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "map")
	_, err := splitter.New(chunk.DefaultLayout()).Split(testImage(1024, 1024), "map", dir)
	require.NoError(t, err)

	results, err := New(chunk.DefaultLayout()).MergeToFiles(dir)
	require.NoError(t, err)

	res := results["map"]
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(parent, "map_merged.png"), res.Path)
	_, err = os.Stat(res.Path)
	assert.NoError(t, err)
}

func TestMergeIdempotent(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "map")
	_, err := splitter.New(chunk.DefaultLayout()).Split(testImage(2048, 1024), "map", dir)
	require.NoError(t, err)

	m := New(chunk.DefaultLayout())
	_, err = m.MergeToFiles(dir)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(parent, "map_merged.png"))
	require.NoError(t, err)

	_, err = m.MergeToFiles(dir)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(parent, "map_merged.png"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMergeIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, "map_chunk_y0_x0.png", testImage(64, 64))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preview.png"), []byte("not a chunk"), 0o644))

	results, err := New(chunk.DefaultLayout()).Merge(dir)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results["map"].Err)
}

func TestMergeEmptyDirectoryIsNoOp(t *testing.T) {
	results, err := New(chunk.DefaultLayout()).Merge(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMergeGroupFailureDoesNotAbortSiblings(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, "good_chunk_y0_x0.png", testImage(64, 64))
	// A chunk file with garbage content poisons only its own group.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad_chunk_y0_x0.png"), []byte("garbage"), 0o644))

	results, err := New(chunk.DefaultLayout()).Merge(dir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.NoError(t, results["good"].Err)
	assert.Error(t, results["bad"].Err)
	assert.Nil(t, results["bad"].Image)
}

func TestMergePlacesByParsedCoordinates(t *testing.T) {
	dir := t.TempDir()
	layout := chunk.Layout{ChunkSize: 4, GridSide: 8, MinEdge: 1}

	left := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	right := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			left.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
			right.SetNRGBA(x, y, color.NRGBA{B: 200, A: 255})
		}
	}
	writeTile(t, dir, "map_chunk_y0_x0.png", left)
	writeTile(t, dir, "map_chunk_y0_x1.png", right)

	results, err := New(layout).Merge(dir)
	require.NoError(t, err)
	res := results["map"]
	require.NoError(t, res.Err)

	b := res.Image.Bounds()
	assert.Equal(t, 8, b.Dx())
	assert.Equal(t, 4, b.Dy())
	r, _, _, _ := res.Image.At(b.Min.X, b.Min.Y).RGBA()
	_, _, bl, _ := res.Image.At(b.Min.X+4, b.Min.Y).RGBA()
	assert.Equal(t, uint32(200*257), r)
	assert.Equal(t, uint32(200*257), bl)
}

func TestMergeCropsToOpaqueBoundingBox(t *testing.T) {
	dir := t.TempDir()
	layout := chunk.Layout{ChunkSize: 16, GridSide: 8, MinEdge: 1}

	tile := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			tile.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}
	// Only cell (2,3) is populated; the canvas spans rows 0..2 and
	// cols 0..3 but everything outside the one tile stays transparent.
	writeTile(t, dir, "map_chunk_y2_x3.png", tile)

	results, err := New(layout).Merge(dir)
	require.NoError(t, err)
	res := results["map"]
	require.NoError(t, res.Err)

	b := res.Image.Bounds()
	assert.Equal(t, 16, b.Dx())
	assert.Equal(t, 16, b.Dy())
	_, g, _, a := res.Image.At(b.Min.X, b.Min.Y).RGBA()
	assert.Equal(t, uint32(65535), g)
	assert.Equal(t, uint32(65535), a)
}

func TestMergeFullyTransparentGroupKeptUncropped(t *testing.T) {
	dir := t.TempDir()
	layout := chunk.Layout{ChunkSize: 8, GridSide: 8, MinEdge: 1}

	writeTile(t, dir, "map_chunk_y0_x0.png", image.NewNRGBA(image.Rect(0, 0, 8, 8)))

	results, err := New(layout).Merge(dir)
	require.NoError(t, err)
	res := results["map"]
	require.NoError(t, res.Err)
	assert.Equal(t, 8, res.Image.Bounds().Dx())
	assert.Equal(t, 8, res.Image.Bounds().Dy())
}

func TestMergeToleratesSuffixedChunkNames(t *testing.T) {
	dir := t.TempDir()
	layout := chunk.Layout{ChunkSize: 8, GridSide: 8, MinEdge: 1}

	tile := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			tile.SetNRGBA(x, y, color.NRGBA{R: 10, A: 255})
		}
	}
	writeTile(t, dir, "map_chunk_y0_x0-green.png", tile)

	results, err := New(layout).Merge(dir)
	require.NoError(t, err)
	require.Contains(t, results, "map")
	require.NoError(t, results["map"].Err)
}

func TestMergeTreeHandlesSubdirectories(t *testing.T) {
	root := t.TempDir()
	layout := chunk.Layout{ChunkSize: 8, GridSide: 8, MinEdge: 1}

	tile := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			tile.SetNRGBA(x, y, color.NRGBA{B: 42, A: 255})
		}
	}
	sub := filepath.Join(root, "map")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeTile(t, sub, "map_chunk_y0_x0.png", tile)

	results, err := New(layout).MergeTree(root)
	require.NoError(t, err)
	require.Contains(t, results, "map")
	require.NoError(t, results["map"].Err)
	assert.Equal(t, filepath.Join(root, "map_merged.png"), results["map"].Path)
}
