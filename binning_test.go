package softrender

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binFixture builds a frame context with fabricated primitives, no
// renderer needed.
func binFixture(w, h, tileSize int, prims []Primitive) *frameContext {
	fr := &frameContext{
		grid:  NewTileGrid(w, h, tileSize),
		prims: prims,
		stats: &FrameStats{},
	}
	fr.ranges = []WorkRange{{Offset: 0, Count: uint32(len(prims)), Reserved: uint32(len(prims))}}
	return fr
}

func screenPrim(a, b, c mgl32.Vec2) Primitive {
	return Primitive{Screen: [3]mgl32.Vec2{a, b, c}}
}

func tileList(g *TileGrid, tx, ty int) []uint32 {
	return g.Tiles[ty*g.TilesX+tx].Prims
}

func TestBinning_SingleTile(t *testing.T) {
	fr := binFixture(128, 128, 32, []Primitive{
		screenPrim(mgl32.Vec2{2, 2}, mgl32.Vec2{20, 2}, mgl32.Vec2{2, 20}),
	})
	r := &Renderer{}
	r.runBinning(fr)

	require.Len(t, tileList(fr.grid, 0, 0), 1)
	assert.Empty(t, tileList(fr.grid, 1, 0))
	assert.Empty(t, tileList(fr.grid, 0, 1))
	assert.Equal(t, uint32(1), fr.stats.PrimitivesBinned.Load())
}

func TestBinning_SpanningPrimitiveHitsEveryOverlappedTile(t *testing.T) {
	fr := binFixture(128, 128, 32, []Primitive{
		screenPrim(mgl32.Vec2{10, 10}, mgl32.Vec2{100, 12}, mgl32.Vec2{12, 100}),
	})
	r := &Renderer{}
	r.runBinning(fr)

	// Bounding box spans tiles (0..3, 0..3); every one of them gets
	// the index even where the triangle itself has no coverage, since
	// binning is only a bounding-box test.
	for ty := 0; ty < 4; ty++ {
		for tx := 0; tx < 4; tx++ {
			assert.Len(t, tileList(fr.grid, tx, ty), 1, "tile %d,%d", tx, ty)
		}
	}
}

func TestBinning_ZeroAreaDropped(t *testing.T) {
	fr := binFixture(128, 128, 32, []Primitive{
		screenPrim(mgl32.Vec2{5, 5}, mgl32.Vec2{50, 50}, mgl32.Vec2{95, 95}),
	})
	r := &Renderer{}
	r.runBinning(fr)

	for i := range fr.grid.Tiles {
		assert.Empty(t, fr.grid.Tiles[i].Prims)
	}
	assert.Equal(t, uint32(1), fr.stats.PrimitivesDropped.Load())
}

func TestBinning_OffScreenDropped(t *testing.T) {
	fr := binFixture(128, 128, 32, []Primitive{
		screenPrim(mgl32.Vec2{-300, -300}, mgl32.Vec2{-200, -300}, mgl32.Vec2{-300, -200}),
		screenPrim(mgl32.Vec2{500, 500}, mgl32.Vec2{600, 500}, mgl32.Vec2{500, 600}),
	})
	r := &Renderer{}
	r.runBinning(fr)

	for i := range fr.grid.Tiles {
		assert.Empty(t, fr.grid.Tiles[i].Prims)
	}
	assert.Equal(t, uint32(2), fr.stats.PrimitivesDropped.Load())
	assert.Zero(t, fr.stats.PrimitivesBinned.Load())
}

func TestBinning_PadBandBeyondFramebufferDropped(t *testing.T) {
	// 100x70 framebuffer with 32px tiles rounds the grid up to 128x96;
	// primitives confined to the pad band past the last pixel column or
	// row can never rasterize and must not reach the edge tiles.
	fr := binFixture(100, 70, 32, []Primitive{
		screenPrim(mgl32.Vec2{105, 10}, mgl32.Vec2{120, 10}, mgl32.Vec2{105, 25}),
		screenPrim(mgl32.Vec2{10, 75}, mgl32.Vec2{40, 75}, mgl32.Vec2{10, 90}),
	})
	r := &Renderer{}
	r.runBinning(fr)

	for i := range fr.grid.Tiles {
		assert.Empty(t, fr.grid.Tiles[i].Prims)
	}
	assert.Equal(t, uint32(2), fr.stats.PrimitivesDropped.Load())
	assert.Zero(t, fr.stats.PrimitivesBinned.Load())
}

func TestBinning_ListsResetBetweenFrames(t *testing.T) {
	fr := binFixture(64, 64, 32, []Primitive{
		screenPrim(mgl32.Vec2{2, 2}, mgl32.Vec2{20, 2}, mgl32.Vec2{2, 20}),
	})
	r := &Renderer{}
	r.runBinning(fr)
	r.runBinning(fr)

	assert.Len(t, tileList(fr.grid, 0, 0), 1, "rebinning must reset lists, not append")
}
