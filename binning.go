package softrender

import "math"

// runBinning assigns every emitted primitive to the tiles its
// screen-space bounding box overlaps. It runs sequentially on the
// orchestrating goroutine: the scan is cheap relative to
// rasterization, and walking meshlets in index order makes every
// tile's list deterministic, which the byte-identical-frame guarantee
// depends on.
func (r *Renderer) runBinning(fr *frameContext) {
	g := fr.grid
	for i := range g.Tiles {
		g.Tiles[i].Prims = g.Tiles[i].Prims[:0]
	}

	var binned uint32
	for mi := range fr.ranges {
		rng := &fr.ranges[mi]
		for k := uint32(0); k < rng.Count; k++ {
			pi := rng.Offset + k
			if binPrimitive(g, fr, pi) {
				binned++
			}
		}
	}
	fr.stats.PrimitivesBinned.Store(binned)
}

// binPrimitive appends the primitive index to every overlapped tile.
// Degenerate (zero screen area) and fully off-screen primitives are
// dropped here rather than crash downstream. The tile scan covers only
// the range the bounding box spans, never the whole grid.
func binPrimitive(g *TileGrid, fr *frameContext, pi uint32) bool {
	p := &fr.prims[pi]
	a, b, c := p.Screen[0], p.Screen[1], p.Screen[2]

	area := edgeFn(a, b, c)
	if area > -degenerateArea && area < degenerateArea {
		fr.stats.PrimitivesDropped.Add(1)
		return false
	}

	// Clamp against the framebuffer, not the rounded-up tile extent: a
	// primitive confined to the pad band past the last pixel column or
	// row can never rasterize.
	width := g.W
	height := g.H
	x0 := int(math.Floor(float64(min3(a.X(), b.X(), c.X()))))
	x1 := int(math.Ceil(float64(max3(a.X(), b.X(), c.X()))))
	y0 := int(math.Floor(float64(min3(a.Y(), b.Y(), c.Y()))))
	y1 := int(math.Ceil(float64(max3(a.Y(), b.Y(), c.Y()))))
	if x1 < 0 || y1 < 0 || x0 >= width || y0 >= height {
		fr.stats.PrimitivesDropped.Add(1)
		return false
	}
	x0 = max(x0, 0)
	y0 = max(y0, 0)
	x1 = min(x1, width-1)
	y1 = min(y1, height-1)

	tx0 := x0 / g.TileSize
	tx1 := x1 / g.TileSize
	ty0 := y0 / g.TileSize
	ty1 := y1 / g.TileSize
	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			t := &g.Tiles[ty*g.TilesX+tx]
			t.Prims = append(t.Prims, pi)
		}
	}
	return true
}
