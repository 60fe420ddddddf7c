package softrender

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Tile is one fixed-size rectangular screen region with its own color
// and depth buffers plus the primitive indices binned to it. Exactly
// one render job writes a tile per frame, so tile buffers need no
// synchronization at all.
type Tile struct {
	X0, Y0 int
	W, H   int

	Color []uint8 // W*H*4, packed RGBA8
	Depth []float32
	Prims []uint32
}

// TileGrid partitions a framebuffer into tiles. Edge tiles are clipped
// to the framebuffer, so their buffers can be narrower than TileSize.
type TileGrid struct {
	W, H     int // framebuffer extent, not the rounded-up tile extent
	TileSize int
	TilesX   int
	TilesY   int
	Tiles    []Tile
}

func NewTileGrid(w, h, tileSize int) *TileGrid {
	if tileSize <= 0 {
		tileSize = 64
	}
	g := &TileGrid{
		W:        w,
		H:        h,
		TileSize: tileSize,
		TilesX:   (w + tileSize - 1) / tileSize,
		TilesY:   (h + tileSize - 1) / tileSize,
	}
	g.Tiles = make([]Tile, g.TilesX*g.TilesY)
	for ty := 0; ty < g.TilesY; ty++ {
		for tx := 0; tx < g.TilesX; tx++ {
			t := &g.Tiles[ty*g.TilesX+tx]
			t.X0 = tx * tileSize
			t.Y0 = ty * tileSize
			t.W = min(tileSize, w-t.X0)
			t.H = min(tileSize, h-t.Y0)
			t.Color = make([]uint8, t.W*t.H*4)
			t.Depth = make([]float32, t.W*t.H)
		}
	}
	return g
}

const farDepth = float32(math.MaxFloat32)

// wireDepthBias pulls overlay edges slightly toward the camera so they
// do not z-fight the fill they outline.
const wireDepthBias = 1e-3

// degenerateArea is the screen-space area threshold below which a
// triangle is rejected before its barycentric denominator is formed.
const degenerateArea = 1e-6

func (t *Tile) clear(background Color) {
	r, g, b, a := background.R(), background.G(), background.B(), background.A()
	for i := 0; i < len(t.Color); i += 4 {
		t.Color[i] = r
		t.Color[i+1] = g
		t.Color[i+2] = b
		t.Color[i+3] = a
	}
	for i := range t.Depth {
		t.Depth[i] = farDepth
	}
}

func (t *Tile) setPixel(x, y int, c Color) {
	i := (y*t.W + x) * 4
	t.Color[i] = c.R()
	t.Color[i+1] = c.G()
	t.Color[i+2] = c.B()
	t.Color[i+3] = c.A()
}

// edgeFn is the signed parallelogram area of (a, b, p); its sign tells
// which side of edge a→b the point p lies on.
func edgeFn(a, b, p mgl32.Vec2) float32 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

type tileTask struct {
	fr    *frameContext
	index int
}

func tileJob(js *JobSystem, j *Job) {
	t := j.Ctx.(*tileTask)
	renderTile(t.fr, &t.fr.grid.Tiles[t.index])
}

// renderTile clears the tile and rasterizes every primitive binned to
// it, filled pass first, then the wireframe overlay.
func renderTile(fr *frameContext, t *Tile) {
	t.clear(fr.background)
	for _, pi := range t.Prims {
		p := &fr.prims[pi]
		rasterizePrimitive(fr, t, p)
	}
	for _, pi := range t.Prims {
		p := &fr.prims[pi]
		if fr.input.Wireframe || p.Flags&PrimWire != 0 {
			outlinePrimitive(t, p)
		}
	}
}

// rasterizePrimitive sweeps the half-space edge functions over the
// intersection of the primitive's bounding box with the tile,
// interpolating camera-space depth with barycentric weights. The
// strict less-than depth test keeps the result independent of bin
// insertion order.
func rasterizePrimitive(fr *frameContext, t *Tile, p *Primitive) {
	a, b, c := p.Screen[0], p.Screen[1], p.Screen[2]

	denom := edgeFn(a, b, c)
	if denom > -degenerateArea && denom < degenerateArea {
		// Collinear or zero-area: no coverage, and the barycentric
		// divide below would produce NaNs.
		return
	}
	inv := 1 / denom

	x0 := max(t.X0, int(math.Floor(float64(min3(a.X(), b.X(), c.X())))))
	x1 := min(t.X0+t.W-1, int(math.Ceil(float64(max3(a.X(), b.X(), c.X())))))
	y0 := max(t.Y0, int(math.Floor(float64(min3(a.Y(), b.Y(), c.Y())))))
	y1 := min(t.Y0+t.H-1, int(math.Ceil(float64(max3(a.Y(), b.Y(), c.Y())))))
	if x0 > x1 || y0 > y1 {
		return
	}

	z0, z1, z2 := p.Cam[0].Z(), p.Cam[1].Z(), p.Cam[2].Z()
	shaded := p.Color.Scale(p.Intensity)

	for y := y0; y <= y1; y++ {
		py := float32(y) + 0.5
		for x := x0; x <= x1; x++ {
			pt := mgl32.Vec2{float32(x) + 0.5, py}
			w0 := edgeFn(b, c, pt) * inv
			w1 := edgeFn(c, a, pt) * inv
			w2 := edgeFn(a, b, pt) * inv
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*z0 + w1*z1 + w2*z2
			di := (y-t.Y0)*t.W + (x - t.X0)
			if z >= t.Depth[di] {
				continue
			}
			t.Depth[di] = z
			t.setPixel(x-t.X0, y-t.Y0, shaded)
		}
	}
}

// outlinePrimitive draws the triangle's three edges over the filled
// pass, depth-tested with a small bias toward the camera.
func outlinePrimitive(t *Tile, p *Primitive) {
	for e := 0; e < 3; e++ {
		a, b := p.Screen[e], p.Screen[(e+1)%3]
		za, zb := p.Cam[e].Z(), p.Cam[(e+1)%3].Z()
		drawDepthLine(t, a, b, za, zb, p.Color)
	}
}

// drawDepthLine steps along the part of the edge inside the tile. The
// segment is clipped first so the step count is bounded by the tile
// size, not by the screen-space edge length; near-plane straddlers can
// project to coordinates millions of pixels off screen.
func drawDepthLine(t *Tile, a, b mgl32.Vec2, za, zb float32, c Color) {
	f0, f1, ok := clipSegment(a, b,
		float32(t.X0), float32(t.Y0), float32(t.X0+t.W), float32(t.Y0+t.H))
	if !ok {
		return
	}
	dx := b.X() - a.X()
	dy := b.Y() - a.Y()
	ax := a.X() + dx*f0
	ay := a.Y() + dy*f0
	sx := dx * (f1 - f0)
	sy := dy * (f1 - f0)
	az := za + (zb-za)*f0
	sz := (zb - za) * (f1 - f0)

	steps := int(math.Ceil(math.Max(math.Abs(float64(sx)), math.Abs(float64(sy)))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		f := float32(i) / float32(steps)
		x := int(ax + sx*f)
		y := int(ay + sy*f)
		if x < t.X0 || x >= t.X0+t.W || y < t.Y0 || y >= t.Y0+t.H {
			continue
		}
		z := az + sz*f - wireDepthBias
		di := (y-t.Y0)*t.W + (x - t.X0)
		if z >= t.Depth[di] {
			continue
		}
		t.Depth[di] = z
		t.setPixel(x-t.X0, y-t.Y0, c)
	}
}

// clipSegment intersects the parametric segment a + (b-a)t, t in [0,1],
// with the rectangle [x0,x1) x [y0,y1) (Liang-Barsky) and returns the
// surviving parameter range.
func clipSegment(a, b mgl32.Vec2, x0, y0, x1, y1 float32) (float32, float32, bool) {
	t0, t1 := float32(0), float32(1)
	clip := func(p, q float32) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
			return true
		}
		if r < t0 {
			return false
		}
		if r < t1 {
			t1 = r
		}
		return true
	}
	dx := b.X() - a.X()
	dy := b.Y() - a.Y()
	if !clip(-dx, a.X()-x0) || !clip(dx, x1-a.X()) ||
		!clip(-dy, a.Y()-y0) || !clip(dy, y1-a.Y()) {
		return 0, 0, false
	}
	return t0, t1, true
}

// runTiles renders every tile as an independent job and waits for the
// stage. Tile assignment is injective, so there is no cross-tile
// contention to manage.
func (r *Renderer) runTiles(fr *frameContext) {
	parent := r.jobs.NewJob(nil, nil, nil)
	for i := range fr.grid.Tiles {
		j := r.jobs.NewJob(tileJob, &tileTask{fr: fr, index: i}, parent)
		if r.jobs.SubmitOrRun(j) {
			fr.stats.JobsInline.Add(1)
		}
	}
	r.jobs.RunInline(parent)
	parent.Wait()
}
