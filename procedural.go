package softrender

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Procedural mesh builders, so the core and its tests have geometry
// without any model file loader. Triangles are wound so the edge cross
// product cross(v1-v0, v2-v0) points out of the surface.

type cubeFace struct {
	n, u, v mgl32.Vec3
	color   Color
}

// cubeFaces lists normal and tangent axes per face, chosen so that
// v cross u equals the outward normal (which makes the emitted edge
// cross product point outward for the corner order used below).
var cubeFaces = [6]cubeFace{
	{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}, color: RGB(220, 70, 70)},
	{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}, color: RGB(70, 220, 70)},
	{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}, color: RGB(70, 70, 220)},
	{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}, color: RGB(220, 220, 70)},
	{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}, color: RGB(220, 70, 220)},
	{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}, color: RGB(70, 220, 220)},
}

// NewCubeMesh builds an axis-aligned cube centered at center with the
// given edge length. Each face gets its own four vertices, UVs, a
// distinct debug color, and precomputed per-triangle normals.
func NewCubeMesh(center mgl32.Vec3, size float32) *Mesh {
	h := size * 0.5
	m := &Mesh{}
	for _, f := range cubeFaces {
		c := center.Add(f.n.Mul(h))
		base := uint32(len(m.Positions))
		m.Positions = append(m.Positions,
			c.Sub(f.u.Mul(h)).Sub(f.v.Mul(h)),
			c.Sub(f.u.Mul(h)).Add(f.v.Mul(h)),
			c.Add(f.u.Mul(h)).Add(f.v.Mul(h)),
			c.Add(f.u.Mul(h)).Sub(f.v.Mul(h)),
		)
		m.UVs = append(m.UVs,
			mgl32.Vec2{0, 1}, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, mgl32.Vec2{1, 1},
		)
		m.Triangles = append(m.Triangles,
			Triangle{V: [3]uint32{base, base + 1, base + 2}, Color: f.color, Flags: TriFill},
			Triangle{V: [3]uint32{base, base + 2, base + 3}, Color: f.color, Flags: TriFill},
		)
		m.Normals = append(m.Normals, f.n, f.n)
	}
	return m
}

// NewPlaneMesh builds a y-up floor grid of segs x segs quads spanning
// size x size around center. Colors checker between two grays.
func NewPlaneMesh(center mgl32.Vec3, size float32, segs int) *Mesh {
	if segs <= 0 {
		segs = 1
	}
	m := &Mesh{}
	step := size / float32(segs)
	origin := center.Sub(mgl32.Vec3{size * 0.5, 0, size * 0.5})
	up := mgl32.Vec3{0, 1, 0}

	for row := 0; row < segs; row++ {
		for col := 0; col < segs; col++ {
			x := origin.X() + float32(col)*step
			z := origin.Z() + float32(row)*step
			base := uint32(len(m.Positions))
			m.Positions = append(m.Positions,
				mgl32.Vec3{x, origin.Y(), z},
				mgl32.Vec3{x, origin.Y(), z + step},
				mgl32.Vec3{x + step, origin.Y(), z + step},
				mgl32.Vec3{x + step, origin.Y(), z},
			)
			m.UVs = append(m.UVs,
				mgl32.Vec2{0, 0}, mgl32.Vec2{0, 1}, mgl32.Vec2{1, 1}, mgl32.Vec2{1, 0},
			)
			col0 := RGB(150, 150, 155)
			if (row+col)%2 == 0 {
				col0 = RGB(95, 95, 100)
			}
			// wound so the cross product points up (+y)
			m.Triangles = append(m.Triangles,
				Triangle{V: [3]uint32{base, base + 1, base + 2}, Color: col0, Flags: TriFill},
				Triangle{V: [3]uint32{base, base + 2, base + 3}, Color: col0, Flags: TriFill},
			)
			m.Normals = append(m.Normals, up, up)
		}
	}
	return m
}

// NewSphereMesh builds a UV sphere. Normals are left empty on purpose:
// sphere triangles exercise the emission path that derives the normal
// from the edge cross product.
func NewSphereMesh(center mgl32.Vec3, radius float32, rings, sectors int, base Color) *Mesh {
	if rings < 3 {
		rings = 3
	}
	if sectors < 3 {
		sectors = 3
	}
	m := &Mesh{}

	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= sectors; s++ {
			theta := 2 * math.Pi * float64(s) / float64(sectors)
			p := mgl32.Vec3{
				radius * float32(math.Sin(phi)*math.Cos(theta)),
				radius * float32(math.Cos(phi)),
				radius * float32(math.Sin(phi)*math.Sin(theta)),
			}
			m.Positions = append(m.Positions, center.Add(p))
			m.UVs = append(m.UVs, mgl32.Vec2{
				float32(s) / float32(sectors),
				float32(r) / float32(rings),
			})
		}
	}

	stride := uint32(sectors + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(sectors); s++ {
			a := r*stride + s
			b := a + stride
			m.Triangles = append(m.Triangles,
				Triangle{V: [3]uint32{a, a + 1, b}, Color: base, Flags: TriFill},
				Triangle{V: [3]uint32{a + 1, b + 1, b}, Color: base, Flags: TriFill},
			)
		}
	}
	return m
}
