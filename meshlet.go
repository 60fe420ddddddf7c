package softrender

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxMeshletTriangles is the default cluster size cap used when a mesh
// is registered without a prebuilt partition.
const MaxMeshletTriangles = 64

// Meshlet is a size-bounded cluster of a mesh's triangles with a
// precomputed bounding sphere. It is the unit of coarse culling and of
// parallel emission work. Immutable after mesh load; referenced by
// index, never copied.
type Meshlet struct {
	Center mgl32.Vec3
	Radius float32

	// TriOffset/TriCount address this meshlet's slice of
	// Mesh.MeshletTris.
	TriOffset uint32
	TriCount  uint32
}

// BuildMeshlets partitions the mesh's triangles into clusters of at
// most maxTris, computing a bounding sphere per cluster. The grouping
// is sequential by triangle index; spatially smarter clustering would
// only tighten the spheres, not change correctness. Load-time only.
func BuildMeshlets(m *Mesh, maxTris int) {
	if maxTris <= 0 {
		maxTris = MaxMeshletTriangles
	}
	m.Meshlets = m.Meshlets[:0]
	m.MeshletTris = m.MeshletTris[:0]

	for start := 0; start < len(m.Triangles); start += maxTris {
		end := start + maxTris
		if end > len(m.Triangles) {
			end = len(m.Triangles)
		}

		ml := Meshlet{
			TriOffset: uint32(len(m.MeshletTris)),
			TriCount:  uint32(end - start),
		}
		for ti := start; ti < end; ti++ {
			m.MeshletTris = append(m.MeshletTris, uint32(ti))
		}
		ml.Center, ml.Radius = boundingSphere(m, start, end)
		m.Meshlets = append(m.Meshlets, ml)
	}
}

// boundingSphere computes a sphere over the vertices of triangles
// [start, end): center at the AABB midpoint, radius the farthest vertex
// distance. Not minimal, but a safe conservative bound for culling.
func boundingSphere(m *Mesh, start, end int) (mgl32.Vec3, float32) {
	first := true
	var lo, hi mgl32.Vec3
	for ti := start; ti < end; ti++ {
		for _, vi := range m.Triangles[ti].V {
			p := m.position(vi)
			if first {
				lo, hi = p, p
				first = false
				continue
			}
			for axis := 0; axis < 3; axis++ {
				if p[axis] < lo[axis] {
					lo[axis] = p[axis]
				}
				if p[axis] > hi[axis] {
					hi[axis] = p[axis]
				}
			}
		}
	}
	if first {
		return mgl32.Vec3{}, 0
	}

	center := lo.Add(hi).Mul(0.5)
	var radius float32
	for ti := start; ti < end; ti++ {
		for _, vi := range m.Triangles[ti].V {
			if d := m.position(vi).Sub(center).Len(); d > radius {
				radius = d
			}
		}
	}
	return center, radius
}
