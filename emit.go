package softrender

import (
	"github.com/go-gl/mathgl/mgl32"
)

type PrimitiveFlags uint8

const (
	// PrimNearPlane marks a triangle straddling the near plane. The
	// triangle is classified, not clipped: it rasterizes with its
	// original screen coordinates, a documented approximation that can
	// under- or over-draw right at the clip boundary.
	PrimNearPlane PrimitiveFlags = 1 << iota
	PrimBackface
	PrimClipped
	// PrimWire requests the edge overlay pass in the tile renderer.
	PrimWire
)

// Primitive is a screen-space-ready triangle produced by emission:
// camera-space positions, projected screen coordinates, UVs,
// classification flags, the flat-shading intensity, and the source
// meshlet/triangle indices for debugging. Created once per frame,
// read-only afterward.
type Primitive struct {
	Cam    [3]mgl32.Vec3
	Screen [3]mgl32.Vec2
	UV     [3]mgl32.Vec2

	Flags     PrimitiveFlags
	Intensity float32
	Color     Color

	Meshlet uint32
	Tri     uint32
}

// WorkRange is one meshlet's reservation into the shared primitive
// array. Offset and Reserved are assigned by the sequential reservation
// scan before emission; Count is written once by the emitting job after
// its loop. That single write is the only cross-thread handoff per
// meshlet and needs no lock: every meshlet owns a disjoint range, and
// the stage-boundary wait orders the write before any read by binning.
type WorkRange struct {
	Offset   uint32
	Count    uint32
	Reserved uint32
}

// backfaceEpsilon keeps grazing-angle triangles (facing term near
// zero) from flickering between front and back across frames.
const backfaceEpsilon = 1e-4

type emitTask struct {
	fr       *frameContext
	index    int
	lightCam mgl32.Vec3
}

func emissionJob(js *JobSystem, j *Job) {
	t := j.Ctx.(*emitTask)
	emitMeshlet(t.fr, t.index, t.lightCam)
}

// emitMeshlet transforms, classifies, and shades every fill triangle of
// one visible meshlet, writing primitives into the meshlet's reserved
// range. The emitted counter is job-local; no atomics inside the loop.
func emitMeshlet(fr *frameContext, mi int, lightCam mgl32.Vec3) {
	ref := fr.meshlets[mi]
	m := ref.mesh
	ml := &m.Meshlets[ref.local]
	rng := &fr.ranges[mi]
	in := &fr.input

	emitted := uint32(0)
	for t := uint32(0); t < ml.TriCount; t++ {
		if emitted == rng.Reserved {
			// Reservation exhausted: the rest of this meshlet's
			// triangles are silently skipped.
			fr.stats.PrimitivesDropped.Add(ml.TriCount - t)
			break
		}
		ti := m.MeshletTris[ml.TriOffset+t]
		if int(ti) >= len(m.Triangles) {
			continue
		}
		tri := &m.Triangles[ti]
		if tri.Flags&TriFill == 0 {
			continue
		}

		var cam [3]mgl32.Vec3
		front := 0
		for k := 0; k < 3; k++ {
			cam[k] = in.ToCamera(m.position(tri.V[k]))
			if in.Proj.InFront(cam[k].Z()) {
				front++
			}
		}
		if front == 0 {
			continue
		}
		var flags PrimitiveFlags
		if front < 3 {
			flags |= PrimNearPlane | PrimClipped
		}

		normal, ok := m.triangleNormal(ti)
		if ok {
			normal = in.RotateToCamera(normal)
		} else {
			normal = cam[1].Sub(cam[0]).Cross(cam[2].Sub(cam[0]))
		}
		if l := normal.Len(); l > 0 {
			normal = normal.Mul(1 / l)
		}

		centroid := cam[0].Add(cam[1]).Add(cam[2]).Mul(1.0 / 3.0)
		if normal.Dot(centroid) > backfaceEpsilon {
			flags |= PrimBackface
			if flags&PrimClipped == 0 {
				continue
			}
		}

		p := Primitive{
			Cam:       cam,
			Flags:     flags,
			Intensity: LambertIntensity(normal, lightCam),
			Color:     tri.Color,
			Meshlet:   uint32(mi),
			Tri:       ti,
		}
		if tri.Flags&TriWireframe != 0 {
			p.Flags |= PrimWire
		}
		for k := 0; k < 3; k++ {
			p.Screen[k] = in.Proj.ToScreen(cam[k])
			p.UV[k] = m.uv(tri.V[k])
		}
		fr.prims[rng.Offset+emitted] = p
		emitted++
	}
	rng.Count = emitted
}

// runEmission reserves per-meshlet ranges in the shared primitive
// array, then dispatches one job per visible meshlet and waits for the
// stage. Reservation is conservative (one slot per triangle); meshlets
// that would overflow the configured capacity lose their tail.
func (r *Renderer) runEmission(fr *frameContext) {
	fr.ranges = fr.ranges[:0]
	offset := uint32(0)
	capacity := uint32(cap(fr.prims))
	for i, ref := range fr.meshlets {
		rng := WorkRange{Offset: offset}
		if fr.vis.Get(i) {
			need := ref.mesh.Meshlets[ref.local].TriCount
			if avail := capacity - offset; need > avail {
				fr.stats.PrimitivesDropped.Add(need - avail)
				need = avail
			}
			rng.Reserved = need
			offset += need
		}
		fr.ranges = append(fr.ranges, rng)
	}
	fr.prims = fr.prims[:offset]
	if offset == 0 {
		return
	}

	lightCam := fr.input.RotateToCamera(fr.input.LightDir)
	parent := r.jobs.NewJob(nil, nil, nil)
	for i := range fr.meshlets {
		if fr.ranges[i].Reserved == 0 {
			continue
		}
		j := r.jobs.NewJob(emissionJob, &emitTask{fr: fr, index: i, lightCam: lightCam}, parent)
		if r.jobs.SubmitOrRun(j) {
			fr.stats.JobsInline.Add(1)
		}
	}
	r.jobs.RunInline(parent)
	parent.Wait()

	var total uint32
	for i := range fr.ranges {
		total += fr.ranges[i].Count
	}
	fr.stats.PrimitivesEmitted.Store(total)
}
