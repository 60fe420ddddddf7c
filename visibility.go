package softrender

import "math/bits"

// Bitset is the per-frame visibility bitmask: one bit per meshlet,
// index-aligned with the flattened meshlet list. Rebuilt every frame,
// consumed read-only by primitive emission.
type Bitset struct {
	words []uint64
	n     int
}

// Resize clears the set and grows storage to hold n bits, reusing the
// backing array across frames.
func (b *Bitset) Resize(n int) {
	words := (n + 63) / 64
	if cap(b.words) < words {
		b.words = make([]uint64, words)
	} else {
		b.words = b.words[:words]
		for i := range b.words {
			b.words[i] = 0
		}
	}
	b.n = n
}

func (b *Bitset) Len() int { return b.n }

func (b *Bitset) Set(i int) {
	b.words[i>>6] |= 1 << (uint(i) & 63)
}

func (b *Bitset) Get(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.words[i>>6]&(1<<(uint(i)&63)) != 0
}

func (b *Bitset) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// visBatchSize is the meshlet group handled by one culling job. Keeping
// it equal to the bitmask word width means concurrent jobs never touch
// the same word, so the bit writes need no atomics.
const visBatchSize = 64

// cullMeshlet tests a meshlet's bounding sphere against the frustum.
// The center transforms with three basis dot products; a point plus
// radius needs no matrix multiply. A sphere survives only if its far
// edge reaches past the near plane and its camera-space extent,
// projected through the field-of-view tangents, touches the frustum.
func cullMeshlet(in *FrameInput, ml *Meshlet) bool {
	c := in.ToCamera(ml.Center)
	r := ml.Radius + in.Proj.Margin

	// Far edge of the sphere at or behind the near plane, which also
	// covers spheres entirely on the negative-z side of the camera.
	if c.Z()+r <= in.Proj.Near {
		return false
	}

	limX := (c.Z()+r)*in.Proj.TanX + r
	if c.X() < -limX || c.X() > limX {
		return false
	}
	limY := (c.Z()+r)*in.Proj.TanY + r
	if c.Y() < -limY || c.Y() > limY {
		return false
	}
	return true
}

// visBatch is the job context for one word-aligned group of meshlets.
type visBatch struct {
	fr    *frameContext
	start int
	end   int
}

func visibilityJob(js *JobSystem, j *Job) {
	b := j.Ctx.(*visBatch)
	fr := b.fr
	for i := b.start; i < b.end; i++ {
		ref := fr.meshlets[i]
		if cullMeshlet(&fr.input, &ref.mesh.Meshlets[ref.local]) {
			fr.vis.Set(i)
		}
	}
}

// runVisibility rebuilds the visibility bitmask, dispatching one job
// per word-aligned meshlet batch and waiting for the whole stage.
func (r *Renderer) runVisibility(fr *frameContext) {
	fr.vis.Resize(len(fr.meshlets))
	if len(fr.meshlets) == 0 {
		return
	}

	parent := r.jobs.NewJob(nil, nil, nil)
	for start := 0; start < len(fr.meshlets); start += visBatchSize {
		end := start + visBatchSize
		if end > len(fr.meshlets) {
			end = len(fr.meshlets)
		}
		j := r.jobs.NewJob(visibilityJob, &visBatch{fr: fr, start: start, end: end}, parent)
		if r.jobs.SubmitOrRun(j) {
			fr.stats.JobsInline.Add(1)
		}
	}
	r.jobs.RunInline(parent)
	parent.Wait()

	fr.stats.MeshletsVisible.Store(uint32(fr.vis.Count()))
}
