package softrender

type compositeTask struct {
	fr    *frameContext
	index int
}

func compositeJob(js *JobSystem, j *Job) {
	t := j.Ctx.(*compositeTask)
	compositeTile(t.fr.fb, &t.fr.grid.Tiles[t.index])
}

// compositeTile copies the tile's finished color rows into its
// rectangle of the shared framebuffer. Pure data movement; tiles map to
// disjoint framebuffer regions, so the copies share nothing.
func compositeTile(fb *Framebuffer, t *Tile) {
	for row := 0; row < t.H; row++ {
		src := t.Color[row*t.W*4 : (row+1)*t.W*4]
		dstOff := (t.Y0+row)*fb.Stride + t.X0*4
		copy(fb.Pix[dstOff:dstOff+len(src)], src)
	}
}

// runComposite copies every finished tile into the framebuffer, one
// job per tile, after the tile render stage has been waited on.
func (r *Renderer) runComposite(fr *frameContext) {
	parent := r.jobs.NewJob(nil, nil, nil)
	for i := range fr.grid.Tiles {
		j := r.jobs.NewJob(compositeJob, &compositeTask{fr: fr, index: i}, parent)
		if r.jobs.SubmitOrRun(j) {
			fr.stats.JobsInline.Add(1)
		}
	}
	r.jobs.RunInline(parent)
	parent.Wait()
}
