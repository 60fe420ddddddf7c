package softrender

import (
	"fmt"
	"sync/atomic"
	"time"
)

// RendererConfig configures the core. Zero values pick the defaults
// noted per field.
type RendererConfig struct {
	Width  int // default 960
	Height int // default 540

	TileSize      int     // pixels per tile edge, default 64
	MaxPrimitives int     // shared primitive array capacity, default 65536
	FOVY          float32 // vertical field of view in radians, default ~60 deg
	Near          float32 // near plane distance, default 0.1
	CullMargin    float32 // widens the culling frustum, default 0
	Background    Color   // tile clear color

	Workers       int // job system workers, default NumCPU
	QueueCapacity int // per-worker queue slots, default 2048

	// PostKernel is applied to the framebuffer after compositing.
	PostKernel KernelKind
	// ShowStats draws the frame stats HUD into the framebuffer.
	ShowStats bool

	Logger Logger
}

// FrameStats counts the frame's recoverable degradations and stage
// outputs. Counters are atomic because stages increment them from
// worker goroutines; dropped work degrades output silently instead of
// aborting the frame.
type FrameStats struct {
	MeshletsVisible   atomic.Uint32
	PrimitivesEmitted atomic.Uint32
	PrimitivesBinned  atomic.Uint32
	PrimitivesDropped atomic.Uint32
	JobsInline        atomic.Uint32
}

func (s *FrameStats) reset() {
	s.MeshletsVisible.Store(0)
	s.PrimitivesEmitted.Store(0)
	s.PrimitivesBinned.Store(0)
	s.PrimitivesDropped.Store(0)
	s.JobsInline.Store(0)
}

// FrameStatsSnapshot is a plain-value copy for callers and the HUD.
type FrameStatsSnapshot struct {
	MeshletsVisible   uint32
	PrimitivesEmitted uint32
	PrimitivesBinned  uint32
	PrimitivesDropped uint32
	JobsInline        uint32
	FrameTime         time.Duration
}

// meshletRef flattens the scene's meshes into one global meshlet index
// space: visibility bit i, work range i, and meshletRef i all describe
// the same meshlet.
type meshletRef struct {
	mesh  *Mesh
	local uint32
}

// frameContext owns the per-frame scratch state shared by the stages:
// the input snapshot, visibility bitmask, work ranges, the primitive
// array, and the tile grid. Buffers are reused across frames by length
// reset, never reallocated.
type frameContext struct {
	input      FrameInput
	meshlets   []meshletRef
	vis        Bitset
	ranges     []WorkRange
	prims      []Primitive
	grid       *TileGrid
	fb         *Framebuffer
	background Color
	stats      *FrameStats
}

// Renderer drives the per-frame pipeline: visibility, emission,
// binning, tile rendering, compositing. Stage boundaries are enforced
// purely by waiting on each stage's parent job before dispatching the
// next; inside a stage, jobs are unordered.
type Renderer struct {
	cfg  RendererConfig
	log  Logger
	jobs *JobSystem
	fb   *Framebuffer
	grid *TileGrid
	proj Projection

	fr    frameContext
	stats FrameStats

	frame         uint64
	lastFrameTime time.Duration
}

// NewRenderer allocates the framebuffer, tile grid, scratch buffers,
// and job system. Any failure here is fatal: the renderer never runs
// on a partially initialized job system.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 540
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = 64
	}
	if cfg.MaxPrimitives <= 0 {
		cfg.MaxPrimitives = 1 << 16
	}
	if cfg.FOVY <= 0 {
		cfg.FOVY = 1.0471976 // 60 degrees
	}
	if cfg.Near <= 0 {
		cfg.Near = 0.1
	}
	if cfg.Logger == nil {
		cfg.Logger = NewNopLogger()
	}

	fb, err := NewFramebuffer(cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	jobs, err := NewJobSystem(JobSystemConfig{
		Workers:       cfg.Workers,
		QueueCapacity: cfg.QueueCapacity,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	r := &Renderer{
		cfg:  cfg,
		log:  cfg.Logger,
		jobs: jobs,
		fb:   fb,
		grid: NewTileGrid(cfg.Width, cfg.Height, cfg.TileSize),
		proj: NewProjection(cfg.Width, cfg.Height, cfg.FOVY, cfg.Near),
	}
	r.proj.Margin = cfg.CullMargin
	r.fr = frameContext{
		prims:      make([]Primitive, 0, cfg.MaxPrimitives),
		grid:       r.grid,
		fb:         fb,
		background: cfg.Background,
		stats:      &r.stats,
	}
	r.log.Infof("renderer ready: %dx%d, %dx%d tiles of %dpx, %d workers",
		cfg.Width, cfg.Height, r.grid.TilesX, r.grid.TilesY, cfg.TileSize, jobs.Workers())
	return r, nil
}

// SetScene replaces the mesh list rendered each frame. Meshes without a
// meshlet partition get one built here, at load time.
func (r *Renderer) SetScene(meshes ...*Mesh) {
	r.fr.meshlets = r.fr.meshlets[:0]
	for _, m := range meshes {
		if len(m.Meshlets) == 0 {
			BuildMeshlets(m, MaxMeshletTriangles)
		}
		for local := range m.Meshlets {
			r.fr.meshlets = append(r.fr.meshlets, meshletRef{mesh: m, local: uint32(local)})
		}
	}
}

func (r *Renderer) Framebuffer() *Framebuffer { return r.fb }
func (r *Renderer) Projection() Projection    { return r.proj }
func (r *Renderer) Jobs() *JobSystem          { return r.jobs }

func (r *Renderer) Stats() FrameStatsSnapshot {
	return FrameStatsSnapshot{
		MeshletsVisible:   r.stats.MeshletsVisible.Load(),
		PrimitivesEmitted: r.stats.PrimitivesEmitted.Load(),
		PrimitivesBinned:  r.stats.PrimitivesBinned.Load(),
		PrimitivesDropped: r.stats.PrimitivesDropped.Load(),
		JobsInline:        r.stats.JobsInline.Load(),
		FrameTime:         r.lastFrameTime,
	}
}

// Render snapshots the camera and light with the renderer's projection
// and renders one frame.
func (r *Renderer) Render(cam *Camera, light DirectionalLight) {
	r.RenderFrame(cam.Snapshot(r.proj, light))
}

// RenderFrame runs the full pipeline for one immutable input snapshot.
// Stages run in order, each waiting on the previous stage's parent job,
// so by the time RenderFrame returns the framebuffer is complete.
func (r *Renderer) RenderFrame(input FrameInput) {
	start := time.Now()
	if input.Proj.Width != r.fb.W || input.Proj.Height != r.fb.H {
		input.Proj = r.proj
	}

	r.stats.reset()
	fr := &r.fr
	fr.input = input

	r.runVisibility(fr)
	r.runEmission(fr)
	r.runBinning(fr)
	r.runTiles(fr)
	r.runComposite(fr)

	if r.cfg.PostKernel != KernelNone {
		ApplyKernel(r.fb, r.cfg.PostKernel)
	}

	r.frame++
	r.lastFrameTime = time.Since(start)
	if r.cfg.ShowStats {
		DrawStatsOverlay(r.fb, r.Stats())
	}
	if r.log.DebugEnabled() && r.frame%120 == 0 {
		s := r.Stats()
		r.log.Debugf("frame %d: %d visible, %d emitted, %d binned, %d dropped, %v",
			r.frame, s.MeshletsVisible, s.PrimitivesEmitted, s.PrimitivesBinned,
			s.PrimitivesDropped, s.FrameTime)
	}
}

// Close shuts the job system down. The renderer must not be used after.
func (r *Renderer) Close() {
	r.jobs.Stop()
}
