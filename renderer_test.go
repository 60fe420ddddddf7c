package softrender

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRendererConfig(t *testing.T, cfg RendererConfig) *Renderer {
	t.Helper()
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	r, err := NewRenderer(cfg)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func newTestRenderer(t *testing.T, w, h int) *Renderer {
	t.Helper()
	return newTestRendererConfig(t, RendererConfig{Width: w, Height: h, TileSize: 32})
}

func testScene() []*Mesh {
	return []*Mesh{
		NewPlaneMesh(mgl32.Vec3{0, -1, 0}, 12, 6),
		NewCubeMesh(mgl32.Vec3{0, 0, 0}, 2),
		NewSphereMesh(mgl32.Vec3{2.5, 0, 1}, 1, 12, 18, RGB(240, 160, 60)),
	}
}

func TestRenderer_DeterministicAcrossRuns(t *testing.T) {
	r := newTestRenderer(t, 256, 192)
	r.SetScene(testScene()...)

	cam := Camera{Position: mgl32.Vec3{1, 1.5, -6}, Yaw: -0.1, Pitch: -0.15}
	light := DirectionalLight{Direction: mgl32.Vec3{0.4, -1, 0.6}}

	r.Render(&cam, light)
	first := bytes.Clone(r.Framebuffer().Pix)

	for i := 0; i < 3; i++ {
		r.Render(&cam, light)
		require.True(t, bytes.Equal(first, r.Framebuffer().Pix),
			"identical input must produce byte-identical framebuffers (run %d)", i)
	}
}

func TestRenderer_DeterministicAcrossWorkerCounts(t *testing.T) {
	cam := Camera{Position: mgl32.Vec3{0, 1, -6}}
	light := DirectionalLight{Direction: mgl32.Vec3{0, -0.5, 1}}

	render := func(workers int) []byte {
		r := newTestRendererConfig(t, RendererConfig{
			Width: 192, Height: 128, TileSize: 32, Workers: workers,
		})
		r.SetScene(testScene()...)
		r.Render(&cam, light)
		return bytes.Clone(r.Framebuffer().Pix)
	}

	assert.Equal(t, render(1), render(8),
		"frame bytes must not depend on scheduling")
}

func TestRenderer_UnitCubeScenario(t *testing.T) {
	r := newTestRenderer(t, 128, 128)
	r.SetScene(NewCubeMesh(mgl32.Vec3{0, 0, 0}, 1))

	cam := Camera{Position: mgl32.Vec3{0, 0, -5}} // looking down +z
	light := DirectionalLight{Direction: mgl32.Vec3{0, 0, 1}}
	r.Render(&cam, light)

	s := r.Stats()
	// Head-on, only the face toward the camera survives backface
	// classification: two triangles.
	require.Equal(t, uint32(2), s.PrimitivesEmitted)
	require.Equal(t, uint32(1), s.MeshletsVisible)

	// Light along +z hits that face square on: full Lambert intensity,
	// so the stored color is the face's base color unchanged.
	faceColor := cubeFaces[0].color
	assert.Equal(t, faceColor, r.Framebuffer().At(64, 64))

	// Uniform flat shading across the face.
	assert.Equal(t, faceColor, r.Framebuffer().At(58, 58))
	assert.Equal(t, faceColor, r.Framebuffer().At(70, 70))

	// Tiles outside the cube's screen bounding box stay at the
	// cleared background.
	bg := r.cfg.Background
	assert.Equal(t, bg, r.Framebuffer().At(4, 4))
	assert.Equal(t, bg, r.Framebuffer().At(123, 4))
	assert.Equal(t, bg, r.Framebuffer().At(4, 123))
	assert.Equal(t, bg, r.Framebuffer().At(123, 123))
}

func TestRenderer_EmptySceneIsBackground(t *testing.T) {
	r := newTestRendererConfig(t, RendererConfig{
		Width: 64, Height: 64, TileSize: 32, Background: RGB(10, 20, 30),
	})
	cam := Camera{}
	r.Render(&cam, DirectionalLight{})

	fb := r.Framebuffer()
	for y := 0; y < fb.H; y += 7 {
		for x := 0; x < fb.W; x += 7 {
			require.Equal(t, RGB(10, 20, 30), fb.At(x, y))
		}
	}
}

func TestRenderer_DefaultsApplied(t *testing.T) {
	r := newTestRendererConfig(t, RendererConfig{})
	fb := r.Framebuffer()
	assert.Equal(t, 960, fb.W)
	assert.Equal(t, 540, fb.H)
	assert.Equal(t, fb.W*4, fb.Stride)
}

func TestFramebuffer_BoundsAndImage(t *testing.T) {
	fb, err := NewFramebuffer(16, 8)
	require.NoError(t, err)

	fb.SetPixel(-1, 0, RGB(255, 0, 0))
	fb.SetPixel(16, 0, RGB(255, 0, 0))
	fb.SetPixel(0, 8, RGB(255, 0, 0))
	assert.Equal(t, Color(0), fb.At(-1, 0))

	fb.SetPixel(3, 2, RGB(1, 2, 3))
	assert.Equal(t, RGB(1, 2, 3), fb.At(3, 2))

	img := fb.Image()
	img.Pix[0] = 77
	assert.Equal(t, uint8(77), fb.Pix[0], "Image must wrap, not copy")

	_, err = NewFramebuffer(0, 8)
	assert.Error(t, err)
}

func TestSceneDef_BuildWiresFlags(t *testing.T) {
	d := SceneDef{
		Objects: []ObjectDef{
			{Kind: ObjectCube, Size: 1, Wire: true},
			{Kind: ObjectPlane, Size: 4},
			{Kind: ObjectSphere, Size: 2, Color: RGB(1, 2, 3)},
			{Kind: ObjectKind(99)},
		},
	}
	meshes := d.Build()
	require.Len(t, meshes, 3, "unknown kinds are skipped")

	for _, tri := range meshes[0].Triangles {
		assert.NotZero(t, tri.Flags&TriWireframe)
	}
	for _, tri := range meshes[1].Triangles {
		assert.Zero(t, tri.Flags&TriWireframe)
	}
	assert.Equal(t, RGB(1, 2, 3), meshes[2].Triangles[0].Color)
}
