package softrender

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput(camPos mgl32.Vec3) FrameInput {
	cam := Camera{Position: camPos}
	return cam.Snapshot(NewProjection(256, 256, 1.0471976, 0.1), DirectionalLight{Direction: mgl32.Vec3{0, 0, 1}})
}

func TestCullMeshlet(t *testing.T) {
	in := testInput(mgl32.Vec3{0, 0, 0})

	tests := []struct {
		name    string
		center  mgl32.Vec3
		radius  float32
		visible bool
	}{
		{"in front on axis", mgl32.Vec3{0, 0, 10}, 1, true},
		{"entirely behind camera", mgl32.Vec3{0, 0, -10}, 1, false},
		{"far edge short of near plane", mgl32.Vec3{0, 0, -2}, 1.5, false},
		{"straddling the camera", mgl32.Vec3{0, 0, 0}, 2, true},
		{"far left", mgl32.Vec3{-50, 0, 10}, 1, false},
		{"far right", mgl32.Vec3{50, 0, 10}, 1, false},
		{"far above", mgl32.Vec3{0, 50, 10}, 1, false},
		{"left but radius reaches in", mgl32.Vec3{-7, 0, 10}, 2, true},
		{"huge sphere surrounding the camera", mgl32.Vec3{0, 0, 0}, 100, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ml := Meshlet{Center: tc.center, Radius: tc.radius}
			assert.Equal(t, tc.visible, cullMeshlet(&in, &ml))
		})
	}
}

func TestCullMeshlet_FarEdgeTouchingNearPlaneIsInvisible(t *testing.T) {
	// Near plane at 0.5 and the sphere's far edge exactly on it, with
	// values that add exactly in float32.
	cam := Camera{}
	in := cam.Snapshot(NewProjection(256, 256, 1.0471976, 0.5), DirectionalLight{})
	ml := Meshlet{Center: mgl32.Vec3{0, 0, -1.5}, Radius: 2}

	assert.False(t, cullMeshlet(&in, &ml), "a sphere only touching the near plane has nothing in front of it")
}

func TestCullMeshlet_MarginWidensFrustum(t *testing.T) {
	in := testInput(mgl32.Vec3{0, 0, 0})
	ml := Meshlet{Center: mgl32.Vec3{-8.2, 0, 10}, Radius: 1}

	require.False(t, cullMeshlet(&in, &ml))
	in.Proj.Margin = 2
	assert.True(t, cullMeshlet(&in, &ml))
}

func TestVisibility_BehindCameraNeverEmits(t *testing.T) {
	r := newTestRenderer(t, 128, 128)

	// Mesh entirely behind the camera.
	r.SetScene(NewCubeMesh(mgl32.Vec3{0, 0, -20}, 2))
	cam := Camera{Position: mgl32.Vec3{0, 0, 0}}
	r.Render(&cam, DirectionalLight{Direction: mgl32.Vec3{0, 0, 1}})

	s := r.Stats()
	assert.Zero(t, s.MeshletsVisible)
	assert.Zero(t, s.PrimitivesEmitted)
	for i := range r.fr.ranges {
		assert.Zero(t, r.fr.ranges[i].Reserved, "invisible meshlets must not get an emission job")
	}
}

func TestBitset(t *testing.T) {
	var b Bitset
	b.Resize(130)
	require.Equal(t, 130, b.Len())
	b.Set(0)
	b.Set(64)
	b.Set(129)

	assert.True(t, b.Get(0))
	assert.True(t, b.Get(64))
	assert.True(t, b.Get(129))
	assert.False(t, b.Get(1))
	assert.False(t, b.Get(500))
	assert.Equal(t, 3, b.Count())

	// Resize must clear previous contents when reusing storage.
	b.Resize(130)
	assert.Equal(t, 0, b.Count())
}
