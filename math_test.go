package softrender

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestProjection_CenterAndAxes(t *testing.T) {
	p := NewProjection(200, 100, 1.0471976, 0.1)

	center := p.ToScreen(mgl32.Vec3{0, 0, 5})
	assert.InDelta(t, 100, float64(center.X()), 1e-4)
	assert.InDelta(t, 50, float64(center.Y()), 1e-4)

	right := p.ToScreen(mgl32.Vec3{1, 0, 5})
	assert.Greater(t, right.X(), center.X(), "+x maps right")

	up := p.ToScreen(mgl32.Vec3{0, 1, 5})
	assert.Less(t, up.Y(), center.Y(), "+y maps up (smaller screen y)")

	// Doubling distance halves the offset from center.
	near := p.ToScreen(mgl32.Vec3{1, 0, 5})
	far := p.ToScreen(mgl32.Vec3{1, 0, 10})
	assert.InDelta(t, float64(near.X()-100), 2*float64(far.X()-100), 1e-3)
}

func TestProjection_GuardsNearZeroDivide(t *testing.T) {
	p := NewProjection(100, 100, 1.0471976, 0.1)
	v := p.ToScreen(mgl32.Vec3{1, 1, -3})
	assert.False(t, v.X() != v.X() || v.Y() != v.Y(), "behind-camera projection must stay finite")
}

func TestColor_PackRoundTrip(t *testing.T) {
	c := RGBA(10, 20, 30, 40)
	assert.Equal(t, uint8(10), c.R())
	assert.Equal(t, uint8(20), c.G())
	assert.Equal(t, uint8(30), c.B())
	assert.Equal(t, uint8(40), c.A())
	assert.Equal(t, uint8(255), RGB(1, 2, 3).A())
}

func TestColor_ScaleClampsAndKeepsAlpha(t *testing.T) {
	c := RGBA(100, 200, 50, 77)
	assert.Equal(t, RGBA(50, 100, 25, 77), c.Scale(0.5))
	assert.Equal(t, c, c.Scale(2.0))
	assert.Equal(t, RGBA(0, 0, 0, 77), c.Scale(-1))
}

func TestLambertIntensity(t *testing.T) {
	// Surface facing straight into the light: full intensity.
	full := LambertIntensity(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, 1.0, float64(full), 1e-6)

	// Facing away: ambient floor only, never negative.
	back := LambertIntensity(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, ambientIntensity, float64(back), 1e-6)

	// Grazing at 60 degrees.
	grazing := LambertIntensity(mgl32.Vec3{0, 0, -1}.Normalize(), mgl32.Vec3{0, 0.8660254, 0.5}.Normalize())
	assert.InDelta(t, ambientIntensity+diffuseIntensity*0.5, float64(grazing), 1e-5)
}

func TestCamera_BasisOrthonormal(t *testing.T) {
	cam := Camera{Yaw: 0.7, Pitch: -0.3}
	r, u, f := cam.Basis()

	assert.InDelta(t, 1, float64(r.Len()), 1e-5)
	assert.InDelta(t, 1, float64(u.Len()), 1e-5)
	assert.InDelta(t, 1, float64(f.Len()), 1e-5)
	assert.InDelta(t, 0, float64(r.Dot(u)), 1e-5)
	assert.InDelta(t, 0, float64(r.Dot(f)), 1e-5)
	assert.InDelta(t, 0, float64(u.Dot(f)), 1e-5)

	// Zero yaw/pitch faces +z with +x to the right.
	id := Camera{}
	r, u, f = id.Basis()
	assert.InDelta(t, 1, float64(f.Z()), 1e-6)
	assert.InDelta(t, 1, float64(r.X()), 1e-6)
	assert.InDelta(t, 1, float64(u.Y()), 1e-6)
}

func TestFrameInput_ToCamera(t *testing.T) {
	cam := Camera{Position: mgl32.Vec3{0, 0, -5}}
	in := cam.Snapshot(NewProjection(100, 100, 1.0471976, 0.1), DirectionalLight{})

	c := in.ToCamera(mgl32.Vec3{0, 0, 0})
	assert.InDelta(t, 5, float64(c.Z()), 1e-5)
	assert.InDelta(t, 0, float64(c.X()), 1e-5)

	// Rotation ignores the camera position.
	d := in.RotateToCamera(mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, 1, float64(d.Z()), 1e-5)
}
