package softrender

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the mutable controller-side state: position plus yaw/pitch
// in radians, Y-up, facing +Z at zero yaw. The render loop never reads
// a Camera directly; it consumes the immutable FrameInput snapshot.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

func (c *Camera) Forward() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Sin(float64(c.Yaw)) * math.Cos(float64(c.Pitch))),
		float32(math.Sin(float64(c.Pitch))),
		float32(math.Cos(float64(c.Yaw)) * math.Cos(float64(c.Pitch))),
	}.Normalize()
}

// Basis returns the camera's orthonormal right/up/forward vectors.
func (c *Camera) Basis() (right, up, forward mgl32.Vec3) {
	forward = c.Forward()
	right = mgl32.Vec3{0, 1, 0}.Cross(forward).Normalize()
	up = forward.Cross(right)
	return right, up, forward
}

// Snapshot freezes the camera, projection, and light into the per-frame
// input consumed by every stage.
func (c *Camera) Snapshot(proj Projection, light DirectionalLight) FrameInput {
	right, up, forward := c.Basis()
	return FrameInput{
		CameraPos: c.Position,
		Right:     right,
		Up:        up,
		Forward:   forward,
		Proj:      proj,
		LightDir:  light.Normalized(),
	}
}

// FrameInput is the immutable per-frame snapshot of camera transform,
// projection parameters, and light direction. Stages share it read-only
// for the whole frame.
type FrameInput struct {
	CameraPos mgl32.Vec3
	Right     mgl32.Vec3
	Up        mgl32.Vec3
	Forward   mgl32.Vec3
	Proj      Projection
	LightDir  mgl32.Vec3 // normalized, world space

	// Wireframe enables the edge overlay pass for every primitive,
	// not just those flagged TriWireframe.
	Wireframe bool
}

// ToCamera transforms a world-space point into camera space by dotting
// the camera-relative vector against the basis. A single point needs no
// full matrix multiply.
func (in *FrameInput) ToCamera(p mgl32.Vec3) mgl32.Vec3 {
	d := p.Sub(in.CameraPos)
	return mgl32.Vec3{d.Dot(in.Right), d.Dot(in.Up), d.Dot(in.Forward)}
}

// RotateToCamera rotates a world-space direction into camera space
// (no translation).
func (in *FrameInput) RotateToCamera(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.Dot(in.Right), v.Dot(in.Up), v.Dot(in.Forward)}
}
