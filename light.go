package softrender

import "github.com/go-gl/mathgl/mgl32"

// DirectionalLight is the one light model in scope: a direction the
// light travels along, applied as flat Lambert shading at primitive
// emission. Supplied fresh each frame by the controller.
type DirectionalLight struct {
	Direction mgl32.Vec3
}

// Normalized returns the travel direction as a unit vector, defaulting
// to straight down +Z when the direction is degenerate.
func (l DirectionalLight) Normalized() mgl32.Vec3 {
	if l.Direction.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return l.Direction.Normalize()
}
