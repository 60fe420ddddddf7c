package softrender

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection holds the per-frame projection parameters shared by the
// visibility, emission, and rasterization stages.
//
// ScaleX/ScaleY convert camera-space x/z and y/z ratios to pixels.
// TanX/TanY are the half-extent tangents of the view frustum, used by
// sphere culling. Near is the near-plane distance and NearEps the guard
// band that keeps projection away from a divide by near-zero z.
type Projection struct {
	Width   int
	Height  int
	ScaleX  float32
	ScaleY  float32
	TanX    float32
	TanY    float32
	Near    float32
	NearEps float32
	// Margin widens the culling frustum so meshlets whose spheres sit
	// just outside the exact planes are still emitted.
	Margin float32
}

// NewProjection builds projection parameters from a vertical field of
// view in radians and the viewport size in pixels.
func NewProjection(width, height int, fovY, near float32) Projection {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	tanY := float32(math.Tan(float64(fovY) * 0.5))
	tanX := tanY * float32(width) / float32(height)
	return Projection{
		Width:   width,
		Height:  height,
		ScaleX:  float32(width) * 0.5 / tanX,
		ScaleY:  float32(height) * 0.5 / tanY,
		TanX:    tanX,
		TanY:    tanY,
		Near:    near,
		NearEps: 1e-4,
	}
}

// ToScreen projects a camera-space point to pixel coordinates. The z
// divisor is clamped to NearEps so vertices flagged as behind the near
// plane still produce finite coordinates (classify-not-clip handling).
func (p *Projection) ToScreen(c mgl32.Vec3) mgl32.Vec2 {
	z := c.Z()
	if z < p.NearEps {
		z = p.NearEps
	}
	return mgl32.Vec2{
		float32(p.Width)*0.5 + c.X()*p.ScaleX/z,
		float32(p.Height)*0.5 - c.Y()*p.ScaleY/z,
	}
}

// InFront reports whether a camera-space z lies in front of the near
// plane, with the epsilon guard applied.
func (p *Projection) InFront(z float32) bool {
	return z >= p.Near-p.NearEps
}

// Color is a packed RGBA8 pixel value, 0xRRGGBBAA.
type Color uint32

func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | 0xFF)
}

func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

func (c Color) R() uint8 { return uint8(c >> 24) }
func (c Color) G() uint8 { return uint8(c >> 16) }
func (c Color) B() uint8 { return uint8(c >> 8) }
func (c Color) A() uint8 { return uint8(c) }

// Scale multiplies the RGB channels by intensity, clamped to [0, 1].
// Alpha is preserved.
func (c Color) Scale(intensity float32) Color {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	r := uint8(float32(c.R()) * intensity)
	g := uint8(float32(c.G()) * intensity)
	b := uint8(float32(c.B()) * intensity)
	return RGBA(r, g, b, c.A())
}

const (
	ambientIntensity = 0.15
	diffuseIntensity = 0.85
)

// LambertIntensity computes the flat-shading intensity for a surface
// normal lit by a directional light. lightDir is the direction the
// light travels; a surface facing into the light gets full intensity.
// Both vectors must be normalized and expressed in the same space.
func LambertIntensity(normal, lightDir mgl32.Vec3) float32 {
	d := -normal.Dot(lightDir)
	if d < 0 {
		d = 0
	}
	return ambientIntensity + diffuseIntensity*d
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
