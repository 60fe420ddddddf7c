package softrender

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SceneDef declares the initial contents of a scene as data, so demos
// and tests can describe geometry without touching mesh construction
// directly.
type SceneDef struct {
	Objects []ObjectDef
	Light   DirectionalLight
}

type ObjectKind uint8

const (
	ObjectCube ObjectKind = iota
	ObjectPlane
	ObjectSphere
)

// ObjectDef defines one procedural object instantiation.
type ObjectDef struct {
	Kind     ObjectKind
	Position mgl32.Vec3
	Size     float32
	Segments int   // plane subdivisions / sphere rings
	Color    Color // sphere base color
	Wire     bool  // request the wireframe overlay on every triangle
}

// Build instantiates the declared objects as meshes, ready for
// Renderer.SetScene.
func (d SceneDef) Build() []*Mesh {
	meshes := make([]*Mesh, 0, len(d.Objects))
	for _, o := range d.Objects {
		var m *Mesh
		switch o.Kind {
		case ObjectCube:
			m = NewCubeMesh(o.Position, o.Size)
		case ObjectPlane:
			segs := o.Segments
			if segs == 0 {
				segs = 8
			}
			m = NewPlaneMesh(o.Position, o.Size, segs)
		case ObjectSphere:
			rings := o.Segments
			if rings == 0 {
				rings = 16
			}
			color := o.Color
			if color == 0 {
				color = RGB(200, 200, 200)
			}
			m = NewSphereMesh(o.Position, o.Size*0.5, rings, rings+rings/2, color)
		default:
			continue
		}
		if o.Wire {
			for i := range m.Triangles {
				m.Triangles[i].Flags |= TriWireframe
			}
		}
		meshes = append(meshes, m)
	}
	return meshes
}
