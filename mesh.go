package softrender

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type MeshId string

func makeMeshId() MeshId {
	return MeshId(uuid.NewString())
}

type TriangleFlags uint8

const (
	// TriFill marks a triangle for filled rasterization. Triangles
	// without it are skipped by primitive emission.
	TriFill TriangleFlags = 1 << iota
	// TriWireframe requests the edge overlay pass on top of the fill.
	TriWireframe
)

// Triangle references three vertices in its mesh's position array and
// carries the packed base color plus per-triangle cull flags. Immutable
// during rendering.
type Triangle struct {
	V     [3]uint32
	Color Color
	Flags TriangleFlags
}

// Mesh is the arena of flat arrays the renderer reads during a frame:
// positions, optional per-vertex UVs, optional precomputed per-triangle
// normals, triangles, and the meshlet partition over them. All
// cross-references are integer indices; mutation only happens at load
// time, never inside the render loop.
type Mesh struct {
	Id        MeshId
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2 // len == len(Positions), or empty
	Normals   []mgl32.Vec3 // per-triangle, len == len(Triangles), or empty

	Triangles []Triangle

	// Meshlet partition, built at load time. MeshletTris groups
	// triangle indices by meshlet; each Meshlet addresses a disjoint
	// slice of it.
	Meshlets    []Meshlet
	MeshletTris []uint32
}

// position is the validated accessor used on render paths: an
// out-of-range vertex index yields the origin instead of a panic, which
// collapses the triangle to zero area further downstream.
func (m *Mesh) position(i uint32) mgl32.Vec3 {
	if int(i) >= len(m.Positions) {
		return mgl32.Vec3{}
	}
	return m.Positions[i]
}

func (m *Mesh) uv(i uint32) mgl32.Vec2 {
	if int(i) >= len(m.UVs) {
		return mgl32.Vec2{}
	}
	return m.UVs[i]
}

// triangleNormal returns the precomputed normal for triangle ti, or
// false when the mesh does not carry normals.
func (m *Mesh) triangleNormal(ti uint32) (mgl32.Vec3, bool) {
	if int(ti) >= len(m.Normals) {
		return mgl32.Vec3{}, false
	}
	return m.Normals[ti], true
}

// MeshStore registers loaded meshes under uuid handles. Registration
// happens at load time; Get is safe from any goroutine.
type MeshStore struct {
	mu     sync.RWMutex
	meshes map[MeshId]*Mesh
}

func NewMeshStore() *MeshStore {
	return &MeshStore{meshes: make(map[MeshId]*Mesh)}
}

// Register assigns the mesh an id and builds its meshlet partition if
// the loader did not supply one.
func (s *MeshStore) Register(m *Mesh) MeshId {
	if len(m.Meshlets) == 0 {
		BuildMeshlets(m, MaxMeshletTriangles)
	}
	id := makeMeshId()
	m.Id = id
	s.mu.Lock()
	s.meshes[id] = m
	s.mu.Unlock()
	return id
}

func (s *MeshStore) Get(id MeshId) (*Mesh, bool) {
	s.mu.RLock()
	m, ok := s.meshes[id]
	s.mu.RUnlock()
	return m, ok
}

func (s *MeshStore) Remove(id MeshId) {
	s.mu.Lock()
	delete(s.meshes, id)
	s.mu.Unlock()
}
