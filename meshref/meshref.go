// Package meshref provides MeshRef, an immutable view of a triangle
// mesh (spec.md §2.2, §3): an ordered vertex array, an ordered
// triangle-index array, an occupancy classification, and a cost
// density scalar. BVH construction and triangle/triangle geometric
// kernels are not this package's concern (GeomPrim, BvhRef); MeshRef
// only stores and validates the mesh data those packages consume.
package meshref

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Occupancy classifies a mesh for semantic filtering during leaf
// testing (spec.md §4.3).
type Occupancy int

const (
	Unknown Occupancy = iota
	Free
	Occupied
)

// Triangle is an index triple into a MeshRef's vertex array.
type Triangle struct {
	A, B, C int
}

// MeshRef is an immutable triangle mesh view in the mesh's local
// frame. The zero value is not usable; construct with New.
type MeshRef struct {
	vertices    []r3.Vector
	triangles   []Triangle
	occupancy   Occupancy
	costDensity float64
}

// New validates and constructs a MeshRef. It returns an error if any
// triangle references a vertex index outside [0, len(vertices)), or if
// costDensity is negative (spec.md §3's invariants).
func New(vertices []r3.Vector, triangles []Triangle, occupancy Occupancy, costDensity float64) (*MeshRef, error) {
	if costDensity < 0 {
		return nil, errors.Errorf("meshref: costDensity must be non-negative, got %v", costDensity)
	}
	for i, t := range triangles {
		for _, idx := range [3]int{t.A, t.B, t.C} {
			if idx < 0 || idx >= len(vertices) {
				return nil, errors.Errorf("meshref: triangle %d references out-of-range vertex %d (have %d vertices)", i, idx, len(vertices))
			}
		}
	}
	return &MeshRef{
		vertices:    vertices,
		triangles:   triangles,
		occupancy:   occupancy,
		costDensity: costDensity,
	}, nil
}

// NumTriangles returns the number of triangles in the mesh.
func (m *MeshRef) NumTriangles() int { return len(m.triangles) }

// NumVertices returns the number of vertices in the mesh.
func (m *MeshRef) NumVertices() int { return len(m.vertices) }

// Vertex returns the i'th vertex, in the mesh's local frame.
func (m *MeshRef) Vertex(i int) r3.Vector { return m.vertices[i] }

// Triangle returns the i'th triangle's vertex index triple.
func (m *MeshRef) Triangle(i int) Triangle { return m.triangles[i] }

// TriangleVertices returns the i'th triangle's three vertex
// positions, in the mesh's local frame.
func (m *MeshRef) TriangleVertices(i int) (p1, p2, p3 r3.Vector) {
	t := m.triangles[i]
	return m.vertices[t.A], m.vertices[t.B], m.vertices[t.C]
}

// Occupancy returns the mesh's occupancy classification.
func (m *MeshRef) Occupancy() Occupancy { return m.occupancy }

// CostDensity returns the mesh's cost density scalar.
func (m *MeshRef) CostDensity() float64 { return m.costDensity }

// WithVertices returns a new MeshRef sharing this one's triangles,
// occupancy, and cost density, but with a replaced vertex array. Used
// by the same-frame traversal initializer to bake a transform into a
// mesh before BVH refit (spec.md §4.5); it does not mutate m.
func (m *MeshRef) WithVertices(vertices []r3.Vector) (*MeshRef, error) {
	return New(vertices, m.triangles, m.occupancy, m.costDensity)
}
