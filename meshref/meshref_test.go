package meshref

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func unitTriangleMesh(t *testing.T) *MeshRef {
	t.Helper()
	verts := []r3.Vector{{}, {X: 1}, {Y: 1}}
	tris := []Triangle{{A: 0, B: 1, C: 2}}
	mesh, err := New(verts, tris, Occupied, 2.0)
	test.That(t, err, test.ShouldBeNil)
	return mesh
}

func TestNewRejectsOutOfRangeVertexIndex(t *testing.T) {
	verts := []r3.Vector{{}, {X: 1}, {Y: 1}}
	tris := []Triangle{{A: 0, B: 1, C: 3}}
	_, err := New(verts, tris, Occupied, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRejectsNegativeCostDensity(t *testing.T) {
	verts := []r3.Vector{{}, {X: 1}, {Y: 1}}
	tris := []Triangle{{A: 0, B: 1, C: 2}}
	_, err := New(verts, tris, Occupied, -1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTriangleVerticesReturnsLocalFramePositions(t *testing.T) {
	mesh := unitTriangleMesh(t)
	p1, p2, p3 := mesh.TriangleVertices(0)
	test.That(t, p1, test.ShouldResemble, r3.Vector{})
	test.That(t, p2, test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, p3, test.ShouldResemble, r3.Vector{Y: 1})
}

func TestAccessorsReflectConstruction(t *testing.T) {
	mesh := unitTriangleMesh(t)
	test.That(t, mesh.NumVertices(), test.ShouldEqual, 3)
	test.That(t, mesh.NumTriangles(), test.ShouldEqual, 1)
	test.That(t, mesh.Occupancy(), test.ShouldEqual, Occupied)
	test.That(t, mesh.CostDensity(), test.ShouldEqual, 2.0)
}

func TestWithVerticesPreservesTopologyAndDoesNotMutateOriginal(t *testing.T) {
	mesh := unitTriangleMesh(t)
	moved := []r3.Vector{{X: 5}, {X: 6}, {X: 5, Y: 1}}
	replaced, err := mesh.WithVertices(moved)
	test.That(t, err, test.ShouldBeNil)

	p1, _, _ := replaced.TriangleVertices(0)
	test.That(t, p1, test.ShouldResemble, r3.Vector{X: 5})

	origP1, _, _ := mesh.TriangleVertices(0)
	test.That(t, origP1, test.ShouldResemble, r3.Vector{})
	test.That(t, replaced.Occupancy(), test.ShouldEqual, mesh.Occupancy())
	test.That(t, replaced.CostDensity(), test.ShouldEqual, mesh.CostDensity())
}

func TestWithVerticesRejectsOutOfRangeReplacement(t *testing.T) {
	mesh := unitTriangleMesh(t)
	_, err := mesh.WithVertices([]r3.Vector{{}, {X: 1}})
	test.That(t, err, test.ShouldNotBeNil)
}
