package bvh

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/meshref"
)

func fitAABB(p1, p2, p3 r3.Vector) bv.AABB {
	box := bv.NewAABB(p1, p1)
	box = box.Union(bv.NewAABB(p2, p2))
	box = box.Union(bv.NewAABB(p3, p3))
	return box
}

// twoTriangleMesh builds two disjoint unit-right-triangles side by
// side along x, wrapped in a two-leaf, one-root BVH (root at index 0).
func twoTriangleMesh(t *testing.T) (*meshref.MeshRef, []Node[bv.AABB]) {
	t.Helper()
	verts := []r3.Vector{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
		{X: 10, Y: 0}, {X: 11, Y: 0}, {X: 10, Y: 1},
	}
	tris := []meshref.Triangle{{A: 0, B: 1, C: 2}, {A: 3, B: 4, C: 5}}
	mesh, err := meshref.New(verts, tris, meshref.Occupied, 1.0)
	test.That(t, err, test.ShouldBeNil)

	leafA := fitAABB(verts[0], verts[1], verts[2])
	leafB := fitAABB(verts[3], verts[4], verts[5])
	nodes := []Node[bv.AABB]{
		{BV: leafA.Union(leafB), Left: 1, Right: 2, PrimitiveID: -1},
		{BV: leafA, Left: -1, Right: -1, PrimitiveID: 0},
		{BV: leafB, Left: -1, Right: -1, PrimitiveID: 1},
	}
	return mesh, nodes
}

func TestNewRejectsEmptyNodeArray(t *testing.T) {
	mesh, _ := twoTriangleMesh(t)
	_, err := New(mesh, nil, ModelTriangles, fitAABB)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRejectsOutOfRangePrimitiveID(t *testing.T) {
	mesh, nodes := twoTriangleMesh(t)
	nodes[1].PrimitiveID = 99
	_, err := New(mesh, nodes, ModelTriangles, fitAABB)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAccessorsExposeHierarchyShape(t *testing.T) {
	mesh, nodes := twoTriangleMesh(t)
	h, err := New(mesh, nodes, ModelTriangles, fitAABB)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, h.GetModelType(), test.ShouldEqual, ModelTriangles)
	test.That(t, h.NumNodes(), test.ShouldEqual, 3)
	test.That(t, h.IsLeaf(0), test.ShouldBeFalse)
	test.That(t, h.IsLeaf(1), test.ShouldBeTrue)
	test.That(t, h.Left(0), test.ShouldEqual, 1)
	test.That(t, h.Right(0), test.ShouldEqual, 2)
	test.That(t, h.PrimitiveID(1), test.ShouldEqual, 0)
	test.That(t, h.PrimitiveID(2), test.ShouldEqual, 1)
}

func TestEndReplaceModelRefitsLeavesAndRoot(t *testing.T) {
	mesh, nodes := twoTriangleMesh(t)
	h, err := New(mesh, nodes, ModelTriangles, fitAABB)
	test.That(t, err, test.ShouldBeNil)

	shifted := []r3.Vector{
		{X: 100, Y: 0}, {X: 101, Y: 0}, {X: 100, Y: 1},
		{X: 110, Y: 0}, {X: 111, Y: 0}, {X: 110, Y: 1},
	}
	h.BeginReplaceModel()
	h.ReplaceSubModel(shifted)
	test.That(t, h.EndReplaceModel(true, true), test.ShouldBeNil)

	test.That(t, h.GetBV(1).Min.X, test.ShouldEqual, 100.0)
	test.That(t, h.GetBV(2).Max.X, test.ShouldEqual, 111.0)
	test.That(t, h.GetBV(0).Min.X, test.ShouldEqual, 100.0)
	test.That(t, h.GetBV(0).Max.X, test.ShouldEqual, 111.0)
}

func TestEndReplaceModelRejectsWrongVertexCount(t *testing.T) {
	mesh, nodes := twoTriangleMesh(t)
	h, err := New(mesh, nodes, ModelTriangles, fitAABB)
	test.That(t, err, test.ShouldBeNil)

	h.BeginReplaceModel()
	h.ReplaceSubModel([]r3.Vector{{}, {X: 1}})
	test.That(t, h.EndReplaceModel(false, false), test.ShouldNotBeNil)
}

func TestEndReplaceModelWithoutBottomUpRefitLeavesInternalBoundsStale(t *testing.T) {
	mesh, nodes := twoTriangleMesh(t)
	h, err := New(mesh, nodes, ModelTriangles, fitAABB)
	test.That(t, err, test.ShouldBeNil)

	originalRoot := h.GetBV(0)
	shifted := []r3.Vector{
		{X: 100, Y: 0}, {X: 101, Y: 0}, {X: 100, Y: 1},
		{X: 110, Y: 0}, {X: 111, Y: 0}, {X: 110, Y: 1},
	}
	h.BeginReplaceModel()
	h.ReplaceSubModel(shifted)
	test.That(t, h.EndReplaceModel(true, false), test.ShouldBeNil)

	test.That(t, h.GetBV(1).Min.X, test.ShouldEqual, 100.0)
	test.That(t, h.GetBV(0), test.ShouldResemble, originalRoot)
}
