package traversal

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/bvh"
	"github.com/bruce-mann/meshcollide/descend"
	"github.com/bruce-mann/meshcollide/meshref"
	"github.com/bruce-mann/meshcollide/request"
	"github.com/bruce-mann/meshcollide/xform"
)

func fitAABB(p1, p2, p3 r3.Vector) bv.AABB { return bv.NewAABB(p1, p2, p3) }

// singleTriangleAABBHierarchy builds a one-node (root == leaf) BVH
// over a single occupied triangle, at the given vertex offset.
func singleTriangleAABBHierarchy(t *testing.T, offset r3.Vector, occ meshref.Occupancy) *bvh.BvhRef[bv.AABB] {
	t.Helper()
	verts := []r3.Vector{
		r3.Vector{X: 0, Y: 0}.Add(offset),
		r3.Vector{X: 1, Y: 0}.Add(offset),
		r3.Vector{X: 0, Y: 1}.Add(offset),
	}
	tris := []meshref.Triangle{{A: 0, B: 1, C: 2}}
	mesh, err := meshref.New(verts, tris, occ, 1.0)
	test.That(t, err, test.ShouldBeNil)

	box := fitAABB(verts[0], verts[1], verts[2])
	nodes := []bvh.Node[bv.AABB]{{BV: box, Left: -1, Right: -1, PrimitiveID: 0}}
	h, err := bvh.New(mesh, nodes, bvh.ModelTriangles, fitAABB)
	test.That(t, err, test.ShouldBeNil)
	return h
}

func TestSameFrameNodeDetectsOverlappingTriangles(t *testing.T) {
	bvh1 := singleTriangleAABBHierarchy(t, r3.Vector{}, meshref.Occupied)
	bvh2 := singleTriangleAABBHierarchy(t, r3.Vector{X: 0.3, Y: 0.3}, meshref.Occupied)

	tf1, tf2 := xform.Identity(), xform.Identity()
	req := request.Request{EnableContact: true, EnableStatistics: true, NumMaxContacts: 10}
	result := &request.Result{}

	node, err := NewSameFrameNode[bv.AABB](bvh1, bvh2, &tf1, &tf2, req, result, true, true)
	test.That(t, err, test.ShouldBeNil)

	d := descend.Driver{}
	d.Run(node, bvh1, bvh2, 0, 0)

	test.That(t, result.NumContacts() > 0, test.ShouldBeTrue)
	test.That(t, result.NumBVTests, test.ShouldEqual, 1)
	test.That(t, result.NumLeafTests, test.ShouldEqual, 1)
}

func TestSameFrameNodeSeparatedTrianglesNoContacts(t *testing.T) {
	bvh1 := singleTriangleAABBHierarchy(t, r3.Vector{}, meshref.Occupied)
	bvh2 := singleTriangleAABBHierarchy(t, r3.Vector{X: 50}, meshref.Occupied)

	tf1, tf2 := xform.Identity(), xform.Identity()
	req := request.Request{EnableContact: true, NumMaxContacts: 10}
	result := &request.Result{}

	node, err := NewSameFrameNode[bv.AABB](bvh1, bvh2, &tf1, &tf2, req, result, true, true)
	test.That(t, err, test.ShouldBeNil)

	descend.Driver{}.Run(node, bvh1, bvh2, 0, 0)
	test.That(t, result.NumContacts(), test.ShouldEqual, 0)
}

func TestSameFrameNodeBakesNonIdentityTransformAndResetsPointer(t *testing.T) {
	bvh1 := singleTriangleAABBHierarchy(t, r3.Vector{}, meshref.Occupied)
	bvh2 := singleTriangleAABBHierarchy(t, r3.Vector{}, meshref.Occupied)

	tf1 := xform.Identity()
	tf2 := xform.Transform{Rotation: mgl64.Ident3(), Translation: r3.Vector{X: 5}}
	req := request.Request{}
	result := &request.Result{}

	_, err := NewSameFrameNode[bv.AABB](bvh1, bvh2, &tf1, &tf2, req, result, true, true)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, xform.IsIdentity(tf2), test.ShouldBeTrue)
	p1, _, _ := bvh2.Mesh().TriangleVertices(0)
	test.That(t, p1.X, test.ShouldEqual, 5.0)
}

func TestSameFrameNodeRejectsNonTriangleModel(t *testing.T) {
	bvh1 := singleTriangleAABBHierarchy(t, r3.Vector{}, meshref.Occupied)
	mesh := bvh1.Mesh()
	nodes := []bvh.Node[bv.AABB]{{BV: bvh1.GetBV(0), Left: -1, Right: -1, PrimitiveID: 0}}
	points, err := bvh.New(mesh, nodes, bvh.ModelPoints, fitAABB)
	test.That(t, err, test.ShouldBeNil)

	tf1, tf2 := xform.Identity(), xform.Identity()
	_, err = NewSameFrameNode[bv.AABB](points, bvh1, &tf1, &tf2, request.Request{}, &request.Result{}, true, true)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSameFrameNodePresenceOnlyStopsAfterFirstContact(t *testing.T) {
	bvh1 := singleTriangleAABBHierarchy(t, r3.Vector{}, meshref.Occupied)
	bvh2 := singleTriangleAABBHierarchy(t, r3.Vector{X: 0.3, Y: 0.3}, meshref.Occupied)

	tf1, tf2 := xform.Identity(), xform.Identity()
	req := request.Request{EnableContact: false, NumMaxContacts: 1}
	result := &request.Result{}

	node, err := NewSameFrameNode[bv.AABB](bvh1, bvh2, &tf1, &tf2, req, result, true, true)
	test.That(t, err, test.ShouldBeNil)
	descend.Driver{}.Run(node, bvh1, bvh2, 0, 0)

	test.That(t, result.NumContacts(), test.ShouldEqual, 1)
}

// singleTriangleOBBHierarchy wraps the same triangle pair as the
// same-frame tests in a one-node OBB BVH, leaving the mesh in its own
// local frame (no offset baked in) for use with OrientedNode.
func singleTriangleOBBHierarchy(t *testing.T, occ meshref.Occupancy) *bvh.BvhRef[bv.OBB] {
	t.Helper()
	verts := []r3.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	tris := []meshref.Triangle{{A: 0, B: 1, C: 2}}
	mesh, err := meshref.New(verts, tris, occ, 1.0)
	test.That(t, err, test.ShouldBeNil)

	fitOBB := func(p1, p2, p3 r3.Vector) bv.OBB {
		box := bv.NewAABB(p1, p2, p3)
		return bv.OBB{Center: box.Center(), Rotation: mgl64.Ident3(), Extent: box.Max.Sub(box.Center())}
	}
	box := fitOBB(verts[0], verts[1], verts[2])
	nodes := []bvh.Node[bv.OBB]{{BV: box, Left: -1, Right: -1, PrimitiveID: 0}}
	h, err := bvh.New(mesh, nodes, bvh.ModelTriangles, fitOBB)
	test.That(t, err, test.ShouldBeNil)
	return h
}

func TestOrientedNodeDetectsOverlapViaRelativeTransform(t *testing.T) {
	bvh1 := singleTriangleOBBHierarchy(t, meshref.Occupied)
	bvh2 := singleTriangleOBBHierarchy(t, meshref.Occupied)

	tf1 := xform.Identity()
	tf2 := xform.Transform{Rotation: mgl64.Ident3(), Translation: r3.Vector{X: 0.3, Y: 0.3}}
	req := request.Request{EnableContact: true, EnableStatistics: true, NumMaxContacts: 10}
	result := &request.Result{}

	node, err := NewOBBNode(bvh1.Mesh(), bvh2.Mesh(), bvh1, bvh2, tf1, tf2, req, result)
	test.That(t, err, test.ShouldBeNil)

	descend.Driver{}.Run(node, bvh1, bvh2, 0, 0)
	test.That(t, result.NumContacts() > 0, test.ShouldBeTrue)
}

// TestSameFrameAndOrientedAgreeOnContactPresence exercises the
// invariant that the same-frame and oriented traversal variants must
// agree on whether two meshes intersect, regardless of which one
// carries the relative offset between them.
func TestSameFrameAndOrientedAgreeOnContactPresence(t *testing.T) {
	offset := r3.Vector{X: 0.3, Y: 0.3}

	sfBVH1 := singleTriangleAABBHierarchy(t, r3.Vector{}, meshref.Occupied)
	sfBVH2 := singleTriangleAABBHierarchy(t, offset, meshref.Occupied)
	sfTf1, sfTf2 := xform.Identity(), xform.Identity()
	sfResult := &request.Result{}
	sfReq := request.Request{EnableContact: false, NumMaxContacts: 1}
	sfNode, err := NewSameFrameNode[bv.AABB](sfBVH1, sfBVH2, &sfTf1, &sfTf2, sfReq, sfResult, true, true)
	test.That(t, err, test.ShouldBeNil)
	descend.Driver{}.Run(sfNode, sfBVH1, sfBVH2, 0, 0)

	orBVH1 := singleTriangleOBBHierarchy(t, meshref.Occupied)
	orBVH2 := singleTriangleOBBHierarchy(t, meshref.Occupied)
	orTf1 := xform.Identity()
	orTf2 := xform.Transform{Rotation: mgl64.Ident3(), Translation: offset}
	orResult := &request.Result{}
	orReq := request.Request{EnableContact: false, NumMaxContacts: 1}
	orNode, err := NewOBBNode(orBVH1.Mesh(), orBVH2.Mesh(), orBVH1, orBVH2, orTf1, orTf2, orReq, orResult)
	test.That(t, err, test.ShouldBeNil)
	descend.Driver{}.Run(orNode, orBVH1, orBVH2, 0, 0)

	test.That(t, orResult.NumContacts() > 0, test.ShouldEqual, sfResult.NumContacts() > 0)
}
