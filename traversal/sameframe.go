// Package traversal implements TraversalNode (spec.md §2, §4): the
// per-mesh-pair context a driver (package descend) walks, exposing
// bvTest/leafTest/canStop. SameFrameNode is the generic,
// transforms-pre-baked variant (spec.md §4.1); OrientedNode is the
// (R,T)-carrying variant shared by the four oriented BV kinds
// (spec.md §4.2).
package traversal

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/bvh"
	"github.com/bruce-mann/meshcollide/geomprim"
	"github.com/bruce-mann/meshcollide/meshref"
	"github.com/bruce-mann/meshcollide/request"
	"github.com/bruce-mann/meshcollide/xform"
)

// SameFrameNode is the generic same-frame traversal node
// (MeshCollisionTraversalNode<BV> in spec.md's source vocabulary): both
// meshes are assumed already expressed in a common frame, and bvTest
// is simply BV-kind Disjoint — monomorphized per B via the bv.Volume
// constraint rather than dispatched through an interface at runtime.
type SameFrameNode[B bv.Volume[B]] struct {
	Mesh1, Mesh2 *meshref.MeshRef
	BVH1, BVH2   *bvh.BvhRef[B]
	Request      request.Request
	Result       *request.Result
	CostDensity  float64
}

// NewSameFrameNode is the same-frame initializer (spec.md §4.5). It
// fails, without mutating either BVH, if either model is not
// Triangles. If tf1/tf2 are not identity, it bakes them into the
// respective mesh's vertices via the BVH's replace-model sequence and
// resets the pointed-to transform to identity in place, so that
// calling this initializer again immediately afterward with the same
// *tf1/*tf2 is a no-op (spec.md §8 invariant 6).
func NewSameFrameNode[B bv.Volume[B]](
	bvh1, bvh2 *bvh.BvhRef[B],
	tf1, tf2 *xform.Transform,
	req request.Request,
	result *request.Result,
	useRefit, refitBottomUp bool,
) (*SameFrameNode[B], error) {
	if bvh1.GetModelType() != bvh.ModelTriangles || bvh2.GetModelType() != bvh.ModelTriangles {
		return nil, errors.New("traversal: same-frame initializer requires both BVHs to have model type Triangles")
	}
	if err := bakeTransform(bvh1, tf1, useRefit, refitBottomUp); err != nil {
		return nil, errors.Wrap(err, "traversal: baking tf1")
	}
	if err := bakeTransform(bvh2, tf2, useRefit, refitBottomUp); err != nil {
		return nil, errors.Wrap(err, "traversal: baking tf2")
	}
	return &SameFrameNode[B]{
		Mesh1:       bvh1.Mesh(),
		Mesh2:       bvh2.Mesh(),
		BVH1:        bvh1,
		BVH2:        bvh2,
		Request:     req,
		Result:      result,
		CostDensity: bvh1.Mesh().CostDensity() * bvh2.Mesh().CostDensity(),
	}, nil
}

func bakeTransform[B bv.Volume[B]](h *bvh.BvhRef[B], tf *xform.Transform, useRefit, refitBottomUp bool) error {
	if xform.IsIdentity(*tf) {
		return nil
	}
	mesh := h.Mesh()
	vertices := make([]r3.Vector, mesh.NumVertices())
	for i := range vertices {
		vertices[i] = tf.Apply(mesh.Vertex(i))
	}
	h.BeginReplaceModel()
	h.ReplaceSubModel(vertices)
	if err := h.EndReplaceModel(useRefit, refitBottomUp); err != nil {
		return err
	}
	*tf = xform.Identity()
	return nil
}

// BVTest reports whether the BVs at node indices (i,j) are disjoint —
// true meaning the driver may prune this pair without descending
// further (spec.md §4.1).
func (n *SameFrameNode[B]) BVTest(i, j int) bool {
	if n.Request.EnableStatistics {
		n.Result.NumBVTests++
	}
	return n.BVH1.GetBV(i).Disjoint(n.BVH2.GetBV(j))
}

// CanStop reports whether the request's stop predicate is satisfied.
func (n *SameFrameNode[B]) CanStop() bool {
	return n.Request.IsSatisfied(n.Result)
}

// Stats reports the node's bv-test/leaf-test counters, for a driver
// (package descend) to log after a run. Zero unless EnableStatistics
// was set on the request.
func (n *SameFrameNode[B]) Stats() (numBVTests, numLeafTests int) {
	return n.Result.NumBVTests, n.Result.NumLeafTests
}

// LeafTest is the triangle-pair leaf test for a same-frame node
// (spec.md §4.3): both triangles are already world-frame, so no
// post-hoc transform of contacts/normals/AABBs is needed.
func (n *SameFrameNode[B]) LeafTest(i, j int) {
	if n.Request.EnableStatistics {
		n.Result.NumLeafTests++
	}
	primID1 := n.BVH1.PrimitiveID(i)
	primID2 := n.BVH2.PrimitiveID(j)
	p1, p2, p3 := n.Mesh1.TriangleVertices(primID1)
	q1, q2, q3 := n.Mesh2.TriangleVertices(primID2)

	dispatchLeafTest(n.Request, n.Result, leafInputs{
		Occupancy1:  n.Mesh1.Occupancy(),
		Occupancy2:  n.Mesh2.Occupancy(),
		PrimID1:     primID1,
		PrimID2:     primID2,
		CostDensity: n.CostDensity,
		TestPresence: func() bool {
			return geomprim.TriPairTest(p1, p2, p3, q1, q2, q3)
		},
		TestContacts: func() ([]r3.Vector, r3.Vector, float64, bool) {
			return geomprim.TriPairTestContacts(p1, p2, p3, q1, q2, q3)
		},
		AABB1: func() bv.AABB { return geomprim.TriangleAABB(p1, p2, p3) },
		AABB2: func() bv.AABB { return geomprim.TriangleAABB(q1, q2, q3) },
	})
}
