package traversal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/bvh"
	"github.com/bruce-mann/meshcollide/geomprim"
	"github.com/bruce-mann/meshcollide/meshref"
	"github.com/bruce-mann/meshcollide/request"
	"github.com/bruce-mann/meshcollide/xform"
)

// Overlap is a BV-kind-specific oriented bvOverlap primitive: a
// bounding volume in mesh1's frame, one in mesh2's frame, and the
// relative transform rt mapping mesh2-frame points to mesh1-frame.
// geomprim supplies one instance per BV kind (OBBOverlap, RSSOverlap,
// KIOSOverlap, OBBRSSOverlap); OrientedNode is generic over which one
// it was built with, so the four oriented variants named in spec.md
// §4.2 are four instantiations of one generic type rather than four
// hand-duplicated ones.
type Overlap[B bv.Volume[B]] func(rt xform.Transform, a, b B) bool

// OrientedNode is the traversal node shared by the OBB, RSS, kIOS and
// OBBRSS variants (spec.md §4.2): meshes stay in their own local
// frames, and a precomputed relative transform (R,T) maps mesh2-frame
// points/directions into mesh1's frame.
type OrientedNode[B bv.Volume[B]] struct {
	Mesh1, Mesh2 *meshref.MeshRef
	BVH1, BVH2   *bvh.BvhRef[B]
	Tf1, Tf2     xform.Transform
	RT           xform.Transform
	Request      request.Request
	Result       *request.Result
	CostDensity  float64
	overlap      Overlap[B]
}

// NewOrientedNode is the shared oriented initializer (spec.md §4.5):
// meshes are left untouched, and (R,T) = relativeTransform(tf1,tf2) is
// computed and stored. Fails if either model is not Triangles.
func NewOrientedNode[B bv.Volume[B]](
	mesh1, mesh2 *meshref.MeshRef,
	bvh1, bvh2 *bvh.BvhRef[B],
	tf1, tf2 xform.Transform,
	req request.Request,
	result *request.Result,
	overlap Overlap[B],
) (*OrientedNode[B], error) {
	if bvh1.GetModelType() != bvh.ModelTriangles || bvh2.GetModelType() != bvh.ModelTriangles {
		return nil, errors.New("traversal: oriented initializer requires both BVHs to have model type Triangles")
	}
	return &OrientedNode[B]{
		Mesh1:       mesh1,
		Mesh2:       mesh2,
		BVH1:        bvh1,
		BVH2:        bvh2,
		Tf1:         tf1,
		Tf2:         tf2,
		RT:          geomprim.RelativeTransform(tf1, tf2),
		Request:     req,
		Result:      result,
		CostDensity: mesh1.CostDensity() * mesh2.CostDensity(),
		overlap:     overlap,
	}, nil
}

// NewOBBNode constructs the OBB oriented variant.
func NewOBBNode(mesh1, mesh2 *meshref.MeshRef, bvh1, bvh2 *bvh.BvhRef[bv.OBB], tf1, tf2 xform.Transform, req request.Request, result *request.Result) (*OrientedNode[bv.OBB], error) {
	return NewOrientedNode[bv.OBB](mesh1, mesh2, bvh1, bvh2, tf1, tf2, req, result, geomprim.OBBOverlap)
}

// NewRSSNode constructs the RSS oriented variant.
func NewRSSNode(mesh1, mesh2 *meshref.MeshRef, bvh1, bvh2 *bvh.BvhRef[bv.RSS], tf1, tf2 xform.Transform, req request.Request, result *request.Result) (*OrientedNode[bv.RSS], error) {
	return NewOrientedNode[bv.RSS](mesh1, mesh2, bvh1, bvh2, tf1, tf2, req, result, geomprim.RSSOverlap)
}

// NewKIOSNode constructs the kIOS oriented variant.
func NewKIOSNode(mesh1, mesh2 *meshref.MeshRef, bvh1, bvh2 *bvh.BvhRef[bv.KIOS], tf1, tf2 xform.Transform, req request.Request, result *request.Result) (*OrientedNode[bv.KIOS], error) {
	return NewOrientedNode[bv.KIOS](mesh1, mesh2, bvh1, bvh2, tf1, tf2, req, result, geomprim.KIOSOverlap)
}

// NewOBBRSSNode constructs the composed OBB+RSS oriented variant.
func NewOBBRSSNode(mesh1, mesh2 *meshref.MeshRef, bvh1, bvh2 *bvh.BvhRef[bv.OBBRSS], tf1, tf2 xform.Transform, req request.Request, result *request.Result) (*OrientedNode[bv.OBBRSS], error) {
	return NewOrientedNode[bv.OBBRSS](mesh1, mesh2, bvh1, bvh2, tf1, tf2, req, result, geomprim.OBBRSSOverlap)
}

// BVTest evaluates the BV-kind-specific oriented overlap test at node
// indices (i,j); true means disjoint (prunable).
func (n *OrientedNode[B]) BVTest(i, j int) bool {
	if n.Request.EnableStatistics {
		n.Result.NumBVTests++
	}
	return !n.overlap(n.RT, n.BVH1.GetBV(i), n.BVH2.GetBV(j))
}

// CanStop reports whether the request's stop predicate is satisfied.
func (n *OrientedNode[B]) CanStop() bool {
	return n.Request.IsSatisfied(n.Result)
}

// Stats reports the node's bv-test/leaf-test counters, for a driver
// (package descend) to log after a run. Zero unless EnableStatistics
// was set on the request.
func (n *OrientedNode[B]) Stats() (numBVTests, numLeafTests int) {
	return n.Result.NumBVTests, n.Result.NumLeafTests
}

// LeafTest is the triangle-pair leaf test for an oriented node
// (spec.md §4.3, oriented branch): triangles stay in their own mesh
// frames for the intersection test itself, and any contact geometry
// or AABB handed to the shared dispatcher is first mapped into world
// frame via tf1 (points and AABBs through Apply/Transformed, normals
// through the rotational part only).
func (n *OrientedNode[B]) LeafTest(i, j int) {
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
			return geomprim.TriPairTestRT(p1, p2, p3, q1, q2, q3, n.RT)
		},
		TestContacts: func() ([]r3.Vector, r3.Vector, float64, bool) {
			points, normal, depth, ok := geomprim.TriPairTestContactsRT(p1, p2, p3, q1, q2, q3, n.RT)
			if !ok {
				return nil, r3.Vector{}, 0, false
			}
			worldPoints := make([]r3.Vector, len(points))
			for k, pt := range points {
				worldPoints[k] = n.Tf1.Apply(pt)
			}
			return worldPoints, n.Tf1.ApplyRotation(normal), depth, true
		},
		AABB1: func() bv.AABB {
			return geomprim.TriangleAABB(p1, p2, p3).Transformed(n.Tf1.Rotation, n.Tf1.Translation)
		},
		AABB2: func() bv.AABB {
			return geomprim.TriangleAABB(q1, q2, q3).Transformed(n.Tf2.Rotation, n.Tf2.Translation)
		},
	})
}

// BVTestRelative is the OBB-only secondary bvTest(i,j,Rc,Tc) overload
// of spec.md §4.2: usable by drivers that already maintain a
// node-local relative rotation/translation rather than recomputing
// the full (R,T) at every pair. The half-extents of the two OBBs at
// nodes i and j are taken from the BVHs; only (Rc,Tc) come from the
// caller.
func BVTestRelative(n *OrientedNode[bv.OBB], i, j int, rc mgl64.Mat3, tc r3.Vector) bool {
	if n.Request.EnableStatistics {
		n.Result.NumBVTests++
	}
	b1 := n.BVH1.GetBV(i)
	b2 := n.BVH2.GetBV(j)
	return geomprim.OBBDisjoint(rc, tc, b1.Extent, b2.Extent)
}

// LeafTestRelative is the OBB-only secondary leafTest(i,j,Rc,Tc)
// overload of spec.md §4.2, paired with BVTestRelative. The triangle
// kernel itself always needs the node's full mesh1-vs-mesh2 relative
// transform RT regardless of which BV-local (Rc,Tc) the driver used to
// prune down to this pair, so this delegates straight to LeafTest;
// the (Rc,Tc) parameters exist only so a driver that tracks node-local
// transforms can call leafTest without special-casing the OBB variant.
func LeafTestRelative(n *OrientedNode[bv.OBB], i, j int, rc mgl64.Mat3, tc r3.Vector) {
	n.LeafTest(i, j)
}
