package geomprim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/xform"
)

// AABBOverlap reports whether two AABBs, already in a common frame,
// overlap. It is the negation of bv.AABB.Disjoint, which the
// same-frame traversal variant's bvTest calls directly.
func AABBOverlap(a, b bv.AABB) bool {
	return !a.Disjoint(b)
}

// OBBOverlap is the oriented bvOverlap primitive for OBB: a and b are
// each given in their own mesh's local frame, and rt maps mesh2-frame
// points into mesh1's frame.
func OBBOverlap(rt xform.Transform, a, b bv.OBB) bool {
	worldB := b.Transformed(rt.Rotation, rt.Translation)
	return !a.Disjoint(worldB)
}

// RSSOverlap is the oriented bvOverlap primitive for RSS.
func RSSOverlap(rt xform.Transform, a, b bv.RSS) bool {
	worldB := b.Transformed(rt.Rotation, rt.Translation)
	return !a.Disjoint(worldB)
}

// KIOSOverlap is the oriented bvOverlap primitive for kIOS.
func KIOSOverlap(rt xform.Transform, a, b bv.KIOS) bool {
	worldB := b.Transformed(rt.Rotation, rt.Translation)
	return !a.Disjoint(worldB)
}

// OBBRSSOverlap is the oriented bvOverlap primitive for the composed
// OBBRSS kind.
func OBBRSSOverlap(rt xform.Transform, a, b bv.OBBRSS) bool {
	worldB := b.Transformed(rt.Rotation, rt.Translation)
	return !a.Disjoint(worldB)
}

// OBBDisjoint is the secondary OBB overload named in spec.md §4.2:
// usable by drivers that already propagate a node-local relative
// rotation/translation (Rc,Tc) rather than the node's own (R,T), an
// optimization real BVH descent uses to avoid recomputing the full
// relative transform at every pair. extent1/extent2 are each box's
// half-extents along its own local axes.
func OBBDisjoint(rc mgl64.Mat3, tc r3.Vector, extent1, extent2 r3.Vector) bool {
	return bv.SeparatingAxis(rc, tc, extent1, extent2)
}

// RelativeTransform computes (R,T) such that mapping a point in
// mesh2's frame through (R,T) yields its mesh1-frame coordinates:
// R*x+T, matching spec.md §6's relativeTransform(tf1,tf2) contract.
func RelativeTransform(tf1, tf2 xform.Transform) xform.Transform {
	return xform.Relative(tf1, tf2)
}
