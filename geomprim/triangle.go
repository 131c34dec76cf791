// Package geomprim implements the GeomPrim kernel contract that
// spec.md treats as an external collaborator (§2.1, §6): triangle-pair
// intersection in a common frame and across a relative transform,
// the AABB of a triangle, and bounding-volume overlap/disjoint tests
// per BV kind. Everything here is a pure function or stateless
// computation; nothing retains ownership of its inputs.
package geomprim

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/xform"
)

// axisEpsilon guards against near-zero separating-axis lengths, the
// way a production SAT implementation must to avoid dividing by (or
// comparing against) noise from nearly-parallel edges.
const axisEpsilon = 1e-10

// TriPairTest reports whether two triangles, given in a common frame,
// intersect. It is the presence-only form of the kernel: no contact
// geometry is computed.
func TriPairTest(p1, p2, p3, q1, q2, q3 r3.Vector) bool {
	res := satTriangles(p1, p2, p3, q1, q2, q3)
	return res.intersects
}

// TriPairTestRT reports whether two triangles intersect, where p is
// given in mesh1's frame, q is given in mesh2's frame, and rt maps
// mesh2-frame points into mesh1's frame (rt = relativeTransform(tf1,
// tf2)).
func TriPairTestRT(p1, p2, p3, q1, q2, q3 r3.Vector, rt xform.Transform) bool {
	return TriPairTest(p1, p2, p3, rt.Apply(q1), rt.Apply(q2), rt.Apply(q3))
}

// TriPairTestContacts is the geometry-returning form of the kernel: on
// intersection it additionally reports up to 2 contact points, a unit
// normal pointing from triangle p toward triangle q, and a
// penetration depth. All three are expressed in whatever frame p and
// q were given in.
func TriPairTestContacts(p1, p2, p3, q1, q2, q3 r3.Vector) (contacts []r3.Vector, normal r3.Vector, penetration float64, intersects bool) {
	res := satTriangles(p1, p2, p3, q1, q2, q3)
	if !res.intersects {
		return nil, r3.Vector{}, 0, false
	}
	contacts = contactManifold(p1, p2, p3, q1, q2, q3, res.axis)
	return contacts, res.axis, res.depth, true
}

// TriPairTestContactsRT is the oriented-frame counterpart of
// TriPairTestContacts: q is transformed into p's frame by rt before
// testing, and the returned contacts/normal are in p's (mesh1's)
// frame — the caller (traversal) is responsible for mapping them to
// world frame via tf1, per spec.md §4.3.
func TriPairTestContactsRT(p1, p2, p3, q1, q2, q3 r3.Vector, rt xform.Transform) (contacts []r3.Vector, normal r3.Vector, penetration float64, intersects bool) {
	return TriPairTestContacts(p1, p2, p3, rt.Apply(q1), rt.Apply(q2), rt.Apply(q3))
}

// TriangleAABB returns the tight axis-aligned bounding box of a
// triangle.
func TriangleAABB(p1, p2, p3 r3.Vector) bv.AABB {
	return bv.NewAABB(p1, p2, p3)
}

type satResult struct {
	intersects bool
	axis       r3.Vector // unit axis of minimum penetration, pointing from triangle p to triangle q
	depth      float64
}

// satTriangles runs a separating-axis test over 17 candidate axes for
// a triangle pair: each triangle's face normal, the 9 cross products
// of their edges, and each triangle's 3 in-plane edge normals
// (faceNormal × edge). The first 11 are the standard 3D SAT
// formulation for two non-coplanar convex polygons; the in-plane edge
// normals are required in addition because when the two triangles are
// coplanar (or nearly so), every one of the first 11 axes collapses to
// a multiple of the shared face normal and cannot express a true
// separating axis lying within that shared plane — the same gap 2D
// polygon SAT closes with per-edge normals. Where the test reports
// intersection, the axis of minimum overlap among the 15 edge-derived
// axes (the two face normals excluded) doubles as the contact normal
// and penetration depth.
func satTriangles(p1, p2, p3, q1, q2, q3 r3.Vector) satResult {
	pEdges := [3]r3.Vector{p2.Sub(p1), p3.Sub(p2), p1.Sub(p3)}
	qEdges := [3]r3.Vector{q2.Sub(q1), q3.Sub(q2), q1.Sub(q3)}
	normalP := pEdges[0].Cross(pEdges[1])
	normalQ := qEdges[0].Cross(qEdges[1])

	faceAxes := []r3.Vector{normalP, normalQ}
	var mtvAxes []r3.Vector
	for _, pe := range pEdges {
		for _, qe := range qEdges {
			mtvAxes = append(mtvAxes, pe.Cross(qe))
		}
	}
	for _, pe := range pEdges {
		mtvAxes = append(mtvAxes, normalP.Cross(pe))
	}
	for _, qe := range qEdges {
		mtvAxes = append(mtvAxes, normalQ.Cross(qe))
	}

	centroidP := p1.Add(p2).Add(p3).Scale(1.0 / 3)
	centroidQ := q1.Add(q2).Add(q3).Scale(1.0 / 3)

	// Pass 1: reject on any separating axis, including the two face
	// normals. A flat triangle's own face-normal axis can only ever
	// read back an overlap of exactly 0 (straddle) or negative
	// (separated) — it never carries a meaningful positive depth,
	// since the triangle itself has zero extent along its own normal.
	for _, set := range [2][]r3.Vector{faceAxes, mtvAxes} {
		for _, axis := range set {
			n := axis.Norm()
			if n < axisEpsilon {
				continue // near-degenerate edge pair; skip, matching §7's degenerate-input handling
			}
			axis = axis.Scale(1 / n)
			minP, maxP := projectTriangle(axis, p1, p2, p3)
			minQ, maxQ := projectTriangle(axis, q1, q2, q3)
			if math.Min(maxP, maxQ)-math.Max(minP, minQ) < 0 {
				return satResult{intersects: false}
			}
		}
	}

	// Pass 2: pick the minimum-overlap axis among the 15 edge-derived
	// axes only, for use as contact normal/depth — these are the axes
	// that can carry genuine positive penetration; the face normals
	// are excluded here since they would otherwise always win with a
	// vacuous depth of 0 whenever one triangle straddles the other's
	// plane, which is the common case for a generic transversal
	// crossing and would make "depth" meaningless.
	best := satResult{}
	bestDepth := math.MaxFloat64
	for _, axis := range mtvAxes {
		n := axis.Norm()
		if n < axisEpsilon {
			continue
		}
		axis = axis.Scale(1 / n)
		minP, maxP := projectTriangle(axis, p1, p2, p3)
		minQ, maxQ := projectTriangle(axis, q1, q2, q3)
		overlap := math.Min(maxP, maxQ) - math.Max(minP, minQ)
		if overlap < bestDepth {
			bestDepth = overlap
			dir := axis
			if centroidQ.Sub(centroidP).Dot(axis) < 0 {
				dir = axis.Scale(-1)
			}
			best = satResult{intersects: true, axis: dir, depth: overlap}
		}
	}
	if bestDepth == math.MaxFloat64 {
		// every edge-derived axis degenerated; fall back to p's face
		// normal, or q's when p's is degenerate, which is always
		// available whenever at least one triangle is non-degenerate.
		axis := normalP
		if axis.Norm() < axisEpsilon {
			axis = normalQ
		}
		if axis.Norm() < axisEpsilon {
			return satResult{intersects: false}
		}
		axis = axis.Scale(1 / axis.Norm())
		if centroidQ.Sub(centroidP).Dot(axis) < 0 {
			axis = axis.Scale(-1)
		}
		return satResult{intersects: true, axis: axis, depth: 0}
	}
	return best
}

func projectTriangle(axis, a, b, c r3.Vector) (min, max float64) {
	da, db, dc := a.Dot(axis), b.Dot(axis), c.Dot(axis)
	min = math.Min(da, math.Min(db, dc))
	max = math.Max(da, math.Max(db, dc))
	return
}

// contactManifold derives up to 2 contact points along the
// minimum-penetration axis: each triangle's vertices are tested for
// how deep they sit inside the other triangle's prism along axis, and
// the deepest one or two candidates are kept, whichever triangle they
// come from. This mirrors the common vertex-against-opposing-face
// contact generation used by simple polyhedra colliders: exact
// polygon clipping is not required to produce a stable, bounded
// contact set.
func contactManifold(p1, p2, p3, q1, q2, q3, axis r3.Vector) []r3.Vector {
	type candidate struct {
		point r3.Vector
		depth float64
	}
	var candidates []candidate

	qCentroid := q1.Add(q2).Add(q3).Scale(1.0 / 3)
	for _, p := range [3]r3.Vector{p1, p2, p3} {
		if barycentricInside(p, q1, q2, q3, axis) {
			candidates = append(candidates, candidate{point: p, depth: qCentroid.Sub(p).Dot(axis)})
		}
	}
	pCentroid := p1.Add(p2).Add(p3).Scale(1.0 / 3)
	for _, q := range [3]r3.Vector{q1, q2, q3} {
		if barycentricInside(q, p1, p2, p3, axis) {
			candidates = append(candidates, candidate{point: q, depth: pCentroid.Sub(q).Dot(axis)})
		}
	}
	if len(candidates) == 0 {
		// Edge-edge intersection with no vertex interior to the other
		// face: fall back to the midpoint between the closest edge
		// pair's segment, which is still a defensible single contact.
		return []r3.Vector{closestEdgePairMidpoint(p1, p2, p3, q1, q2, q3)}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].depth > candidates[j].depth })
	out := make([]r3.Vector, 0, 2)
	for i := 0; i < len(candidates) && i < 2; i++ {
		out = append(out, candidates[i].point)
	}
	return out
}

// barycentricInside reports whether the projection of p onto the
// plane of triangle (a,b,c) along axis falls within the triangle.
func barycentricInside(p, a, b, c, axis r3.Vector) bool {
	n := b.Sub(a).Cross(c.Sub(a))
	nDotAxis := n.Dot(axis)
	if math.Abs(nDotAxis) < axisEpsilon {
		return false
	}
	t := a.Sub(p).Dot(n) / nDotAxis
	proj := p.Add(axis.Scale(t))

	v0, v1, v2 := c.Sub(a), b.Sub(a), proj.Sub(a)
	dot00, dot01, dot02 := v0.Dot(v0), v0.Dot(v1), v0.Dot(v2)
	dot11, dot12 := v1.Dot(v1), v1.Dot(v2)
	denom := dot00*dot11 - dot01*dot01
	if math.Abs(denom) < axisEpsilon {
		return false
	}
	u := (dot11*dot02 - dot01*dot12) / denom
	v := (dot00*dot12 - dot01*dot02) / denom
	return u >= -1e-7 && v >= -1e-7 && u+v <= 1+1e-7
}

func closestEdgePairMidpoint(p1, p2, p3, q1, q2, q3 r3.Vector) r3.Vector {
	pEdges := [3][2]r3.Vector{{p1, p2}, {p2, p3}, {p3, p1}}
	qEdges := [3][2]r3.Vector{{q1, q2}, {q2, q3}, {q3, q1}}
	best := p1.Add(q1).Scale(0.5)
	bestDist := math.MaxFloat64
	for _, pe := range pEdges {
		for _, qe := range qEdges {
			cp, cq := closestPointsOnSegments(pe[0], pe[1], qe[0], qe[1])
			if d := cp.Sub(cq).Norm(); d < bestDist {
				bestDist = d
				best = cp.Add(cq).Scale(0.5)
			}
		}
	}
	return best
}

// closestPointsOnSegments finds the closest pair of points between
// segments (a0,a1) and (b0,b1).
func closestPointsOnSegments(a0, a1, b0, b1 r3.Vector) (r3.Vector, r3.Vector) {
	d1 := a1.Sub(a0)
	d2 := b1.Sub(b0)
	r := a0.Sub(b0)
	aa, ee, ff := d1.Dot(d1), d2.Dot(d2), d2.Dot(r)

	var s, t float64
	if aa <= axisEpsilon && ee <= axisEpsilon {
		return a0, b0
	}
	if aa <= axisEpsilon {
		s = 0
		t = clamp01(ff / ee)
	} else {
		c := d1.Dot(r)
		if ee <= axisEpsilon {
			t = 0
			s = clamp01(-c / aa)
		} else {
			b := d1.Dot(d2)
			denom := aa*ee - b*b
			if denom != 0 {
				s = clamp01((b*ff - c*ee) / denom)
			}
			t = (b*s + ff) / ee
			if t < 0 {
				t = 0
				s = clamp01(-c / aa)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / aa)
			}
		}
	}
	return a0.Add(d1.Scale(s)), b0.Add(d2.Scale(t))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
