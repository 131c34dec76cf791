package bv

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// OBB is an oriented bounding box: a box centered at Center, rotated
// by Rotation (columns are the box's local axes in the mesh frame),
// with half-extents Extent along those axes.
type OBB struct {
	Center   r3.Vector
	Rotation mgl64.Mat3
	Extent   r3.Vector
}

// localAABB is the box expressed in its own frame: [-Extent, Extent].
func (o OBB) localAABB() AABB {
	return AABB{Min: o.Extent.Scale(-1), Max: o.Extent}
}

// Disjoint reports whether two OBBs in the same frame are disjoint,
// via the separating-axis test over each box's three local axes and
// the nine cross-axis pairs.
func (o OBB) Disjoint(other OBB) bool {
	rel := o.Rotation.Transpose().Mul3(other.Rotation)
	t := o.Rotation.Transpose().Mul3x1(mgl64Vec(other.Center.Sub(o.Center)))
	return SeparatingAxis(rel, vec3(t), o.Extent, other.Extent)
}

// Union returns an OBB enclosing both boxes, reusing o's orientation
// (a cheap, conservative refit rather than a fresh minimum-volume fit,
// since BVH construction itself is out of scope for this core).
func (o OBB) Union(other OBB) OBB {
	corners := append(o.corners(), other.corners()...)
	rotT := o.Rotation.Transpose()
	var local AABB
	for i, c := range corners {
		lp := vec3(rotT.Mul3x1(mgl64Vec(c)))
		if i == 0 {
			local = AABB{Min: lp, Max: lp}
		} else {
			local = local.extend(lp)
		}
	}
	center := o.Rotation.Mul3x1(mgl64Vec(local.Center()))
	return OBB{
		Center:   vec3(center),
		Rotation: o.Rotation,
		Extent:   local.Max.Sub(local.Center()),
	}
}

// Transformed returns o mapped through the rigid transform (rot,
// trans): rotation composes with o's orientation, translation and
// rotation move the center, and extents are unchanged (rigid maps
// preserve length).
func (o OBB) Transformed(rot mgl64.Mat3, trans r3.Vector) OBB {
	return OBB{
		Center:   vec3(rot.Mul3x1(mgl64Vec(o.Center))).Add(trans),
		Rotation: rot.Mul3(o.Rotation),
		Extent:   o.Extent,
	}
}

func (o OBB) corners() []r3.Vector {
	out := make([]r3.Vector, 0, 8)
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := r3.Vector{X: sx * o.Extent.X, Y: sy * o.Extent.Y, Z: sz * o.Extent.Z}
				out = append(out, o.Center.Add(vec3(o.Rotation.Mul3x1(mgl64Vec(local)))))
			}
		}
	}
	return out
}

// RSS is a rectangle-swept sphere: a rectangle of half-lengths Length
// and Width in the plane spanned by Rotation's first two columns,
// centered at Center, swept by a sphere of the given Radius.
type RSS struct {
	Center         r3.Vector
	Rotation       mgl64.Mat3
	Length, Width  float64
	Radius         float64
}

// Disjoint reports whether two RSSs in the same frame are disjoint:
// the minimum distance between the two inner rectangles must exceed
// the sum of the two radii.
func (r RSS) Disjoint(other RSS) bool {
	return rectDistance(r, other) > r.Radius+other.Radius
}

// Union returns an RSS enclosing both, keeping r's frame and growing
// the rectangle and radius conservatively.
func (r RSS) Union(other RSS) RSS {
	d := rectDistance(r, other)
	newRadius := math.Max(r.Radius, other.Radius) + d/2
	return RSS{
		Center:   r.Center.Add(other.Center).Scale(0.5),
		Rotation: r.Rotation,
		Length:   math.Max(r.Length, other.Length) + d/2,
		Width:    math.Max(r.Width, other.Width) + d/2,
		Radius:   newRadius,
	}
}

// Transformed returns r mapped through the rigid transform (rot,
// trans).
func (r RSS) Transformed(rot mgl64.Mat3, trans r3.Vector) RSS {
	return RSS{
		Center:   vec3(rot.Mul3x1(mgl64Vec(r.Center))).Add(trans),
		Rotation: rot.Mul3(r.Rotation),
		Length:   r.Length,
		Width:    r.Width,
		Radius:   r.Radius,
	}
}

// KIOS is a k-discrete-oriented-sphere bounding volume: a small union
// of spheres that together enclose the region more tightly than a
// single sphere. The number of spheres is not bounded; Union
// concatenates both sphere sets.
type KIOS struct {
	Centers []r3.Vector
	Radii   []float64
}

// Disjoint reports whether every sphere pair across the two unions is
// separated; i.e. whether no pair of spheres (one from each union)
// overlaps.
func (k KIOS) Disjoint(other KIOS) bool {
	for i, c1 := range k.Centers {
		for j, c2 := range other.Centers {
			if c1.Sub(c2).Norm() <= k.Radii[i]+other.Radii[j] {
				return false
			}
		}
	}
	return true
}

// Union returns a KIOS enclosing both sphere sets by concatenation.
// This is conservative (it does not re-minimize k); tightening the
// union is a BVH-construction concern, out of scope for this core.
func (k KIOS) Union(other KIOS) KIOS {
	return KIOS{
		Centers: append(append([]r3.Vector{}, k.Centers...), other.Centers...),
		Radii:   append(append([]float64{}, k.Radii...), other.Radii...),
	}
}

// Transformed returns k mapped through the rigid transform (rot,
// trans).
func (k KIOS) Transformed(rot mgl64.Mat3, trans r3.Vector) KIOS {
	centers := make([]r3.Vector, len(k.Centers))
	for i, c := range k.Centers {
		centers[i] = vec3(rot.Mul3x1(mgl64Vec(c))).Add(trans)
	}
	radii := make([]float64, len(k.Radii))
	copy(radii, k.Radii)
	return KIOS{Centers: centers, Radii: radii}
}

// OBBRSS composes an OBB and an RSS over the same region; bvOverlap
// for this kind requires both the OBB (cheap to fail fast) and the
// RSS (snug) to overlap. It is disjoint overall if it is disjoint as
// either constituent volume.
type OBBRSS struct {
	OBB OBB
	RSS RSS
}

// Disjoint reports disjointness of the composed volume: true if
// either constituent volume reports disjoint, since each constituent
// alone is already a valid enclosure of the same primitives.
func (o OBBRSS) Disjoint(other OBBRSS) bool {
	return o.OBB.Disjoint(other.OBB) || o.RSS.Disjoint(other.RSS)
}

// Union unions both constituent volumes independently.
func (o OBBRSS) Union(other OBBRSS) OBBRSS {
	return OBBRSS{OBB: o.OBB.Union(other.OBB), RSS: o.RSS.Union(other.RSS)}
}

// Transformed returns o mapped through the rigid transform (rot,
// trans), transforming both constituent volumes.
func (o OBBRSS) Transformed(rot mgl64.Mat3, trans r3.Vector) OBBRSS {
	return OBBRSS{OBB: o.OBB.Transformed(rot, trans), RSS: o.RSS.Transformed(rot, trans)}
}

func mgl64Vec(v r3.Vector) mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }
func vec3(v mgl64.Vec3) r3.Vector     { return r3.Vector{X: v[0], Y: v[1], Z: v[2]} }
