// Package bv defines the bounding-volume kinds the traversal core is
// generic over: axis-aligned boxes, oriented boxes, rectangle-swept
// spheres, k-discrete-oriented-sphere unions, and the OBB+RSS
// composition. Each kind is a small value type; disjointness and
// union are defined per kind rather than through runtime dispatch, so
// that code generic over a bounding-volume kind (see
// traversal.SameFrameNode and traversal.OrientedNode)
// monomorphizes to concrete machine code per instantiation.
package bv

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// Volume is the constraint satisfied by every bounding-volume kind
// usable in a same-frame traversal: it can report whether it is
// disjoint from another instance of the same kind, and it can be
// unioned with another instance of the same kind (used by BVH refit).
//
// Oriented bvOverlap (the (R,T)-aware test used by the oriented
// traversal variants) is deliberately not part of this constraint: it
// lives in package geomprim as a free function per kind, since its
// signature differs from the same-frame Disjoint by the extra (R,T)
// arguments.
type Volume[T any] interface {
	Disjoint(other T) bool
	Union(other T) T
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max r3.Vector
}

// NewAABB returns the smallest AABB enclosing the given points.
func NewAABB(points ...r3.Vector) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box = box.extend(p)
	}
	return box
}

func (a AABB) extend(p r3.Vector) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(a.Min.X, p.X), Y: math.Min(a.Min.Y, p.Y), Z: math.Min(a.Min.Z, p.Z)},
		Max: r3.Vector{X: math.Max(a.Max.X, p.X), Y: math.Max(a.Max.Y, p.Y), Z: math.Max(a.Max.Z, p.Z)},
	}
}

// Disjoint reports whether a and other are separated by a positive
// gap along some axis. Boxes that only touch on a face, edge or
// corner are not disjoint.
func (a AABB) Disjoint(other AABB) bool {
	return a.Max.X < other.Min.X || other.Max.X < a.Min.X ||
		a.Max.Y < other.Min.Y || other.Max.Y < a.Min.Y ||
		a.Max.Z < other.Min.Z || other.Max.Z < a.Min.Z
}

// Union returns the smallest AABB enclosing both a and other.
func (a AABB) Union(other AABB) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(a.Min.X, other.Min.X), Y: math.Min(a.Min.Y, other.Min.Y), Z: math.Min(a.Min.Z, other.Min.Z)},
		Max: r3.Vector{X: math.Max(a.Max.X, other.Max.X), Y: math.Max(a.Max.Y, other.Max.Y), Z: math.Max(a.Max.Z, other.Max.Z)},
	}
}

// Center returns the midpoint of the box.
func (a AABB) Center() r3.Vector {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Intersection returns the overlap region of a and other. Only
// meaningful when !a.Disjoint(other); callers check that first.
func (a AABB) Intersection(other AABB) AABB {
	return AABB{
		Min: r3.Vector{X: math.Max(a.Min.X, other.Min.X), Y: math.Max(a.Min.Y, other.Min.Y), Z: math.Max(a.Min.Z, other.Min.Z)},
		Max: r3.Vector{X: math.Min(a.Max.X, other.Max.X), Y: math.Min(a.Max.Y, other.Max.Y), Z: math.Min(a.Max.Z, other.Max.Z)},
	}
}

// Transformed returns the smallest axis-aligned box enclosing a mapped
// through the rigid transform (rot, trans). Unlike the oriented BV
// kinds, an AABB is not closed under rigid transform, so this
// recomputes a fresh axis-aligned hull of the 8 transformed corners;
// used by the oriented traversal variants to bring a mesh-local
// triangle AABB into world frame for cost-source accounting.
func (a AABB) Transformed(rot mgl64.Mat3, trans r3.Vector) AABB {
	corners := [8]r3.Vector{}
	idx := 0
	for _, x := range [2]float64{a.Min.X, a.Max.X} {
		for _, y := range [2]float64{a.Min.Y, a.Max.Y} {
			for _, z := range [2]float64{a.Min.Z, a.Max.Z} {
				corners[idx] = r3.Vector{X: x, Y: y, Z: z}
				idx++
			}
		}
	}
	out := AABB{}
	for i, c := range corners {
		mapped := vec3(rot.Mul3x1(mgl64Vec(c))).Add(trans)
		if i == 0 {
			out = AABB{Min: mapped, Max: mapped}
		} else {
			out = out.extend(mapped)
		}
	}
	return out
}
