package bv

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// SeparatingAxis implements Gottschalk's OBB-OBB separating axis
// test. rel is box B's rotation expressed in box A's frame
// (rel = A.Rotation^T * B.Rotation), t is B's center expressed in A's
// frame, and extentA/extentB are each box's half-extents along its
// own local axes. Returns true iff the boxes are disjoint.
//
// Exported for geomprim's node-local obbDisjoint(Rc,Tc,...) overload
// (spec.md §4.2), which already has the relative rotation/translation
// precomputed and skips reconstructing full OBB values.
func SeparatingAxis(rel mgl64.Mat3, t, extentA, extentB r3.Vector) bool {
	absRel := [3][3]float64{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			absRel[i][j] = math.Abs(rel.At(i, j)) + 1e-9
		}
	}
	ta := [3]float64{t.X, t.Y, t.Z}
	ea := [3]float64{extentA.X, extentA.Y, extentA.Z}
	eb := [3]float64{extentB.X, extentB.Y, extentB.Z}

	// A's face axes.
	for i := 0; i < 3; i++ {
		ra := ea[i]
		rb := eb[0]*absRel[i][0] + eb[1]*absRel[i][1] + eb[2]*absRel[i][2]
		if math.Abs(ta[i]) > ra+rb {
			return true
		}
	}
	// B's face axes.
	for j := 0; j < 3; j++ {
		ra := ea[0]*absRel[0][j] + ea[1]*absRel[1][j] + ea[2]*absRel[2][j]
		rb := eb[j]
		proj := ta[0]*rel.At(0, j) + ta[1]*rel.At(1, j) + ta[2]*rel.At(2, j)
		if math.Abs(proj) > ra+rb {
			return true
		}
	}
	// Cross-product axes A_i x B_j.
	for i := 0; i < 3; i++ {
		i1, i2 := (i+1)%3, (i+2)%3
		for j := 0; j < 3; j++ {
			j1, j2 := (j+1)%3, (j+2)%3
			ra := ea[i1]*absRel[i2][j] + ea[i2]*absRel[i1][j]
			rb := eb[j1]*absRel[i][j2] + eb[j2]*absRel[i][j1]
			proj := ta[i2]*rel.At(i1, j) - ta[i1]*rel.At(i2, j)
			if math.Abs(proj) > ra+rb {
				return true
			}
		}
	}
	return false
}

// rectDistance computes the distance between the two inner rectangles
// of a pair of RSS volumes, both expressed in the same frame. The
// rectangles live in the plane spanned by each RSS's first two
// rotation columns; this samples the segment/segment distance
// between the rectangle boundaries and center offset as a
// conservative closed-form approximation, matching the style of the
// classic RSS-RSS overlap test (distance between oriented rectangles,
// clamped to each rectangle's half-extents).
func rectDistance(a, b RSS) float64 {
	aAxisX := vec3(a.Rotation.Mul3x1(mgl64.Vec3{1, 0, 0}))
	aAxisY := vec3(a.Rotation.Mul3x1(mgl64.Vec3{0, 1, 0}))
	bAxisX := vec3(b.Rotation.Mul3x1(mgl64.Vec3{1, 0, 0}))
	bAxisY := vec3(b.Rotation.Mul3x1(mgl64.Vec3{0, 1, 0}))

	d := b.Center.Sub(a.Center)

	// Project the offset onto A's rectangle plane coordinates, clamp
	// to the rectangle, and repeat for B, iterating four times to
	// settle on a closest-point pair (a small number of fixed-point
	// iterations converges quickly for convex, non-degenerate
	// rectangles).
	pa := r3.Vector{}
	pb := d
	for iter := 0; iter < 4; iter++ {
		// Closest point on A's rectangle to pb (in A's frame, relative
		// to A's center).
		ax := clamp(pb.Dot(aAxisX), -a.Length, a.Length)
		ay := clamp(pb.Dot(aAxisY), -a.Width, a.Width)
		pa = aAxisX.Scale(ax).Add(aAxisY.Scale(ay))

		// Closest point on B's rectangle to pa (expressed relative to
		// B's center, i.e. pa - d).
		rel := pa.Sub(d)
		bx := clamp(rel.Dot(bAxisX), -b.Length, b.Length)
		by := clamp(rel.Dot(bAxisY), -b.Width, b.Width)
		pb = d.Add(bAxisX.Scale(bx)).Add(bAxisY.Scale(by))
	}
	return pa.Sub(pb).Norm()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
