// Package xform provides the rigid-transform type shared by the mesh
// collision packages. spec.md treats rigid transforms as an external,
// linear-algebra dependency; this is the concrete representation used
// throughout this module, built on github.com/go-gl/mathgl's Mat3 and
// github.com/golang/geo's r3.Vector.
package xform

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// A Transform is a rigid map: Apply(x) = Rotation*x + Translation.
type Transform struct {
	Rotation    mgl64.Mat3
	Translation r3.Vector
}

// Identity returns the transform that leaves every point unchanged.
func Identity() Transform {
	return Transform{Rotation: mgl64.Ident3(), Translation: r3.Vector{}}
}

// IsIdentity reports whether t is (exactly) the identity transform.
func IsIdentity(t Transform) bool {
	return t.Rotation == mgl64.Ident3() && t.Translation == (r3.Vector{})
}

// Apply maps a point through the transform.
func (t Transform) Apply(p r3.Vector) r3.Vector {
	return mulVec(t.Rotation, p).Add(t.Translation)
}

// ApplyRotation maps a direction (normal) through the transform's
// rotational part only, leaving translation out.
func (t Transform) ApplyRotation(v r3.Vector) r3.Vector {
	return mulVec(t.Rotation, v)
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	rInv := t.Rotation.Transpose()
	return Transform{
		Rotation:    rInv,
		Translation: mulVec(rInv, t.Translation).Scale(-1),
	}
}

// Compose returns the transform that first applies b, then a:
// Compose(a, b).Apply(x) == a.Apply(b.Apply(x)).
func Compose(a, b Transform) Transform {
	return Transform{
		Rotation:    a.Rotation.Mul3(b.Rotation),
		Translation: a.ApplyRotation(b.Translation).Add(a.Translation),
	}
}

// Relative computes (R,T) such that mapping a point in tf2's frame
// through (R,T) yields its tf1-frame coordinates: tf1^-1 * tf2.
func Relative(tf1, tf2 Transform) Transform {
	return Compose(tf1.Inverse(), tf2)
}

func mulVec(m mgl64.Mat3, v r3.Vector) r3.Vector {
	out := m.Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}
