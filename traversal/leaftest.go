package traversal

import (
	"github.com/golang/geo/r3"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/meshref"
	"github.com/bruce-mann/meshcollide/request"
)

// leafInputs abstracts the same-frame and oriented leaf tests down to
// the common shape dispatchLeafTest needs (spec.md §4.3): a
// presence-only test, a geometry-returning test whose results are
// already in world frame, and world-frame AABB accessors for
// cost-source accounting. Same-frame and oriented nodes each supply
// these as closures over their own mesh/transform state.
type leafInputs struct {
	Occupancy1, Occupancy2 meshref.Occupancy
	PrimID1, PrimID2       int
	CostDensity            float64

	TestPresence func() bool
	TestContacts func() (points []r3.Vector, normal r3.Vector, depth float64, ok bool)
	AABB1, AABB2 func() bv.AABB
}

// dispatchLeafTest implements the three-way occupancy × request-flag
// dispatch of spec.md §4.3. Contact-budget clamping is delegated to
// request.Result.AddContact, whose cap check is exactly
// "remaining = max(0, numMaxContacts-numContacts); emit <= remaining"
// per spec.md §9's resolved open question — looping over candidate
// contacts and breaking on the first rejected AddContact reproduces
// that arithmetic without a separate remaining/emit computation.
func dispatchLeafTest(req request.Request, result *request.Result, in leafInputs) {
	occupied1 := in.Occupancy1 == meshref.Occupied
	occupied2 := in.Occupancy2 == meshref.Occupied
	free1 := in.Occupancy1 == meshref.Free
	free2 := in.Occupancy2 == meshref.Free

	switch {
	case occupied1 && occupied2:
		intersects := dispatchContactBranch(req, result, in)
		if intersects && req.EnableCost {
			addCostSource(req, result, in)
		}
	case !(free1 && free2) && req.EnableCost:
		if in.TestPresence() {
			addCostSource(req, result, in)
		}
	default:
		// Branch C: no-op.
	}
}

func dispatchContactBranch(req request.Request, result *request.Result, in leafInputs) bool {
	if !req.EnableContact {
		if !in.TestPresence() {
			return false
		}
		result.AddContact(req, request.Contact{B1: in.PrimID1, B2: in.PrimID2})
		return true
	}

	points, normal, depth, ok := in.TestContacts()
	if !ok {
		return false
	}
	for _, pt := range points {
		if !result.AddContact(req, request.Contact{
			B1:               in.PrimID1,
			B2:               in.PrimID2,
			Point:            pt,
			Normal:           normal,
			PenetrationDepth: depth,
		}) {
			break
		}
	}
	return true
}

func addCostSource(req request.Request, result *request.Result, in leafInputs) {
	a1, a2 := in.AABB1(), in.AABB2()
	if a1.Disjoint(a2) {
		return
	}
	overlap := a1.Intersection(a2)
	result.AddCostSource(req, request.CostSource{
		Region: overlap.Center(),
		Extent: overlap.Max.Sub(overlap.Center()),
		Weight: in.CostDensity,
	})
}
