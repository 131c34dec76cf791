// Package request defines the CollisionRequest/CollisionResult value
// types the traversal core reads and writes (spec.md §2, §5). None of
// this package depends on a particular BV kind or mesh representation;
// it is pure data plus the two small predicates (IsSatisfied, budget
// arithmetic) the leaf-testing dispatch in package traversal consults.
package request

import "github.com/golang/geo/r3"

// Request carries the caller's collision query parameters.
type Request struct {
	// EnableContact requests contact geometry (points, normal,
	// penetration depth) rather than presence-only results.
	EnableContact bool
	// NumMaxContacts caps the number of contacts collected. There is no
	// unlimited sentinel: 0 means zero contacts are ever stored (spec.md
	// §8), not "no cap".
	NumMaxContacts int
	// EnableCost requests cost-source accumulation from every
	// intersecting triangle pair whose meshes are not both Free.
	EnableCost bool
	// NumMaxCostSources caps the number of cost sources collected, with
	// the same zero-means-zero convention as NumMaxContacts.
	NumMaxCostSources int
	// EnableStatistics requests bv-test/leaf-test counters on the
	// returned Result.
	EnableStatistics bool
}

// IsSatisfied reports whether result already holds enough data to
// answer req, letting a driver stop descending early. Cost-enabled
// queries are never satisfied early, since cost sources are collected
// from every intersecting pair regardless of the contact budget.
// Otherwise, presence-only queries (EnableContact == false) are
// satisfied by a single contact; contact-geometry queries are
// satisfied once the contact budget is full — including the
// NumMaxContacts == 0 case, which is immediately satisfied since no
// contact will ever be stored (spec.md §8).
func (req Request) IsSatisfied(result *Result) bool {
	if req.EnableCost {
		return false
	}
	if !req.EnableContact {
		return result.NumContacts() > 0
	}
	return result.NumContacts() >= req.NumMaxContacts
}

// Contact is a single reported contact. Presence-only results leave
// Point/Normal/Depth zero and set only the triangle indices.
type Contact struct {
	B1, B2           int // leaf (triangle) indices, one per mesh
	Point            r3.Vector
	Normal           r3.Vector // unit, pointing from mesh1's triangle to mesh2's
	PenetrationDepth float64
}

// CostSource is a region of overlap between two intersecting
// triangles' bounding boxes, weighted by the product of their meshes'
// cost densities (spec.md §4.3 Branches A and B).
type CostSource struct {
	Region r3.Vector // AABB center of the overlap region
	Extent r3.Vector // AABB half-extent of the overlap region
	Weight float64
}

// Result accumulates what a traversal found. The zero value is ready
// to use.
type Result struct {
	contacts    []Contact
	costSources []CostSource

	NumBVTests   int
	NumLeafTests int
}

// AddContact appends a contact if req's budget has room, returning
// whether it was added. NumMaxContacts == 0 means zero room, not
// unlimited (spec.md §8).
func (r *Result) AddContact(req Request, c Contact) bool {
	if len(r.contacts) >= req.NumMaxContacts {
		return false
	}
	r.contacts = append(r.contacts, c)
	return true
}

// AddCostSource appends a cost source if req's budget has room,
// returning whether it was added. NumMaxCostSources == 0 means zero
// room, not unlimited (spec.md §8).
func (r *Result) AddCostSource(req Request, c CostSource) bool {
	if len(r.costSources) >= req.NumMaxCostSources {
		return false
	}
	r.costSources = append(r.costSources, c)
	return true
}

// NumContacts returns the number of contacts collected so far.
func (r *Result) NumContacts() int { return len(r.contacts) }

// Contacts returns the collected contacts.
func (r *Result) Contacts() []Contact { return r.contacts }

// NumCostSources returns the number of cost sources collected so far.
func (r *Result) NumCostSources() int { return len(r.costSources) }

// CostSources returns the collected cost sources.
func (r *Result) CostSources() []CostSource { return r.costSources }
