// Package descend provides a concrete depth-first TraversalDriver
// (spec.md §4.4): the descent engine is named as an external
// collaborator in spec.md, but a working library needs one real
// implementation to actually run a query against. Node is the
// three-hook contract any traversal node (package traversal) exposes;
// Driver descends both BVHs simultaneously, calling bvTest/leafTest
// and checking canStop, without dictating a particular pair-visit
// order beyond ancestor-pruning correctness.
package descend

import "go.uber.org/zap"

// Node is the hook contract a traversal node exposes to a driver
// (spec.md §4.1, §4.4): bvTest prunes, leafTest runs the triangle-pair
// kernel and accumulates into the node's result, canStop reports the
// request's stop predicate. Stats reports the node's own
// numBvTests/numLeafTests counters (spec.md §4.3's "if
// enableStatistics" bookkeeping) so Run can log them without the
// driver reaching into the node's Result directly.
type Node interface {
	BVTest(i, j int) bool
	LeafTest(i, j int)
	CanStop() bool
	Stats() (numBVTests, numLeafTests int)
}

// Hierarchy is the minimal shape of a BVH a Driver needs to descend:
// leaf test and child indices of an internal node (the root index is
// passed to Run separately). Both
// bvh.BvhRef[B] instantiations and test doubles satisfy this without
// the driver needing to know the BV kind.
type Hierarchy interface {
	IsLeaf(i int) bool
	Left(i int) int
	Right(i int) int
}

// Driver is a depth-first, recursive-descent TraversalDriver. It is
// the one concrete descent strategy this module ships; nothing in
// package traversal depends on it being the only one, per spec.md
// §4.4's requirement that the core work under any driver respecting
// ancestor pruning.
type Driver struct {
	// Logger, if non-nil, emits Debug-level traversal statistics after
	// Run completes. Passing nil disables logging entirely.
	Logger *zap.Logger
}

// Run descends h1 (rooted at root1) and h2 (rooted at root2) in
// lock-step against node, starting from the pair (root1, root2). It
// stops early the moment node.CanStop() reports true.
func (d Driver) Run(node Node, h1, h2 Hierarchy, root1, root2 int) {
	d.visit(node, h1, h2, root1, root2)
	if d.Logger != nil {
		numBVTests, numLeafTests := node.Stats()
		d.Logger.Debug("traversal complete",
			zap.Int("numBvTests", numBVTests),
			zap.Int("numLeafTests", numLeafTests),
		)
	}
}

func (d Driver) visit(node Node, h1, h2 Hierarchy, i, j int) {
	if node.CanStop() {
		return
	}
	if node.BVTest(i, j) {
		return // disjoint: prune this pair and everything beneath it
	}

	leaf1, leaf2 := h1.IsLeaf(i), h2.IsLeaf(j)
	switch {
	case leaf1 && leaf2:
		node.LeafTest(i, j)
	case leaf1:
		d.visit(node, h1, h2, i, h2.Left(j))
		if node.CanStop() {
			return
		}
		d.visit(node, h1, h2, i, h2.Right(j))
	case leaf2:
		d.visit(node, h1, h2, h1.Left(i), j)
		if node.CanStop() {
			return
		}
		d.visit(node, h1, h2, h1.Right(i), j)
	default:
		d.visit(node, h1, h2, h1.Left(i), h2.Left(j))
		if node.CanStop() {
			return
		}
		d.visit(node, h1, h2, h1.Left(i), h2.Right(j))
		if node.CanStop() {
			return
		}
		d.visit(node, h1, h2, h1.Right(i), h2.Left(j))
		if node.CanStop() {
			return
		}
		d.visit(node, h1, h2, h1.Right(i), h2.Right(j))
	}
}
