// Package bvh provides BvhRef, an indexed bounding-volume hierarchy
// over a MeshRef (spec.md §2.3, §3). Full BVH construction is an
// external concern (spec.md §1 Non-goals/Out-of-scope); this package
// owns only the indexed node storage, the model-type query, and the
// in-place vertex-replace-and-refit operation the same-frame
// traversal initializer depends on (spec.md §4.5, §6).
package bvh

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/meshref"
)

// ModelType mirrors the BVH's getModelType() contract (spec.md §6).
// This core requires Triangles; Points exists only so that "wrong
// model type" is a real, observable failure mode rather than an
// unrepresentable one.
type ModelType int

const (
	ModelUnknown ModelType = iota
	ModelTriangles
	ModelPoints
)

// Node is one entry of the indexed BVH node array. Internal nodes have
// Left/Right >= 0 indices into the same array; leaves have
// Left == Right == -1 and a valid PrimitiveID indexing the owning
// mesh's triangle array.
type Node[B bv.Volume[B]] struct {
	BV          B
	Left, Right int
	PrimitiveID int
}

// IsLeaf reports whether n is a leaf node.
func (n Node[B]) IsLeaf() bool { return n.Left < 0 && n.Right < 0 }

// FitLeaf computes the bounding volume for a single triangle's three
// vertices. BvhRef needs one of these per BV kind to support refit;
// supplying the fit function is the caller's job (mirroring how
// spec.md keeps BV-kind-specific fitting an external concern), not
// something this package hardcodes per kind.
type FitLeaf[B bv.Volume[B]] func(p1, p2, p3 r3.Vector) B

// BvhRef is an indexed BVH over a MeshRef, generic over a bounding
// volume kind.
type BvhRef[B bv.Volume[B]] struct {
	nodes     []Node[B]
	mesh      *meshref.MeshRef
	modelType ModelType
	fitLeaf   FitLeaf[B]

	pendingVertices []r3.Vector // scratch between BeginReplaceModel/EndReplaceModel
}

// New constructs a BvhRef over an already-built node array. nodes[0]
// is the root, per spec.md §3. fitLeaf is used by EndReplaceModel's
// refit path; pass nil if the BVH will never be refit in place.
func New[B bv.Volume[B]](mesh *meshref.MeshRef, nodes []Node[B], modelType ModelType, fitLeaf FitLeaf[B]) (*BvhRef[B], error) {
	if len(nodes) == 0 {
		return nil, errors.New("bvh: node array must be non-empty (index 0 is the root)")
	}
	for i, n := range nodes {
		if n.IsLeaf() && (n.PrimitiveID < 0 || n.PrimitiveID >= mesh.NumTriangles()) {
			return nil, errors.Errorf("bvh: leaf node %d has out-of-range primitiveId %d", i, n.PrimitiveID)
		}
	}
	return &BvhRef[B]{nodes: nodes, mesh: mesh, modelType: modelType, fitLeaf: fitLeaf}, nil
}

// GetModelType reports the BVH's model type (spec.md §6).
func (b *BvhRef[B]) GetModelType() ModelType { return b.modelType }

// GetBV returns the bounding volume of node i (spec.md §6).
func (b *BvhRef[B]) GetBV(i int) B { return b.nodes[i].BV }

// NumNodes returns the number of nodes in the hierarchy.
func (b *BvhRef[B]) NumNodes() int { return len(b.nodes) }

// IsLeaf reports whether node i is a leaf.
func (b *BvhRef[B]) IsLeaf(i int) bool { return b.nodes[i].IsLeaf() }

// PrimitiveID returns the triangle index a leaf node references. Only
// valid when IsLeaf(i).
func (b *BvhRef[B]) PrimitiveID(i int) int { return b.nodes[i].PrimitiveID }

// Left and Right return the child indices of an internal node. Only
// valid when !IsLeaf(i).
func (b *BvhRef[B]) Left(i int) int  { return b.nodes[i].Left }
func (b *BvhRef[B]) Right(i int) int { return b.nodes[i].Right }

// Mesh returns the mesh this BVH indexes.
func (b *BvhRef[B]) Mesh() *meshref.MeshRef { return b.mesh }

// BeginReplaceModel starts an in-place vertex replacement, per
// spec.md §6's beginReplaceModel/replaceSubModel/endReplaceModel
// sequence used by the same-frame traversal initializer to bake a
// non-identity transform into the mesh (spec.md §4.5).
func (b *BvhRef[B]) BeginReplaceModel() {
	b.pendingVertices = make([]r3.Vector, 0, b.mesh.NumVertices())
}

// ReplaceSubModel appends a batch of (already-transformed) vertices to
// the pending replacement. Call once with the full vertex set for a
// single-shot replace, or in batches if the caller streams vertices.
func (b *BvhRef[B]) ReplaceSubModel(vertices []r3.Vector) {
	b.pendingVertices = append(b.pendingVertices, vertices...)
}

// EndReplaceModel finalizes the pending vertex replacement: it
// rebuilds the mesh from the accumulated vertices and, if useRefit,
// refits every node's bounding volume from the new triangle
// positions. refitBottomUp selects a bottom-up refit (recompute every
// leaf from its triangle, then union children into parents,
// traversing the node array in reverse so every child is visited
// before its parent — true for any node array built depth-first);
// when false, only leaves are refit and internal nodes keep stale
// bounds until a future full rebuild (an accepted, documented
// approximation since full top-down refit is BVH construction,
// out of scope here per spec.md §1).
func (b *BvhRef[B]) EndReplaceModel(useRefit, refitBottomUp bool) error {
	if len(b.pendingVertices) != b.mesh.NumVertices() {
		return errors.Errorf("bvh: endReplaceModel got %d vertices, mesh has %d", len(b.pendingVertices), b.mesh.NumVertices())
	}
	newMesh, err := b.mesh.WithVertices(b.pendingVertices)
	if err != nil {
		return errors.Wrap(err, "bvh: endReplaceModel")
	}
	b.mesh = newMesh
	b.pendingVertices = nil

	if !useRefit {
		return nil
	}
	if b.fitLeaf == nil {
		return errors.New("bvh: useRefit requested but no FitLeaf was supplied to New")
	}
	for i := range b.nodes {
		if b.nodes[i].IsLeaf() {
			t := b.mesh.Triangle(b.nodes[i].PrimitiveID)
			p1, p2, p3 := b.mesh.Vertex(t.A), b.mesh.Vertex(t.B), b.mesh.Vertex(t.C)
			b.nodes[i].BV = b.fitLeaf(p1, p2, p3)
		}
	}
	if !refitBottomUp {
		return nil
	}
	for i := len(b.nodes) - 1; i >= 0; i-- {
		n := b.nodes[i]
		if n.IsLeaf() {
			continue
		}
		b.nodes[i].BV = b.nodes[n.Left].BV.Union(b.nodes[n.Right].BV)
	}
	return nil
}
