// Command meshcollide-demo builds two unit cube meshes, offsets the
// second by a configurable translation, and reports whether they
// collide under the same-frame AABB traversal variant.
package main

import (
	"flag"
	"log"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/bvh"
	"github.com/bruce-mann/meshcollide/geomprim"
	"github.com/bruce-mann/meshcollide/meshref"
	"github.com/bruce-mann/meshcollide/request"
	"github.com/bruce-mann/meshcollide/xform"

	"github.com/bruce-mann/meshcollide"
)

func main() {
	offsetX := flag.Float64("offset-x", 0.5, "translation of the second cube along x")
	enableContact := flag.Bool("contact", true, "request contact geometry, not just presence")
	maxContacts := flag.Int("max-contacts", 1024, "maximum contacts to collect")
	verbose := flag.Bool("verbose", false, "log traversal statistics at debug level")
	flag.Parse()

	var logger *zap.Logger
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("building logger: %v", err)
		}
		logger = l
		defer logger.Sync() //nolint:errcheck
	}

	bvh1, err := unitCubeBVH(meshref.Occupied, 1.0)
	if err != nil {
		log.Fatalf("building mesh1: %v", err)
	}
	bvh2, err := unitCubeBVH(meshref.Occupied, 1.0)
	if err != nil {
		log.Fatalf("building mesh2: %v", err)
	}

	tf1 := xform.Identity()
	tf2 := xform.Transform{Rotation: xform.Identity().Rotation, Translation: r3.Vector{X: *offsetX}}

	req := request.Request{
		EnableContact:    *enableContact,
		NumMaxContacts:   *maxContacts,
		EnableStatistics: true,
	}

	result, err := meshcollide.CollideAABB(bvh1, bvh2, tf1, tf2, req, true, true, logger)
	if err != nil {
		log.Fatalf("collide: %v", err)
	}

	log.Printf("contacts: %d, bv tests: %d, leaf tests: %d", result.NumContacts(), result.NumBVTests, result.NumLeafTests)
	for _, c := range result.Contacts() {
		log.Printf("  tri %d vs %d: point=%v normal=%v depth=%.4f", c.B1, c.B2, c.Point, c.Normal, c.PenetrationDepth)
	}
}

// unitCubeBVH builds a two-triangle-per-face unit cube mesh, fit with
// a single AABB leaf per triangle and a balanced binary tree of AABBs
// above those 12 leaves, rooted at index 0 and enclosing the whole
// mesh.
func unitCubeBVH(occupancy meshref.Occupancy, costDensity float64) (*bvh.BvhRef[bv.AABB], error) {
	verts := []r3.Vector{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	quad := func(a, b, c, d int) [2]meshref.Triangle {
		return [2]meshref.Triangle{{A: a, B: b, C: c}, {A: a, B: c, C: d}}
	}
	var tris []meshref.Triangle
	for _, q := range [][4]int{
		{0, 1, 2, 3}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{2, 3, 7, 6}, // back
		{1, 2, 6, 5}, // right
		{3, 0, 4, 7}, // left
	} {
		pair := quad(q[0], q[1], q[2], q[3])
		tris = append(tris, pair[0], pair[1])
	}

	mesh, err := meshref.New(verts, tris, occupancy, costDensity)
	if err != nil {
		return nil, err
	}

	leaves := make([]leafBox, len(tris))
	for i, t := range tris {
		p1, p2, p3 := verts[t.A], verts[t.B], verts[t.C]
		leaves[i] = leafBox{box: geomprim.TriangleAABB(p1, p2, p3), primID: i}
	}
	nodes := make([]bvh.Node[bv.AABB], 2*len(leaves)-1)
	next := 0
	buildBalancedTree(nodes, &next, leaves)

	fitLeaf := func(p1, p2, p3 r3.Vector) bv.AABB { return geomprim.TriangleAABB(p1, p2, p3) }
	return bvh.New(mesh, nodes, bvh.ModelTriangles, fitLeaf)
}

type leafBox struct {
	box    bv.AABB
	primID int
}

// buildBalancedTree fills nodes with a balanced binary tree over
// leaves, always reserving index 0 for the root (spec.md §3's "node
// index 0 is the root" invariant), by claiming the current node's
// index before recursing into its children.
func buildBalancedTree(nodes []bvh.Node[bv.AABB], next *int, leaves []leafBox) int {
	idx := *next
	*next++
	if len(leaves) == 1 {
		nodes[idx] = bvh.Node[bv.AABB]{BV: leaves[0].box, Left: -1, Right: -1, PrimitiveID: leaves[0].primID}
		return idx
	}
	mid := len(leaves) / 2
	leftIdx := buildBalancedTree(nodes, next, leaves[:mid])
	rightIdx := buildBalancedTree(nodes, next, leaves[mid:])
	nodes[idx] = bvh.Node[bv.AABB]{
		BV:          nodes[leftIdx].BV.Union(nodes[rightIdx].BV),
		Left:        leftIdx,
		Right:       rightIdx,
		PrimitiveID: -1,
	}
	return idx
}
