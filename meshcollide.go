// Package meshcollide wires MeshRef, BvhRef, a traversal node and a
// descend.Driver together into convenience entry points (CollideAABB
// for the same-frame AABB variant, CollideOBB for the oriented OBB
// variant). The
// five components it composes (GeomPrim, MeshRef, BvhRef,
// TraversalNode, TraversalDriver) are each independently usable from
// their own packages; this file exists only because a real library,
// unlike the specification it follows, needs at least one fully wired
// call path to be worth importing.
package meshcollide

import (
	"go.uber.org/zap"

	"github.com/bruce-mann/meshcollide/bv"
	"github.com/bruce-mann/meshcollide/bvh"
	"github.com/bruce-mann/meshcollide/descend"
	"github.com/bruce-mann/meshcollide/geomprim"
	"github.com/bruce-mann/meshcollide/request"
	"github.com/bruce-mann/meshcollide/traversal"
	"github.com/bruce-mann/meshcollide/xform"
)

// CollideAABB runs a same-frame AABB-bounded traversal of mesh1 vs
// mesh2 under tf1/tf2, returning the populated result. useRefit and
// refitBottomUp are forwarded to the same-frame initializer's BVH
// replace-model sequence (spec.md §4.5); pass true/true unless the
// caller has a specific reason not to refit.
func CollideAABB(
	bvh1, bvh2 *bvh.BvhRef[bv.AABB],
	tf1, tf2 xform.Transform,
	req request.Request,
	useRefit, refitBottomUp bool,
	logger *zap.Logger,
) (*request.Result, error) {
	result := &request.Result{}
	node, err := traversal.NewSameFrameNode(bvh1, bvh2, &tf1, &tf2, req, result, useRefit, refitBottomUp)
	if err != nil {
		return nil, err
	}
	d := descend.Driver{Logger: logger}
	d.Run(node, node.BVH1, node.BVH2, 0, 0)
	return result, nil
}

// CollideOBB runs an oriented OBB-variant traversal of mesh1 vs mesh2
// under world transforms tf1/tf2: meshes are left untouched, and the
// relative transform is computed once by the initializer.
func CollideOBB(
	bvh1, bvh2 *bvh.BvhRef[bv.OBB],
	tf1, tf2 xform.Transform,
	req request.Request,
	logger *zap.Logger,
) (*request.Result, error) {
	result := &request.Result{}
	node, err := traversal.NewOBBNode(bvh1.Mesh(), bvh2.Mesh(), bvh1, bvh2, tf1, tf2, req, result)
	if err != nil {
		return nil, err
	}
	d := descend.Driver{Logger: logger}
	d.Run(node, node.BVH1, node.BVH2, 0, 0)
	return result, nil
}

// RelativeTransform exposes geomprim's relativeTransform contract
// (spec.md §6) at package scope, since oriented callers building their
// own traversal.OrientedNode (for the RSS/kIOS/OBBRSS kinds, which
// CollideOBB does not cover) need it directly.
func RelativeTransform(tf1, tf2 xform.Transform) xform.Transform {
	return geomprim.RelativeTransform(tf1, tf2)
}
