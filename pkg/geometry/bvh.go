package geometry

import (
	"github.com/slbench/depthcast/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Triangles   []*Triangle // Leaf payload (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray-triangle
// intersection. It is immutable once built and safe for concurrent queries.
type BVH struct {
	Root *BVHNode
}

// Leaf threshold: with this many or fewer triangles, store them in a leaf
const leafThreshold = 8

// NewBVH constructs a BVH from a slice of triangles
func NewBVH(triangles []*Triangle) *BVH {
	if len(triangles) == 0 {
		return &BVH{Root: nil}
	}

	// Copy the slice so construction never reorders the caller's triangles
	trianglesCopy := make([]*Triangle, len(triangles))
	copy(trianglesCopy, triangles)

	return &BVH{Root: buildBVH(trianglesCopy, 0)}
}

// buildBVH recursively builds the BVH using median splitting along the
// longest axis. Median splits avoid the sorting bottleneck of surface-area
// heuristics while keeping query performance good enough for a batch render.
func buildBVH(triangles []*Triangle, depth int) *BVHNode {
	var boundingBox core.AABB
	if len(triangles) > 0 {
		boundingBox = triangles[0].BoundingBox()
		for i := 1; i < len(triangles); i++ {
			boundingBox = boundingBox.Union(triangles[i].BoundingBox())
		}
	}

	if len(triangles) <= leafThreshold {
		return &BVHNode{
			BoundingBox: boundingBox,
			Triangles:   triangles,
		}
	}

	bestAxis, splitPos := findBestSplit(boundingBox)

	// No extent to split along: keep everything in one leaf
	if bestAxis == -1 {
		return &BVHNode{
			BoundingBox: boundingBox,
			Triangles:   triangles,
		}
	}

	leftTriangles, rightTriangles := partitionTriangles(triangles, bestAxis, splitPos)

	// Degenerate partition (all centers on one side): fall back to a leaf
	if len(leftTriangles) == 0 || len(rightTriangles) == 0 {
		return &BVHNode{
			BoundingBox: boundingBox,
			Triangles:   triangles,
		}
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(leftTriangles, depth+1),
		Right:       buildBVH(rightTriangles, depth+1),
	}
}

// findBestSplit picks the longest axis and its midpoint as the split plane
func findBestSplit(boundingBox core.AABB) (bestAxis int, splitPos float64) {
	bestAxis = boundingBox.LongestAxis()

	var minVal, maxVal float64
	switch bestAxis {
	case 0:
		minVal, maxVal = boundingBox.Min.X, boundingBox.Max.X
	case 1:
		minVal, maxVal = boundingBox.Min.Y, boundingBox.Max.Y
	case 2:
		minVal, maxVal = boundingBox.Min.Z, boundingBox.Max.Z
	}

	if maxVal <= minVal {
		return -1, 0
	}

	splitPos = (minVal + maxVal) * 0.5
	return bestAxis, splitPos
}

// partitionTriangles splits triangles by bounding-box center against the
// chosen split plane
func partitionTriangles(triangles []*Triangle, axis int, splitPos float64) ([]*Triangle, []*Triangle) {
	var leftTriangles, rightTriangles []*Triangle

	for _, triangle := range triangles {
		center := triangle.BoundingBox().Center()
		var centerVal float64
		switch axis {
		case 0:
			centerVal = center.X
		case 1:
			centerVal = center.Y
		case 2:
			centerVal = center.Z
		}

		if centerVal < splitPos {
			leftTriangles = append(leftTriangles, triangle)
		} else {
			rightTriangles = append(rightTriangles, triangle)
		}
	}

	return leftTriangles, rightTriangles
}

// Hit tests if a ray intersects any triangle in the BVH, filling hit with
// the nearest intersection in [tMin, tMax]
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, hit *core.RayHit) bool {
	if bvh.Root == nil {
		return false
	}
	return bvh.hitNode(bvh.Root, ray, tMin, tMax, hit)
}

// hitNode recursively tests ray intersection with BVH nodes
func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64, hit *core.RayHit) bool {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}

	// Leaf node: linear scan over the triangles, narrowing tMax as we go
	if node.Triangles != nil {
		hitAnything := false
		closestSoFar := tMax

		for _, triangle := range node.Triangles {
			if triangle.Hit(ray, tMin, closestSoFar, hit) {
				hitAnything = true
				closestSoFar = hit.T
			}
		}

		return hitAnything
	}

	hitAnything := false
	closestSoFar := tMax

	if node.Left != nil {
		if bvh.hitNode(node.Left, ray, tMin, closestSoFar, hit) {
			hitAnything = true
			closestSoFar = hit.T
		}
	}

	if node.Right != nil {
		if bvh.hitNode(node.Right, ray, tMin, closestSoFar, hit) {
			hitAnything = true
			closestSoFar = hit.T
		}
	}

	return hitAnything
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes     int
	leafNodes      int
	maxDepth       int
	totalTriangles int
}

// getStats returns statistics about the BVH structure
func (bvh *BVH) getStats() bvhStats {
	stats := bvhStats{}
	if bvh.Root != nil {
		bvh.collectStats(bvh.Root, 0, &stats)
	}
	return stats
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *bvhStats) {
	stats.totalNodes++

	if depth > stats.maxDepth {
		stats.maxDepth = depth
	}

	if node.Triangles != nil {
		stats.leafNodes++
		stats.totalTriangles += len(node.Triangles)
	} else {
		if node.Left != nil {
			bvh.collectStats(node.Left, depth+1, stats)
		}
		if node.Right != nil {
			bvh.collectStats(node.Right, depth+1, stats)
		}
	}
}
