package geometry

import (
	"github.com/slbench/depthcast/pkg/core"
)

// Triangle represents a single triangle defined by three vertices in
// mesh-local space
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices
	Index      int       // Position of this triangle in the merged soup
	normal     core.Vec3 // Cached normal vector
	bbox       core.AABB // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, index int) *Triangle {
	t := &Triangle{
		V0:    v0,
		V1:    v1,
		V2:    v2,
		Index: index,
	}

	// Precompute normal and bounding box for efficiency
	t.computeNormal()
	t.computeBoundingBox()

	return t
}

// computeNormal calculates and caches the triangle's normal vector
func (t *Triangle) computeNormal() {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	t.normal = edge1.Cross(edge2).Normalize()
}

// computeBoundingBox calculates and caches the triangle's bounding box
func (t *Triangle) computeBoundingBox() {
	t.bbox = core.NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// Hit tests if a ray intersects with the triangle using the
// Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64, hit *core.RayHit) bool {
	const epsilon = 1e-8

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Determinant near zero: ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)

	if u < 0.0 || u > 1.0 {
		return false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	if v < 0.0 || u+v > 1.0 {
		return false
	}

	tParam := f * edge2.Dot(q)

	if tParam < tMin || tParam > tMax {
		return false
	}

	hit.Hit = true
	hit.T = tParam
	hit.Point = ray.At(tParam)
	hit.Triangle = t.Index
	hit.SetFaceNormal(ray, t.normal)

	return true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// GetNormal returns the triangle's cached geometric normal
func (t *Triangle) GetNormal() core.Vec3 {
	return t.normal
}
