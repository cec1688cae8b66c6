package geometry

import (
	"math"

	"github.com/pkg/errors"

	"github.com/slbench/depthcast/pkg/core"
)

// ErrSingularTransform reports a world matrix that cannot be inverted.
// Every ray needs the world->local mapping, so this is fatal at
// construction time rather than a per-ray failure.
var ErrSingularTransform = errors.New("world transform is not invertible")

// Rays starting exactly on a surface would re-hit it at t=0; anything
// beyond this counts as a forward hit.
const castEpsilon = 1e-9

// Mesh is a read-only triangle soup in its own local space, together with
// the world transform that places it in the scene. The inverse transform
// is computed once at construction since inversion is costly and the
// transform never changes during a run.
type Mesh struct {
	triangles []*Triangle
	transform core.Mat4
	inverse   core.Mat4
	bvh       *BVH
	bbox      core.AABB
}

// NewMesh creates a mesh from local-space triangle vertices and a world
// transform. Each entry of vertices is one triangle's three corners.
func NewMesh(vertices [][3]core.Vec3, transform core.Mat4) (*Mesh, error) {
	inverse, err := transform.Inverse()
	if err != nil {
		return nil, errors.WithMessage(ErrSingularTransform, err.Error())
	}

	triangles := make([]*Triangle, len(vertices))
	for i, v := range vertices {
		triangles[i] = NewTriangle(v[0], v[1], v[2], i)
	}

	var bbox core.AABB
	if len(triangles) > 0 {
		bbox = triangles[0].BoundingBox()
		for i := 1; i < len(triangles); i++ {
			bbox = bbox.Union(triangles[i].BoundingBox())
		}
	}

	return &Mesh{
		triangles: triangles,
		transform: transform,
		inverse:   inverse,
		bvh:       NewBVH(triangles),
		bbox:      bbox,
	}, nil
}

// WorldToLocal maps a world-space point into mesh-local space using the
// cached inverse transform
func (m *Mesh) WorldToLocal(p core.Vec3) core.Vec3 {
	return m.inverse.MulPoint(p)
}

// LocalToWorld maps a mesh-local point into world space
func (m *Mesh) LocalToWorld(p core.Vec3) core.Vec3 {
	return m.transform.MulPoint(p)
}

// Transform returns the mesh's world transform
func (m *Mesh) Transform() core.Mat4 {
	return m.transform
}

// Cast finds the nearest triangle hit by the ray with the given mesh-local
// origin and direction. The direction must already be normalized. Misses
// return a RayHit with Hit=false; they are not errors.
func (m *Mesh) Cast(origin, direction core.Vec3) core.RayHit {
	ray := core.NewRay(origin, direction)
	hit := core.Miss()
	if m.bvh.Hit(ray, castEpsilon, math.Inf(1), &hit) {
		return hit
	}
	return core.Miss()
}

// TriangleCount returns the number of triangles in the mesh
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// Triangles returns the individual triangles (for debugging or special
// operations)
func (m *Mesh) Triangles() []*Triangle {
	return m.triangles
}

// BoundingBox returns the local-space bounding box of the whole mesh
func (m *Mesh) BoundingBox() core.AABB {
	return m.bbox
}
