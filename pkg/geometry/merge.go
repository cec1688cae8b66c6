package geometry

import (
	"github.com/pkg/errors"

	"github.com/slbench/depthcast/pkg/core"
)

// ErrEmptyScene reports that no mesh objects were available to merge
var ErrEmptyScene = errors.New("scene contains no mesh objects")

// MeshObject is one mesh as it appears in the scene: local-space triangles
// plus the world transform that places it
type MeshObject struct {
	Name      string
	Transform core.Mat4
	Triangles [][3]core.Vec3
}

// Merge concatenates all mesh objects into a single triangle soup. Object
// identity is discarded; only geometry matters for raycasting. The merged
// mesh lives in the first object's local frame and carries its world
// transform, so geometry from the other objects is re-expressed through
// world space into that frame. A single object is used directly.
func Merge(objects []*MeshObject) (*Mesh, error) {
	if len(objects) == 0 {
		return nil, ErrEmptyScene
	}

	first := objects[0]
	if len(objects) == 1 {
		return NewMesh(first.Triangles, first.Transform)
	}

	firstInverse, err := first.Transform.Inverse()
	if err != nil {
		return nil, errors.WithMessage(ErrSingularTransform, err.Error())
	}

	total := 0
	for _, obj := range objects {
		total += len(obj.Triangles)
	}

	merged := make([][3]core.Vec3, 0, total)
	merged = append(merged, first.Triangles...)

	for _, obj := range objects[1:] {
		for _, tri := range obj.Triangles {
			var local [3]core.Vec3
			for k, v := range tri {
				world := obj.Transform.MulPoint(v)
				local[k] = firstInverse.MulPoint(world)
			}
			merged = append(merged, local)
		}
	}

	return NewMesh(merged, first.Transform)
}
