package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/slbench/depthcast/pkg/core"
)

func TestMerge_EmptyScene(t *testing.T) {
	_, err := Merge(nil)
	if err == nil {
		t.Fatal("Expected an error for zero mesh objects")
	}
	if !errors.Is(err, ErrEmptyScene) {
		t.Errorf("Expected ErrEmptyScene, got %v", err)
	}
}

func TestMerge_SingleObject(t *testing.T) {
	obj := &MeshObject{
		Name:      "Plane",
		Transform: core.NewTranslation(0, 0, 1),
		Triangles: quadAtX(-2, 1),
	}

	mesh, err := Merge([]*MeshObject{obj})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if mesh.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}
	if mesh.Transform() != obj.Transform {
		t.Error("Expected the single object's transform to be kept")
	}
}

// castWorld casts a world-space ray against a mesh and returns the
// world-space hit point
func castWorld(mesh *Mesh, origin, dest core.Vec3) (core.Vec3, bool) {
	originLocal := mesh.WorldToLocal(origin)
	direction := mesh.WorldToLocal(dest).Subtract(originLocal).Normalize()
	hit := mesh.Cast(originLocal, direction)
	if !hit.Hit {
		return core.Vec3{}, false
	}
	return mesh.LocalToWorld(hit.Point), true
}

func TestMerge_MatchesPremerged(t *testing.T) {
	// Three disjoint objects with different transforms must raycast the
	// same as the equivalent pre-merged triangle soup
	objects := []*MeshObject{
		{Name: "A", Transform: core.NewTranslation(-2, 0, 0), Triangles: quadAtX(0, 1)},
		{Name: "B", Transform: core.NewTranslation(-6, 2, 0), Triangles: quadAtX(0, 1)},
		{Name: "C", Transform: core.NewTranslation(-9, 0, -2), Triangles: quadAtX(0, 1)},
	}

	merged, err := Merge(objects)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.TriangleCount() != 6 {
		t.Fatalf("Expected 6 triangles, got %d", merged.TriangleCount())
	}

	// Equivalent soup expressed directly in world space
	var worldTriangles [][3]core.Vec3
	for _, obj := range objects {
		for _, tri := range obj.Triangles {
			var world [3]core.Vec3
			for k, v := range tri {
				world[k] = obj.Transform.MulPoint(v)
			}
			worldTriangles = append(worldTriangles, world)
		}
	}
	premerged, err := NewMesh(worldTriangles, core.Identity())
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}

	origin := core.NewVec3(0, 0, 0)
	dests := []core.Vec3{
		core.NewVec3(-1, 0, 0),
		core.NewVec3(-1, 0.3, 0),
		core.NewVec3(-1, 0.35, -0.05),
		core.NewVec3(-1, -0.2, -0.3),
		core.NewVec3(-1, 5, 5), // clear miss
	}

	for di, dest := range dests {
		mergedPoint, mergedHit := castWorld(merged, origin, dest)
		premergedPoint, premergedHit := castWorld(premerged, origin, dest)

		if mergedHit != premergedHit {
			t.Errorf("Ray %d: merged hit=%v, premerged hit=%v", di, mergedHit, premergedHit)
			continue
		}
		if mergedHit && mergedPoint.Subtract(premergedPoint).Length() > 1e-9 {
			t.Errorf("Ray %d: merged hit %v, premerged hit %v", di, mergedPoint, premergedPoint)
		}
	}
}

func TestMerge_ReframesIntoFirstObject(t *testing.T) {
	first := &MeshObject{
		Name:      "First",
		Transform: core.NewTranslation(1, 0, 0),
		Triangles: quadAtX(-3, 1),
	}
	second := &MeshObject{
		Name:      "Second",
		Transform: core.NewTranslation(-4, 0, 0),
		Triangles: quadAtX(-3, 1),
	}

	merged, err := Merge([]*MeshObject{first, second})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// World positions: first quad at x=-2, second at x=-7
	point, ok := castWorld(merged, core.NewVec3(0, 0, 0), core.NewVec3(-1, 0, 0))
	if !ok {
		t.Fatal("Expected a hit")
	}
	if math.Abs(point.X-(-2)) > 1e-9 {
		t.Errorf("Expected nearest hit at world x=-2, got %v", point)
	}
}
