// Package scene loads the JSON scene description consumed by the depth
// renderer: a set of mesh objects (inline triangles or PLY references,
// each with a world transform) and named light objects carrying a position
// and field-of-view angles.
package scene

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/slbench/depthcast/pkg/core"
	"github.com/slbench/depthcast/pkg/geometry"
	"github.com/slbench/depthcast/pkg/loaders"
)

// DefaultLightName is the light object the renderer uses unless told
// otherwise, matching the projector naming of the capture rigs this tool
// generates ground truth for.
const DefaultLightName = "Spot"

// Source is the point projector rays are cast from: a world-space location
// and the full horizontal/vertical field-of-view angles in radians.
type Source struct {
	Name     string
	Location core.Vec3
	AngleX   float64 // Horizontal field of view, radians
	AngleY   float64 // Vertical field of view, radians
}

// Scene is an already-loaded scene graph: mesh objects ready for merging
// plus the lights found in the file.
type Scene struct {
	Meshes []*geometry.MeshObject
	Lights []Source
}

// sceneFile mirrors the on-disk JSON structure
type sceneFile struct {
	Objects []sceneObject `json:"objects"`
}

type sceneObject struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	MatrixWorld *[4][4]float64 `json:"matrix_world,omitempty"`
	Vertices    [][3]float64   `json:"vertices,omitempty"`
	Faces       [][]int        `json:"faces,omitempty"`
	PLY         string         `json:"ply,omitempty"`
	Location    *[3]float64    `json:"location,omitempty"`
	AngleX      float64        `json:"angle_x,omitempty"`
	AngleY      float64        `json:"angle_y,omitempty"`
}

// Load reads and parses a scene file. PLY references are resolved relative
// to the scene file's directory. Any read or parse failure is fatal; an
// absent light or empty geometry is reported later, by Source and Merge.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading scene file")
	}

	var file sceneFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parsing scene file")
	}

	scene := &Scene{}
	baseDir := filepath.Dir(path)

	for _, obj := range file.Objects {
		switch obj.Type {
		case "MESH":
			mesh, err := loadMeshObject(obj, baseDir)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh object %q", obj.Name)
			}
			scene.Meshes = append(scene.Meshes, mesh)
		case "LIGHT", "LAMP":
			light, err := loadLight(obj)
			if err != nil {
				return nil, errors.Wrapf(err, "light object %q", obj.Name)
			}
			scene.Lights = append(scene.Lights, light)
		default:
			// Cameras, empties etc. play no part in depth casting
		}
	}

	return scene, nil
}

// Source finds a light by name, the way the original rig looks up its
// projector in the scene graph.
func (s *Scene) Source(name string) (Source, error) {
	for _, light := range s.Lights {
		if light.Name == name {
			return light, nil
		}
	}
	return Source{}, errors.Errorf("scene has no light named %q", name)
}

func loadMeshObject(obj sceneObject, baseDir string) (*geometry.MeshObject, error) {
	transform := core.Identity()
	if obj.MatrixWorld != nil {
		transform = core.Mat4(*obj.MatrixWorld)
	}

	var triangles [][3]core.Vec3
	switch {
	case obj.PLY != "":
		plyPath := obj.PLY
		if !filepath.IsAbs(plyPath) {
			plyPath = filepath.Join(baseDir, plyPath)
		}
		data, err := loaders.LoadPLY(plyPath)
		if err != nil {
			return nil, err
		}
		triangles = data.Triangles()
	case len(obj.Vertices) > 0:
		var err error
		triangles, err = triangulate(obj.Vertices, obj.Faces)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("mesh object has neither inline vertices nor a ply reference")
	}

	return &geometry.MeshObject{
		Name:      obj.Name,
		Transform: transform,
		Triangles: triangles,
	}, nil
}

func loadLight(obj sceneObject) (Source, error) {
	if obj.Location == nil {
		return Source{}, errors.New("light has no location")
	}
	if obj.AngleX <= 0 || obj.AngleY <= 0 {
		return Source{}, errors.New("light needs positive angle_x and angle_y")
	}
	return Source{
		Name:     obj.Name,
		Location: core.NewVec3(obj.Location[0], obj.Location[1], obj.Location[2]),
		AngleX:   obj.AngleX,
		AngleY:   obj.AngleY,
	}, nil
}

// triangulate converts inline vertices and polygon faces into per-triangle
// vertex triples, fan-triangulating anything beyond a triangle
func triangulate(vertices [][3]float64, faces [][]int) ([][3]core.Vec3, error) {
	points := make([]core.Vec3, len(vertices))
	for i, v := range vertices {
		points[i] = core.NewVec3(v[0], v[1], v[2])
	}

	var triangles [][3]core.Vec3
	for f, face := range faces {
		if len(face) < 3 {
			return nil, errors.Errorf("face %d has %d vertices", f, len(face))
		}
		for _, idx := range face {
			if idx < 0 || idx >= len(points) {
				return nil, errors.Errorf("face %d: vertex index %d out of range", f, idx)
			}
		}
		for i := 1; i+1 < len(face); i++ {
			triangles = append(triangles, [3]core.Vec3{
				points[face[0]],
				points[face[i]],
				points[face[i+1]],
			})
		}
	}
	return triangles, nil
}
