package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slbench/depthcast/pkg/core"
)

func writeScene(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const planeScene = `{
  "objects": [
    {
      "name": "Plane",
      "type": "MESH",
      "matrix_world": [[1,0,0,0],[0,1,0,0],[0,0,1,-2],[0,0,0,1]],
      "vertices": [[0,0,0],[1,0,0],[1,1,0],[0,1,0]],
      "faces": [[0,1,2,3]]
    },
    {
      "name": "Spot",
      "type": "LIGHT",
      "location": [0, 0, 3],
      "angle_x": 0.8,
      "angle_y": 0.6
    },
    {
      "name": "Camera.001",
      "type": "CAMERA"
    }
  ]
}`

func TestLoad(t *testing.T) {
	path := writeScene(t, t.TempDir(), planeScene)

	scn, err := Load(path)
	require.NoError(t, err)

	require.Len(t, scn.Meshes, 1)
	mesh := scn.Meshes[0]
	assert.Equal(t, "Plane", mesh.Name)
	// The quad face fans into two triangles
	assert.Len(t, mesh.Triangles, 2)
	assert.Equal(t, -2.0, mesh.Transform[2][3])

	require.Len(t, scn.Lights, 1)
	light := scn.Lights[0]
	assert.Equal(t, "Spot", light.Name)
	assert.Equal(t, core.NewVec3(0, 0, 3), light.Location)
	assert.Equal(t, 0.8, light.AngleX)
	assert.Equal(t, 0.6, light.AngleY)
}

func TestLoad_DefaultTransformIsIdentity(t *testing.T) {
	path := writeScene(t, t.TempDir(), `{
  "objects": [
    {"name": "Tri", "type": "MESH",
     "vertices": [[0,0,0],[1,0,0],[0,1,0]], "faces": [[0,1,2]]}
  ]
}`)

	scn, err := Load(path)
	require.NoError(t, err)
	require.Len(t, scn.Meshes, 1)
	assert.Equal(t, core.Identity(), scn.Meshes[0].Transform)
}

func TestLoad_PLYReference(t *testing.T) {
	dir := t.TempDir()

	ply := `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
3 0 1 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.ply"), []byte(ply), 0644))

	path := writeScene(t, dir, `{
  "objects": [
    {"name": "Tri", "type": "MESH", "ply": "tri.ply"}
  ]
}`)

	scn, err := Load(path)
	require.NoError(t, err)
	require.Len(t, scn.Meshes, 1)
	assert.Len(t, scn.Meshes[0].Triangles, 1)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Malformed JSON",
			content: `{"objects": [`,
		},
		{
			name: "Mesh without geometry",
			content: `{"objects": [
				{"name": "Empty", "type": "MESH"}
			]}`,
		},
		{
			name: "Mesh with bad face index",
			content: `{"objects": [
				{"name": "Bad", "type": "MESH",
				 "vertices": [[0,0,0],[1,0,0],[0,1,0]], "faces": [[0,1,7]]}
			]}`,
		},
		{
			name: "Light without location",
			content: `{"objects": [
				{"name": "Spot", "type": "LIGHT", "angle_x": 0.5, "angle_y": 0.5}
			]}`,
		},
		{
			name: "Light with zero field of view",
			content: `{"objects": [
				{"name": "Spot", "type": "LIGHT", "location": [0,0,0], "angle_x": 0, "angle_y": 0.5}
			]}`,
		},
		{
			name: "Missing PLY file",
			content: `{"objects": [
				{"name": "Tri", "type": "MESH", "ply": "missing.ply"}
			]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScene(t, t.TempDir(), tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestScene_Source(t *testing.T) {
	path := writeScene(t, t.TempDir(), planeScene)
	scn, err := Load(path)
	require.NoError(t, err)

	source, err := scn.Source(DefaultLightName)
	require.NoError(t, err)
	assert.Equal(t, "Spot", source.Name)

	_, err = scn.Source("Sun")
	assert.ErrorContains(t, err, "Sun")
}
