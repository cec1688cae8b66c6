package renderer

import (
	"github.com/slbench/depthcast/pkg/core"
	"github.com/slbench/depthcast/pkg/geometry"
	"github.com/slbench/depthcast/pkg/scene"
)

// DepthRecord is the pair of output rows produced for one hit pixel: the
// pixel view (PixelX, PixelY, Depth) and the reconstructed real-world view
// (RealX, RealY, RealZ). Misses produce no record, so the output is sparse.
type DepthRecord struct {
	PixelX int
	PixelY int
	Depth  float64
	RealX  float64
	RealY  float64
	RealZ  float64
}

// Reconstruct converts a mesh-local hit into a depth record. Depth is the
// source-relative coordinate along the principal axis (fromSource.X), not
// Euclidean ray length; the RealX/RealY similar-triangle scaling depends on
// exactly this definition. Returns false on a miss, which is silent by
// design.
func Reconstruct(hit core.RayHit, mesh *geometry.Mesh, source scene.Source, grid SensorGrid, pixelX, pixelY int) (DepthRecord, bool) {
	if !hit.Hit {
		return DepthRecord{}, false
	}

	hitWorld := mesh.LocalToWorld(hit.Point)
	fromSource := hitWorld.Subtract(source.Location)
	depth := fromSource.X

	realX := (float64(pixelX) - float64(grid.Width)/2) * depth * grid.stepY
	realY := (float64(pixelY) - float64(grid.Height)/2) * depth * grid.stepZ

	return DepthRecord{
		PixelX: pixelX,
		PixelY: pixelY,
		Depth:  depth,
		RealX:  realX,
		RealY:  realY,
		RealZ:  depth,
	}, true
}
