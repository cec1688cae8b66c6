package renderer

import (
	"math"

	"github.com/pkg/errors"

	"github.com/slbench/depthcast/pkg/core"
	"github.com/slbench/depthcast/pkg/scene"
)

// ErrInvalidResolution reports a sensor width or height that is not a
// positive pixel count
var ErrInvalidResolution = errors.New("sensor resolution must be positive")

// SensorGrid is the virtual pixel lattice rays are cast through. Offsets
// span the tangent half-extents of the source's field of view: Y ascends
// over [-TanY, TanY) and Z descends over (-TanZ, TanZ], both half-open so
// the upper bound is never sampled (top-to-bottom scan, one sample
// asymmetric about the optical axis).
type SensorGrid struct {
	Width  int
	Height int
	TanY   float64 // tan(angleX/2), horizontal half-extent
	TanZ   float64 // tan(angleY/2), vertical half-extent
	stepY  float64
	stepZ  float64
}

// NewSensorGrid derives the pixel lattice from the source's field-of-view
// angles and the requested resolution
func NewSensorGrid(source scene.Source, width, height int) (SensorGrid, error) {
	if width <= 0 || height <= 0 {
		return SensorGrid{}, ErrInvalidResolution
	}

	tanY := math.Tan(source.AngleX / 2)
	tanZ := math.Tan(source.AngleY / 2)
	if tanY <= 0 || tanZ <= 0 {
		return SensorGrid{}, errors.New("source field of view must be positive and below pi")
	}

	return SensorGrid{
		Width:  width,
		Height: height,
		TanY:   tanY,
		TanZ:   tanZ,
		stepY:  2 * tanY / float64(width),
		stepZ:  2 * tanZ / float64(height),
	}, nil
}

// YOffset returns the horizontal direction offset for column i in [0, Width)
func (g SensorGrid) YOffset(i int) float64 {
	return -g.TanY + float64(i)*g.stepY
}

// ZOffset returns the vertical direction offset for row j in [0, Height),
// descending from +TanZ
func (g SensorGrid) ZOffset(j int) float64 {
	return g.TanZ - float64(j)*g.stepZ
}

// PixelX recovers the column index from a horizontal offset. This is an
// independent re-derivation, not the loop index; it must round-trip exactly
// with YOffset.
func (g SensorGrid) PixelX(yOffset float64) int {
	return int(math.Round(((yOffset + g.TanY) / (2 * g.TanY)) * float64(g.Width)))
}

// PixelY recovers the row index from a vertical offset
func (g SensorGrid) PixelY(zOffset float64) int {
	return int(math.Round(((-zOffset + g.TanZ) / (2 * g.TanZ)) * float64(g.Height)))
}

// Direction returns the ray direction in the source's local frame: a fixed
// -1 principal axis with the two offsets. It is deliberately unnormalized;
// normalization happens only after the endpoints are mapped into mesh-local
// space.
func (g SensorGrid) Direction(yOffset, zOffset float64) core.Vec3 {
	return core.NewVec3(-1, yOffset, zOffset)
}
