package renderer

import (
	"io"
	"log"
	"time"

	"github.com/slbench/depthcast/pkg/core"
	"github.com/slbench/depthcast/pkg/geometry"
	"github.com/slbench/depthcast/pkg/scene"
)

// Renderer casts one ray per sensor pixel against a merged mesh and
// reconstructs a depth record per hit. The mesh, source and grid are
// read-only for the duration of a render, so columns can be cast in
// parallel.
type Renderer struct {
	mesh   *geometry.Mesh
	source scene.Source
	grid   SensorGrid
	logger core.Logger
}

// NewRenderer creates a renderer for the given mesh, source and sensor
// resolution. A nil logger disables progress output.
func NewRenderer(mesh *geometry.Mesh, source scene.Source, width, height int, logger core.Logger) (*Renderer, error) {
	grid, err := NewSensorGrid(source, width, height)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Renderer{
		mesh:   mesh,
		source: source,
		grid:   grid,
		logger: logger,
	}, nil
}

// Grid returns the derived sensor grid
func (r *Renderer) Grid() SensorGrid {
	return r.grid
}

// renderColumn casts all rows of one pixelX column in top-to-bottom scan
// order, appending one record per hit. originLocal is the source location
// already mapped into mesh-local space.
func (r *Renderer) renderColumn(i int, originLocal core.Vec3, records []DepthRecord) []DepthRecord {
	yOffset := r.grid.YOffset(i)
	pixelX := r.grid.PixelX(yOffset)

	for j := 0; j < r.grid.Height; j++ {
		zOffset := r.grid.ZOffset(j)
		pixelY := r.grid.PixelY(zOffset)

		// The ray runs from the source through the sensor sample. Both
		// endpoints are world-space points, so the source location offset
		// must be added before mapping into mesh-local space; only the
		// local direction is normalized.
		dest := r.grid.Direction(yOffset, zOffset).Add(r.source.Location)
		destLocal := r.mesh.WorldToLocal(dest)
		direction := destLocal.Subtract(originLocal).Normalize()

		hit := r.mesh.Cast(originLocal, direction)
		if record, ok := Reconstruct(hit, r.mesh, r.source, r.grid, pixelX, pixelY); ok {
			records = append(records, record)
		}
	}

	return records
}

// Render casts the full grid and returns the hit records in column-major
// scan order (all rows of column 0, then column 1, ...), regardless of how
// many workers ran. numWorkers <= 0 uses one worker per CPU.
func (r *Renderer) Render(numWorkers int) []DepthRecord {
	start := time.Now()
	originLocal := r.mesh.WorldToLocal(r.source.Location)

	pool := newWorkerPool(r, originLocal, numWorkers)
	pool.Start()

	go func() {
		for i := 0; i < r.grid.Width; i++ {
			pool.Submit(i)
		}
		pool.Stop()
	}()

	perColumn := make([][]DepthRecord, r.grid.Width)
	for result := range pool.Results() {
		perColumn[result.Column] = result.Records
	}

	// Flatten strictly by column so parallel output is byte-identical to a
	// sequential scan
	var records []DepthRecord
	for _, column := range perColumn {
		records = append(records, column...)
	}

	r.logger.Printf("Cast %d rays (%d hits) with %d workers in %v",
		r.grid.Width*r.grid.Height, len(records), pool.NumWorkers(), time.Since(start))

	return records
}
