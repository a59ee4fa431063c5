// Package shadow rasterizes a bounded rectangle into a cell grid and
// classifies each cell lit or shaded against an immutable intersection
// scene, either for one sun position or accumulated across a whole sun
// path. The per-cell workload is embarrassingly parallel: workers own
// disjoint row ranges of the output and share only the read-only scene, so
// no locking is needed and results are bit-identical regardless of worker
// count.
package shadow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/heliosite/engine/internal/scene"
	"github.com/heliosite/engine/internal/solar"
	"github.com/heliosite/engine/internal/terrain"
	"github.com/heliosite/engine/pkg/core"
)

// MaxGridCells caps the raster size. The guard runs before any per-cell
// work so an oversized request costs nothing.
const MaxGridCells = 500_000

// ErrGridTooLarge is returned when bounds/cellSize would exceed MaxGridCells.
var ErrGridTooLarge = errors.New("shadow grid too large")

// ErrInvalidGrid is returned for non-positive cell sizes or empty bounds.
var ErrInvalidGrid = errors.New("invalid shadow grid parameters")

// Caster classifies raster cells against a scene. One Caster is safe for
// concurrent use; it holds no per-analysis state.
type Caster struct {
	workers int

	cellsClassified metric.Int64Counter
	passes          metric.Int64Counter
}

// NewCaster creates a caster with the given worker count; zero or negative
// means one worker per CPU. Metrics come from the global OTel meter and are
// no-ops when none is configured.
func NewCaster(workers int) (*Caster, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	c := &Caster{workers: workers}

	m := otel.GetMeterProvider().Meter("heliosite/shadow")

	var err error
	c.cellsClassified, err = m.Int64Counter(
		"shadow.cells.classified",
		metric.WithDescription("Total raster cells classified lit or shaded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cells counter: %w", err)
	}
	c.passes, err = m.Int64Counter(
		"shadow.passes.completed",
		metric.WithDescription("Total sun-position passes completed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating passes counter: %w", err)
	}
	return c, nil
}

// gridDims validates bounds and cell size and applies the cell-count guard.
func gridDims(bounds core.Bounds, cellSize float64) (w, h int, err error) {
	if cellSize <= 0 {
		return 0, 0, fmt.Errorf("%w: cellSize %.3f must be positive", ErrInvalidGrid, cellSize)
	}
	if bounds.Width() <= 0 || bounds.Height() <= 0 {
		return 0, 0, fmt.Errorf("%w: bounds have no area", ErrInvalidGrid)
	}
	w = int(math.Ceil(bounds.Width() / cellSize))
	h = int(math.Ceil(bounds.Height() / cellSize))
	if w*h > MaxGridCells {
		return 0, 0, fmt.Errorf("%w: %d cells exceed the %d cell limit; reduce the analysis bounds or use a larger cell size",
			ErrGridTooLarge, w*h, MaxGridCells)
	}
	return w, h, nil
}

// newGrid allocates the row-major cell raster with centers and ground
// elevations filled in. Ground elevation comes straight from the terrain
// mesh surface; a nil mesh means a flat z=0 datum.
func newGrid(bounds core.Bounds, cellSize float64, w, h int, mesh *terrain.Mesh) []core.Cell {
	cells := make([]core.Cell, w*h)
	for iy := 0; iy < h; iy++ {
		cy := bounds.MinY + (float64(iy)+0.5)*cellSize
		for ix := 0; ix < w; ix++ {
			cx := bounds.MinX + (float64(ix)+0.5)*cellSize
			var gz float64
			if mesh != nil {
				gz = mesh.ElevationAt(cx, cy)
			}
			cells[iy*w+ix] = core.Cell{X: cx, Y: cy, GroundElevation: gz}
		}
	}
	return cells
}

// Cast runs one instant shadow analysis. With the sun at or below the
// horizon it short-circuits: every cell is shaded and no geometry is
// traversed.
func (c *Caster) Cast(sun core.SunPosition, sc *scene.Scene, mesh *terrain.Mesh, bounds core.Bounds, cellSize float64) (*core.AnalysisResult, error) {
	w, h, err := gridDims(bounds, cellSize)
	if err != nil {
		return nil, err
	}

	cells := newGrid(bounds, cellSize, w, h, mesh)
	result := &core.AnalysisResult{
		Cells:      cells,
		GridWidth:  w,
		GridHeight: h,
		CellSize:   cellSize,
		Bounds:     bounds,
	}
	ts := sun.Time
	result.Timestamp = &ts

	if sun.AltitudeDeg <= 0 {
		for i := range cells {
			cells[i].IsShaded = true
		}
		result.PercentShaded = 100
		result.Stats = core.Stats{TotalCells: len(cells), ShadedCells: len(cells)}
		return result, nil
	}

	c.classify(cells, sc, solarDir(sun))
	c.cellsClassified.Add(context.Background(), int64(len(cells)))
	c.passes.Add(context.Background(), 1)

	shaded := 0
	for i := range cells {
		if cells[i].IsShaded {
			shaded++
		}
	}
	result.Stats = core.Stats{
		TotalCells:  len(cells),
		ShadedCells: shaded,
		LitCells:    len(cells) - shaded,
	}
	result.PercentShaded = float64(shaded) / float64(len(cells)) * 100
	return result, nil
}

// classify marks each cell's IsShaded by occlusion-testing its center
// against the scene. Rows are split into contiguous ranges, one per worker;
// each worker writes only its own cells.
func (c *Caster) classify(cells []core.Cell, sc *scene.Scene, sunDir r3.Vec) {
	workers := c.workers
	if workers > len(cells) {
		workers = len(cells)
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (len(cells) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(cells); start += chunk {
		end := start + chunk
		if end > len(cells) {
			end = len(cells)
		}
		wg.Add(1)
		go func(part []core.Cell) {
			defer wg.Done()
			for i := range part {
				p := r3.Vec{X: part[i].X, Y: part[i].Y, Z: part[i].GroundElevation}
				part[i].IsShaded = sc.Occluded(p, sunDir)
			}
		}(cells[start:end])
	}
	wg.Wait()
}

func solarDir(sun core.SunPosition) r3.Vec {
	d := solar.Direction(sun)
	return r3.Vec{X: d.X, Y: d.Y, Z: d.Z}
}
