package shadow

import (
	"context"
	"fmt"

	"github.com/heliosite/engine/internal/scene"
	"github.com/heliosite/engine/internal/terrain"
	"github.com/heliosite/engine/pkg/core"
)

// ProgressFunc reports accumulation progress after each completed pass.
type ProgressFunc func(completed, total int)

// Accumulate sweeps every position of a sun path over the grid and sums the
// lit minutes per cell into sun hours. The grid guard runs once up front;
// the context is checked between passes so cancellation never leaves a
// half-classified pass in the output. The same cell raster is reused across
// passes, so memory stays flat no matter how long the path is.
func (c *Caster) Accumulate(ctx context.Context, path core.SunPath, sc *scene.Scene, mesh *terrain.Mesh, bounds core.Bounds, cellSize float64, onProgress ProgressFunc) (*core.AnalysisResult, error) {
	w, h, err := gridDims(bounds, cellSize)
	if err != nil {
		return nil, err
	}

	cells := newGrid(bounds, cellSize, w, h, mesh)
	litMinutes := make([]float64, len(cells))
	step := float64(path.StepMinutes)

	total := len(path.Positions)
	for i, pos := range path.Positions {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("accumulation cancelled after %d of %d passes: %w", i, total, err)
		}
		if pos.AltitudeDeg <= 0 {
			// Paths are daylight-only, but tolerate callers that
			// built their own.
			if onProgress != nil {
				onProgress(i+1, total)
			}
			continue
		}

		c.classify(cells, sc, solarDir(pos))
		c.cellsClassified.Add(context.Background(), int64(len(cells)))
		c.passes.Add(context.Background(), 1)

		for j := range cells {
			if !cells[j].IsShaded {
				litMinutes[j] += step
			}
		}
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	neverLit := 0
	for j := range cells {
		cells[j].SunHours = litMinutes[j] / 60
		cells[j].IsShaded = litMinutes[j] == 0
		if cells[j].IsShaded {
			neverLit++
		}
	}

	result := &core.AnalysisResult{
		Cells:      cells,
		GridWidth:  w,
		GridHeight: h,
		CellSize:   cellSize,
		Bounds:     bounds,
		Stats: core.Stats{
			TotalCells:  len(cells),
			ShadedCells: neverLit,
			LitCells:    len(cells) - neverLit,
		},
	}
	return result, nil
}
