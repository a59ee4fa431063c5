package terrain

import (
	"fmt"
	"math"

	"github.com/heliosite/engine/internal/geo"
	"github.com/heliosite/engine/pkg/core"
)

// FlattenGrid converts an already-fetched elevation grid into the local
// point cloud the mesher consumes. Samples with missing (NaN) elevation are
// skipped and counted in the returned warnings; a malformed grid shape is a
// warning too, not a failure, because absent terrain may be acceptable to
// the caller.
func FlattenGrid(grid core.ElevationGrid, projector *geo.Projector) ([]core.Position3D, []core.Warning) {
	var warnings []core.Warning

	nx, ny := grid.Resolution.Nx, grid.Resolution.Ny
	if nx < 1 || ny < 1 || len(grid.Values) != ny {
		warnings = append(warnings, core.Warning{
			Stage:   "elevation",
			Message: fmt.Sprintf("malformed elevation grid from %q: %dx%d with %d rows", grid.Provider, nx, ny, len(grid.Values)),
		})
		return nil, warnings
	}

	lngStep := 0.0
	if nx > 1 {
		lngStep = (grid.BBox.East - grid.BBox.West) / float64(nx-1)
	}
	latStep := 0.0
	if ny > 1 {
		latStep = (grid.BBox.North - grid.BBox.South) / float64(ny-1)
	}

	points := make([]core.Position3D, 0, nx*ny)
	missing := 0
	for iy := 0; iy < ny; iy++ {
		row := grid.Values[iy]
		if len(row) != nx {
			warnings = append(warnings, core.Warning{
				Stage:   "elevation",
				Message: fmt.Sprintf("elevation row %d has %d samples, expected %d", iy, len(row), nx),
			})
			continue
		}
		lat := grid.BBox.South + float64(iy)*latStep
		for ix := 0; ix < nx; ix++ {
			if math.IsNaN(row[ix]) {
				missing++
				continue
			}
			lng := grid.BBox.West + float64(ix)*lngStep
			x, y := projector.Project(lat, lng)
			points = append(points, core.Position3D{X: x, Y: y, Z: row[ix]})
		}
	}

	if missing > 0 {
		warnings = append(warnings, core.Warning{
			Stage:   "elevation",
			Message: fmt.Sprintf("%d grid samples missing elevation", missing),
		})
	}
	return points, warnings
}
