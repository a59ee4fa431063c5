// Package exposure derives per-building cardinal facade sun hours from a
// sun path. The calculation is purely directional: a facade counts a path
// step whenever the sun is in front of it and not grazing, with no
// rasterization and no terrain involved.
package exposure

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/heliosite/engine/internal/solar"
	"github.com/heliosite/engine/pkg/core"
)

// grazingCutoffDeg excludes near-grazing illumination, which is too
// unreliable to count as real facade exposure.
const grazingCutoffDeg = 85

var facadeNormals = [4]r3.Vec{
	{Y: 1},  // north
	{X: 1},  // east
	{Y: -1}, // south
	{X: -1}, // west
}

// Facades sums, per building and cardinal facade, the hours in which the
// facade faces the sun within the grazing cutoff. Every building shares the
// same four outward normals, so footprint orientation does not influence
// the result; the table is keyed by building so downstream consumers can
// join it against massings.
func Facades(path core.SunPath, massings []core.Massing) []core.FacadeExposure {
	if len(massings) == 0 {
		return nil
	}

	cutoff := math.Cos(grazingCutoffDeg * math.Pi / 180)
	stepHours := float64(path.StepMinutes) / 60

	var hours [4]float64
	for _, pos := range path.Positions {
		if pos.AltitudeDeg <= 0 {
			continue
		}
		d := solar.Direction(pos)
		sunDir := r3.Vec{X: d.X, Y: d.Y, Z: d.Z}
		for f, normal := range facadeNormals {
			if r3.Dot(normal, sunDir) > cutoff {
				hours[f] += stepHours
			}
		}
	}

	exposures := make([]core.FacadeExposure, 0, len(massings))
	for _, m := range massings {
		exposures = append(exposures, core.FacadeExposure{
			BuildingID: m.ID,
			North:      hours[0],
			East:       hours[1],
			South:      hours[2],
			West:       hours[3],
		})
	}
	return exposures
}
