// Package massing ingests GeoJSON building footprints into simplified
// extrudable volumes. This is the ingestion boundary for external map data:
// geometry and height metadata are validated here and nowhere else
// downstream.
package massing

import (
	"fmt"
	"strconv"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/heliosite/engine/internal/geo"
	"github.com/heliosite/engine/pkg/core"
)

const (
	// DefaultHeightM is assumed when a feature carries no usable height
	// metadata at all.
	DefaultHeightM = 10
	// MetersPerLevel converts a level count into a height estimate.
	MetersPerLevel = 3.5
	// VerifyHeightM flags implausibly tall buildings for manual review.
	VerifyHeightM = 100
)

// Extractor turns GeoJSON polygon features into building massings, keeping
// a validation report instead of failing on bad data.
type Extractor struct {
	projector *geo.Projector
}

// NewExtractor creates an extractor projecting footprints with the given
// site projector.
func NewExtractor(projector *geo.Projector) *Extractor {
	return &Extractor{projector: projector}
}

// Extract converts each polygonal feature into a massing. Non-polygon
// features and rings with fewer than 3 distinct vertices are skipped and
// recorded as warnings; a MultiPolygon becomes one massing per member
// polygon. The report always covers the whole pass, even when no massing
// survives.
func (e *Extractor) Extract(fc geom.GeoJSONFeatureCollection) ([]core.Massing, core.MassingReport) {
	var (
		massings []core.Massing
		report   core.MassingReport
	)

	for i, feature := range fc {
		id := featureID(feature, i)
		height, defaulted := featureHeight(feature.Properties)

		polys, ok := polygonsOf(feature.Geometry)
		if !ok {
			report.Warnings = append(report.Warnings, core.Warning{
				Stage:   "massing",
				Message: fmt.Sprintf("feature %s: unsupported geometry type %s, skipped", id, feature.Geometry.Type()),
			})
			continue
		}

		for pi, poly := range polys {
			ring := e.projectRing(poly.ExteriorRing())
			if len(ring) < 3 {
				report.Warnings = append(report.Warnings, core.Warning{
					Stage:   "massing",
					Message: fmt.Sprintf("feature %s: ring with fewer than 3 vertices, skipped", id),
				})
				continue
			}

			mid := id
			if len(polys) > 1 {
				mid = fmt.Sprintf("%s/%d", id, pi)
			}
			if defaulted {
				report.DefaultedHeight++
			}
			if height > VerifyHeightM {
				report.VerifyIDs = append(report.VerifyIDs, mid)
			}
			massings = append(massings, core.Massing{
				ID:           mid,
				Footprint:    ring,
				HeightMeters: height,
			})
		}
	}

	report.Total = len(massings)
	if len(massings) > 0 {
		var sum float64
		for _, m := range massings {
			sum += m.HeightMeters
			if m.HeightMeters > report.MaxHeightM {
				report.MaxHeightM = m.HeightMeters
			}
		}
		report.AverageHeightM = sum / float64(len(massings))
	}
	return massings, report
}

// projectRing projects a GeoJSON exterior ring (lng/lat order, closed) into
// the local frame, dropping the repeated closing vertex.
func (e *Extractor) projectRing(ring geom.LineString) []core.PlanarPoint {
	seq := ring.Coordinates()
	n := seq.Length()
	if n > 1 {
		first := seq.GetXY(0)
		last := seq.GetXY(n - 1)
		if first == last {
			n--
		}
	}

	points := make([]core.PlanarPoint, 0, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		x, y := e.projector.Project(xy.Y, xy.X)
		points = append(points, core.PlanarPoint{X: x, Y: y})
	}
	return points
}

func polygonsOf(g geom.Geometry) ([]geom.Polygon, bool) {
	if poly, ok := g.AsPolygon(); ok {
		return []geom.Polygon{poly}, true
	}
	if mp, ok := g.AsMultiPolygon(); ok {
		polys := make([]geom.Polygon, 0, mp.NumPolygons())
		for i := 0; i < mp.NumPolygons(); i++ {
			polys = append(polys, mp.PolygonN(i))
		}
		return polys, true
	}
	return nil, false
}

func featureID(f geom.GeoJSONFeature, index int) string {
	if s, ok := f.ID.(string); ok && s != "" {
		return s
	}
	if f.ID != nil {
		return fmt.Sprintf("%v", f.ID)
	}
	if s, ok := f.Properties["id"].(string); ok && s != "" {
		return s
	}
	if s, ok := f.Properties["name"].(string); ok && s != "" {
		return s
	}
	return fmt.Sprintf("building-%d", index)
}

// featureHeight resolves the height chain: explicit height, then level
// count at 3.5 m per level, then the 10 m default.
func featureHeight(props map[string]interface{}) (height float64, defaulted bool) {
	for _, key := range []string{"height", "building:height"} {
		if h, ok := numericProp(props, key); ok && h > 0 {
			return h, false
		}
	}
	for _, key := range []string{"levels", "building:levels"} {
		if l, ok := numericProp(props, key); ok && l > 0 {
			return l * MetersPerLevel, false
		}
	}
	return DefaultHeightM, true
}

// numericProp reads a property that map sources deliver either as a JSON
// number or as a tag string.
func numericProp(props map[string]interface{}, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
