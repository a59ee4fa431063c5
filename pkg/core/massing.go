// pkg/core/massing.go
package core

// Massing is a simplified building volume: a 2D footprint ring extruded to a
// height. Footprint rings are ordered and have at least 3 vertices; rings
// failing that are dropped at the ingestion boundary, never constructed here.
type Massing struct {
	ID           string        `json:"id"`
	Footprint    []PlanarPoint `json:"footprint"`
	HeightMeters float64       `json:"heightMeters"`
}

// Centroid returns the footprint's vertex centroid, used for facade and
// reporting purposes (not an area-weighted centroid).
func (m Massing) Centroid() PlanarPoint {
	var c PlanarPoint
	if len(m.Footprint) == 0 {
		return c
	}
	for _, p := range m.Footprint {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(m.Footprint))
	c.X /= n
	c.Y /= n
	return c
}

// MassingReport summarizes the quality of an extraction pass. It reports,
// never fails: callers decide whether defaulted heights are acceptable.
type MassingReport struct {
	Total           int       `json:"total"`
	DefaultedHeight int       `json:"defaultedHeight"`
	AverageHeightM  float64   `json:"averageHeightM"`
	MaxHeightM      float64   `json:"maxHeightM"`
	VerifyIDs       []string  `json:"verifyIds"` // buildings above 100 m, flagged "verify data"
	Warnings        []Warning `json:"warnings"`
}
