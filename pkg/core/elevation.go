// pkg/core/elevation.go
package core

// GridResolution is the sample count of an elevation grid along each axis.
type GridResolution struct {
	Nx int `json:"nx"`
	Ny int `json:"ny"`
}

// GridBBox is a geographic bounding box in degrees.
type GridBBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// GridAccuracy describes the provider's stated error bounds.
type GridAccuracy struct {
	VerticalErrorM     float64 `json:"verticalErrorM"`
	NominalResolutionM float64 `json:"nominalResolutionM"`
}

// ElevationGrid is the already-fetched DEM supplied by an external
// elevation-data collaborator. Values is row-major: Values[iy][ix] is the
// elevation in meters at row iy (south to north) and column ix (west to
// east). The engine flattens it into the point cloud the terrain mesher
// consumes; it never fetches data itself.
type ElevationGrid struct {
	Resolution GridResolution `json:"resolution"`
	BBox       GridBBox       `json:"bbox"`
	Values     [][]float64    `json:"values"`
	Provider   string         `json:"provider"`
	Accuracy   GridAccuracy   `json:"accuracy"`
}
