// pkg/core/result.go
package core

import "time"

// Cell is one raster cell of a shadow analysis. X/Y are the cell center in
// local meters. SunHours is only populated by daily accumulation.
type Cell struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	GroundElevation float64 `json:"groundElevation"`
	IsShaded        bool    `json:"isShaded"`
	SunHours        float64 `json:"sunHours,omitempty"`
}

// Stats are the per-category cell counts of one analysis.
type Stats struct {
	TotalCells  int `json:"totalCells"`
	ShadedCells int `json:"shadedCells"`
	LitCells    int `json:"litCells"`
}

// AnalysisResult is the caller-owned output of a shadow analysis. Cells are
// row-major (y rows of x columns). The engine retains no reference to a
// returned result. Field names and units (meters, hours, degrees) are a
// stable contract for downstream renderers and exporters.
type AnalysisResult struct {
	Cells         []Cell     `json:"cells"`
	GridWidth     int        `json:"gridWidth"`
	GridHeight    int        `json:"gridHeight"`
	CellSize      float64    `json:"cellSize"`
	Bounds        Bounds     `json:"bounds"`
	PercentShaded float64    `json:"percentShaded"` // instant mode only
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Stats         Stats      `json:"stats"`
	Warnings      []Warning  `json:"warnings,omitempty"`
}

// FacadeExposure is the cumulative direct-sun duration on each cardinal
// facade of one building, in hours.
type FacadeExposure struct {
	BuildingID string  `json:"buildingId"`
	North      float64 `json:"north"`
	East       float64 `json:"east"`
	South      float64 `json:"south"`
	West       float64 `json:"west"`
}
