// pkg/core/types.go
package core

import "math"

// GeoPoint is a geographic coordinate as received from upstream providers.
// Elevation is optional; a nil pointer means "not sampled".
type GeoPoint struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// Position3D represents a 3D coordinate in the site-local frame without GIS
// dependencies. Units are meters relative to the site origin.
type Position3D struct {
	X float64 `json:"x"` // easting
	Y float64 `json:"y"` // northing
	Z float64 `json:"z"` // elevation
}

// PlanarPoint is a 2D point in the site-local frame, used for footprint
// rings where elevation is implied by the extrusion.
type PlanarPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is an axis-aligned rectangle in local meters.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Width returns the east-west extent in meters.
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the north-south extent in meters.
func (b Bounds) Height() float64 {
	return b.MaxY - b.MinY
}

// Diagonal returns the corner-to-corner distance, used to size ray offsets
// so an occlusion ray always starts outside the scene.
func (b Bounds) Diagonal() float64 {
	return math.Hypot(b.Width(), b.Height())
}

// Warning records a non-fatal data-quality issue encountered during
// ingestion or analysis. Warnings accumulate on results instead of aborting
// (data-quality issues are recoverable, resource guards are not).
type Warning struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}
