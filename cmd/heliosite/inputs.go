package main

import (
	"encoding/json"
	"fmt"
	"os"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/heliosite/engine/pkg/core"
)

// readElevationGrid loads the already-fetched DEM document. An empty path
// means no terrain data; the analysis then runs against the flat datum.
func readElevationGrid(path string) (core.ElevationGrid, error) {
	if path == "" {
		return core.ElevationGrid{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.ElevationGrid{}, fmt.Errorf("reading elevation grid: %w", err)
	}
	var grid core.ElevationGrid
	if err := json.Unmarshal(data, &grid); err != nil {
		return core.ElevationGrid{}, fmt.Errorf("parsing elevation grid %s: %w", path, err)
	}
	return grid, nil
}

// readBuildings loads the GeoJSON building footprints. An empty path means
// no buildings; terrain can still self-shade.
func readBuildings(path string) (geom.GeoJSONFeatureCollection, error) {
	if path == "" {
		return geom.GeoJSONFeatureCollection{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return geom.GeoJSONFeatureCollection{}, fmt.Errorf("reading buildings: %w", err)
	}
	var fc geom.GeoJSONFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return geom.GeoJSONFeatureCollection{}, fmt.Errorf("parsing buildings %s: %w", path, err)
	}
	return fc, nil
}
