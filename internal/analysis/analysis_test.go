package analysis

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliosite/engine/internal/config"
	"github.com/heliosite/engine/pkg/core"
)

const (
	siteLat = 52.52
	siteLng = 13.405
)

type testLogger struct {
	infos  []string
	errors []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {}
func (l *testLogger) Info(msg string, keysAndValues ...any)  { l.infos = append(l.infos, msg) }
func (l *testLogger) Error(msg string, keysAndValues ...any) { l.errors = append(l.errors, msg) }

func testSite() config.SiteConfig {
	return config.SiteConfig{Latitude: siteLat, Longitude: siteLng, ExtentMeters: 40}
}

func testRun() config.AnalysisConfig {
	return config.AnalysisConfig{Mode: "instant", CellSize: 2, StepMinutes: 60, Workers: 2}
}

// flatGrid is a 5x5 all-zero elevation grid covering the site extent.
func flatGrid() core.ElevationGrid {
	values := make([][]float64, 5)
	for iy := range values {
		values[iy] = make([]float64, 5)
	}
	return core.ElevationGrid{
		Resolution: core.GridResolution{Nx: 5, Ny: 5},
		BBox: core.GridBBox{
			West: siteLng - 0.0010, East: siteLng + 0.0010,
			South: siteLat - 0.0010, North: siteLat + 0.0010,
		},
		Values:   values,
		Provider: "test",
	}
}

// towerFeatures is one 10 m building centered on the site origin.
func towerFeatures(t *testing.T) geom.GeoJSONFeatureCollection {
	t.Helper()
	raw := `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {"id": "tower", "height": 10},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[
					[13.40485, 52.51990],
					[13.40515, 52.51990],
					[13.40515, 52.52010],
					[13.40485, 52.52010],
					[13.40485, 52.51990]
				]]
			}
		}]
	}`
	var fc geom.GeoJSONFeatureCollection
	require.NoError(t, json.Unmarshal([]byte(raw), &fc))
	return fc
}

func testService(t *testing.T) (*Service, *testLogger) {
	t.Helper()
	log := &testLogger{}
	svc, err := NewService(Dependencies{Logger: log}, testSite(), testRun(), flatGrid(), towerFeatures(t))
	require.NoError(t, err)
	return svc, log
}

func TestNewService_BuildsSession(t *testing.T) {
	svc, log := testService(t)

	assert.Len(t, svc.Massings(), 1)
	assert.Equal(t, 1, svc.MassingReport().Total)
	assert.Positive(t, svc.MeshReport().UsablePoints)
	assert.Contains(t, log.infos, "Analysis session ready")
	assert.Zero(t, svc.Progress())
}

func TestNewService_NoBounds(t *testing.T) {
	site := testSite()
	site.ExtentMeters = 0

	_, err := NewService(Dependencies{Logger: &testLogger{}}, site, testRun(),
		core.ElevationGrid{}, geom.GeoJSONFeatureCollection{})
	require.ErrorIs(t, err, ErrNoBounds)
}

func TestService_InstantSummerNoon(t *testing.T) {
	svc, _ := testService(t)

	result, err := svc.Instant(time.Date(2024, 6, 21, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 20, result.GridWidth)
	assert.Equal(t, 20, result.GridHeight)
	assert.NotNil(t, result.Timestamp)
	assert.Greater(t, result.PercentShaded, 0.0)
	assert.Less(t, result.PercentShaded, 100.0)
}

func TestService_InstantNight(t *testing.T) {
	svc, _ := testService(t)

	result, err := svc.Instant(time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.PercentShaded)
}

func TestService_DailyAccumulatesAndReportsProgress(t *testing.T) {
	svc, _ := testService(t)

	var calls int
	result, err := svc.Daily(context.Background(), time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
		func(completed, total int) { calls++ })
	require.NoError(t, err)

	assert.Positive(t, calls)
	assert.Equal(t, calls, svc.Progress())
	assert.Nil(t, result.Timestamp)

	// the southwest corner is lit around midday, so it is never-shaded=false
	corner := result.Cells[0]
	assert.False(t, corner.IsShaded)
	assert.Positive(t, corner.SunHours)
}

func TestService_DailyCancelled(t *testing.T) {
	svc, _ := testService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Daily(ctx, time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestService_Facades(t *testing.T) {
	svc, _ := testService(t)

	exposures, err := svc.Facades(time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, exposures, 1)

	assert.Equal(t, "tower", exposures[0].BuildingID)
	assert.Positive(t, exposures[0].South)
	assert.Positive(t, exposures[0].East)
}

func TestService_Events(t *testing.T) {
	svc, _ := testService(t)

	events := svc.Events(time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	assert.True(t, events.Sunrise.Before(events.SolarNoon))
	assert.True(t, events.SolarNoon.Before(events.Sunset))
}

func TestService_WarningsAttachedToResults(t *testing.T) {
	grid := flatGrid()
	grid.Values[2][2] = math.NaN()

	svc, err := NewService(Dependencies{Logger: &testLogger{}}, testSite(), testRun(), grid, towerFeatures(t))
	require.NoError(t, err)

	result, err := svc.Instant(time.Date(2024, 6, 21, 11, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, "elevation", result.Warnings[0].Stage)
}

func TestService_SunPathMemoizedPerDate(t *testing.T) {
	svc, _ := testService(t)
	june := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

	first, err := svc.path(june)
	require.NoError(t, err)
	require.NotEmpty(t, first.Positions)

	again, err := svc.path(june)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, svc.paths.Len())

	// Facades on the same date reuses the memoized path.
	_, err = svc.Facades(june)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.paths.Len())

	// A different date is a different entry.
	_, err = svc.path(time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, svc.paths.Len())
}
