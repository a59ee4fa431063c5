package exposure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliosite/engine/internal/solar"
	"github.com/heliosite/engine/pkg/core"
)

func testMassing(id string) core.Massing {
	return core.Massing{
		ID: id,
		Footprint: []core.PlanarPoint{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		},
		HeightMeters: 12,
	}
}

func TestFacades_NoMassings(t *testing.T) {
	path := core.SunPath{StepMinutes: 15, Positions: []core.SunPosition{{AzimuthDeg: 180, AltitudeDeg: 45}}}
	assert.Nil(t, Facades(path, nil))
}

func TestFacades_SouthSunHitsSouthFacadeOnly(t *testing.T) {
	path := core.SunPath{
		StepMinutes: 30,
		Positions: []core.SunPosition{
			{AzimuthDeg: 180, AltitudeDeg: 40},
			{AzimuthDeg: 180, AltitudeDeg: 50},
		},
	}

	exposures := Facades(path, []core.Massing{testMassing("a")})
	require.Len(t, exposures, 1)

	e := exposures[0]
	assert.Equal(t, "a", e.BuildingID)
	assert.InDelta(t, 1.0, e.South, 1e-9)
	assert.Zero(t, e.North)
	assert.Zero(t, e.East)
	assert.Zero(t, e.West)
}

func TestFacades_EastToWestSweep(t *testing.T) {
	path := core.SunPath{
		StepMinutes: 60,
		Positions: []core.SunPosition{
			{AzimuthDeg: 90, AltitudeDeg: 20},  // east
			{AzimuthDeg: 180, AltitudeDeg: 55}, // south
			{AzimuthDeg: 270, AltitudeDeg: 20}, // west
		},
	}

	e := Facades(path, []core.Massing{testMassing("a")})[0]
	assert.InDelta(t, 1.0, e.East, 1e-9)
	assert.InDelta(t, 1.0, e.South, 1e-9)
	assert.InDelta(t, 1.0, e.West, 1e-9)
	assert.Zero(t, e.North)
}

func TestFacades_GrazingCutoffExcluded(t *testing.T) {
	// Sun nearly due south: incidence on the east facade is past the 85
	// degree cutoff even though the dot product is barely positive.
	path := core.SunPath{
		StepMinutes: 15,
		Positions:   []core.SunPosition{{AzimuthDeg: 177, AltitudeDeg: 10}},
	}

	e := Facades(path, []core.Massing{testMassing("a")})[0]
	assert.Zero(t, e.East)
	assert.Positive(t, e.South)
}

func TestFacades_BelowHorizonIgnored(t *testing.T) {
	path := core.SunPath{
		StepMinutes: 15,
		Positions:   []core.SunPosition{{AzimuthDeg: 180, AltitudeDeg: -2}},
	}

	e := Facades(path, []core.Massing{testMassing("a")})[0]
	assert.Zero(t, e.North+e.East+e.South+e.West)
}

func TestFacades_SameHoursForEveryBuilding(t *testing.T) {
	path := core.SunPath{
		StepMinutes: 15,
		Positions: []core.SunPosition{
			{AzimuthDeg: 135, AltitudeDeg: 30},
			{AzimuthDeg: 225, AltitudeDeg: 30},
		},
	}

	exposures := Facades(path, []core.Massing{testMassing("a"), testMassing("b")})
	require.Len(t, exposures, 2)
	assert.Equal(t, exposures[0].South, exposures[1].South)
	assert.Equal(t, "b", exposures[1].BuildingID)
}

func TestFacades_EquinoxTropicalSite(t *testing.T) {
	// At the March equinox the sun stays in the southern sky for a site
	// north of the subsolar point. At 10 degrees north the north facade
	// never sees the sun, the south facade carries most of the day, and
	// morning and afternoon split evenly between east and west. The exact
	// equator is excluded here: with near-zero declination the sun track
	// is grazing for both the north and south facades all day.
	lat, lng := 10.0, 0.0
	date := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	path, err := solar.Path(lat, lng, date, 10, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, path.Positions)

	e := Facades(path, []core.Massing{testMassing("a")})[0]

	assert.Zero(t, e.North)
	assert.Greater(t, e.South, 4.0)
	assert.Greater(t, e.South, e.East)
	assert.InDelta(t, e.East, e.West, 0.5)
	assert.Greater(t, e.East, 3.0)
}
