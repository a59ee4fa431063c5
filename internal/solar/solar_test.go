package solar

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heliosite/engine/pkg/core"
)

const (
	berlinLat = 52.52
	berlinLng = 13.405
)

func TestPosition_NoonRoughlySouthInNorthernHemisphere(t *testing.T) {
	events := Events(time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC), berlinLat, berlinLng)
	pos := Position(berlinLat, berlinLng, events.SolarNoon)

	assert.Greater(t, pos.AltitudeDeg, 50.0) // midsummer Berlin noon is ~61 degrees
	assert.InDelta(t, 180, pos.AzimuthDeg, 5)
}

func TestPosition_AltitudeMonotonicAwayFromNoon(t *testing.T) {
	date := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	events := Events(date, berlinLat, berlinLng)

	prev := Position(berlinLat, berlinLng, events.SolarNoon).AltitudeDeg
	for offset := time.Hour; offset <= 5*time.Hour; offset += time.Hour {
		cur := Position(berlinLat, berlinLng, events.SolarNoon.Add(offset)).AltitudeDeg
		assert.Less(t, cur, prev, "altitude should fall moving toward dusk (offset %v)", offset)
		prev = cur
	}

	prev = Position(berlinLat, berlinLng, events.SolarNoon).AltitudeDeg
	for offset := time.Hour; offset <= 5*time.Hour; offset += time.Hour {
		cur := Position(berlinLat, berlinLng, events.SolarNoon.Add(-offset)).AltitudeDeg
		assert.Less(t, cur, prev, "altitude should fall moving toward dawn (offset %v)", offset)
		prev = cur
	}
}

func TestPosition_AzimuthRange(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		pos := Position(berlinLat, berlinLng, time.Date(2024, 9, 1, hour, 0, 0, 0, time.UTC))
		assert.GreaterOrEqual(t, pos.AzimuthDeg, 0.0)
		assert.Less(t, pos.AzimuthDeg, 360.0)
		assert.GreaterOrEqual(t, pos.AltitudeDeg, -90.0)
		assert.LessOrEqual(t, pos.AltitudeDeg, 90.0)
	}
}

func TestPath_DaylightOnlyAndUniform(t *testing.T) {
	date := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

	path, err := Path(berlinLat, berlinLng, date, 15, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.NotEmpty(t, path.Positions)

	for i, pos := range path.Positions {
		assert.Greater(t, pos.AltitudeDeg, 0.0, "sample %d should be daylight", i)
		if i > 0 {
			gap := pos.Time.Sub(path.Positions[i-1].Time)
			assert.Equal(t, 15*time.Minute, gap, "samples must be time-uniform")
		}
	}

	// Midsummer Berlin has ~16.9 h of sun-up time; expect at least 60 samples.
	assert.Greater(t, len(path.Positions), 60)
}

func TestPath_Regenerable(t *testing.T) {
	date := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	a, err := Path(berlinLat, berlinLng, date, 30, time.Time{}, time.Time{})
	require.NoError(t, err)
	b, err := Path(berlinLat, berlinLng, date, 30, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestPath_Overrides(t *testing.T) {
	date := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	path, err := Path(berlinLat, berlinLng, date, 60, start, end)
	require.NoError(t, err)
	require.Len(t, path.Positions, 3)
	assert.Equal(t, start, path.Positions[0].Time)
}

func TestPath_RejectsInvalidStep(t *testing.T) {
	_, err := Path(berlinLat, berlinLng, time.Now(), 0, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestEvents_Ordering(t *testing.T) {
	events := Events(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), berlinLat, berlinLng)

	assert.True(t, events.Dawn.Before(events.Sunrise))
	assert.True(t, events.Sunrise.Before(events.SolarNoon))
	assert.True(t, events.SolarNoon.Before(events.GoldenHour))
	assert.True(t, events.GoldenHour.Before(events.Sunset))
	assert.True(t, events.Sunset.Before(events.Dusk))
}

func TestSeasonalDates(t *testing.T) {
	dates := SeasonalDates(2024)

	assert.Equal(t, time.March, dates.MarchEquinox.Month())
	assert.Equal(t, time.June, dates.JuneSolstice.Month())
	assert.Equal(t, time.September, dates.SeptemberEquinox.Month())
	assert.Equal(t, time.December, dates.DecemberSolstice.Month())

	assert.InDelta(t, 20, float64(dates.JuneSolstice.Day()), 1)
	assert.InDelta(t, 20, float64(dates.MarchEquinox.Day()), 1)
}

func TestDirection_UnitVectorConventions(t *testing.T) {
	// Sun due south at 45 degrees altitude: direction has no east component,
	// points south (negative north) and up.
	d := Direction(testPos(180, 45))
	assert.InDelta(t, 0, d.X, 1e-12)
	assert.InDelta(t, -math.Sqrt2/2, d.Y, 1e-12)
	assert.InDelta(t, math.Sqrt2/2, d.Z, 1e-12)

	// Due east at the horizon.
	d = Direction(testPos(90, 0))
	assert.InDelta(t, 1, d.X, 1e-12)
	assert.InDelta(t, 0, d.Y, 1e-12)
	assert.InDelta(t, 0, d.Z, 1e-12)

	length := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
	assert.InDelta(t, 1, length, 1e-12)
}

func testPos(azimuthDeg, altitudeDeg float64) (p core.SunPosition) {
	p.AzimuthDeg = azimuthDeg
	p.AltitudeDeg = altitudeDeg
	return p
}
