// Package solar computes sun geometry: instantaneous position, daylight sun
// paths, named event times and seasonal dates. Azimuth is always degrees
// clockwise from true north (0=N, 90=E, 180=S, 270=W); altitude is degrees
// above the local horizon, negative before sunrise.
package solar

import (
	"errors"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solstice"

	"github.com/heliosite/engine/pkg/core"
)

// DefaultStepMinutes is the sampling interval for daily sun paths.
const DefaultStepMinutes = 15

// ErrInvalidStep is returned when a path is requested with a non-positive
// sampling step.
var ErrInvalidStep = errors.New("sampling step must be positive minutes")

const rad2deg = 180 / math.Pi

// Position returns the sun's altitude and azimuth for a location and
// instant. suncalc returns radians and uses a south-based azimuth (0=S,
// 90=W); we convert to the north-clockwise convention everything downstream
// documents.
func Position(lat, lng float64, t time.Time) core.SunPosition {
	p := suncalc.GetPosition(t, lat, lng)
	az := math.Mod(p.Azimuth*rad2deg+180, 360)
	if az < 0 {
		az += 360
	}
	return core.SunPosition{
		AzimuthDeg:  az,
		AltitudeDeg: p.Altitude * rad2deg,
		Time:        t,
	}
}

// Path samples sun positions across one date at uniform stepMinutes
// intervals and keeps only daylight samples (altitude > 0). Start and end
// default to civil dawn and dusk; either can be overridden with a non-zero
// time. The same inputs always regenerate the same path.
func Path(lat, lng float64, date time.Time, stepMinutes int, startOverride, endOverride time.Time) (core.SunPath, error) {
	if stepMinutes <= 0 {
		return core.SunPath{}, ErrInvalidStep
	}

	events := Events(date, lat, lng)
	start, end := events.Dawn, events.Dusk
	if !startOverride.IsZero() {
		start = startOverride
	}
	if !endOverride.IsZero() {
		end = endOverride
	}

	path := core.SunPath{StepMinutes: stepMinutes}
	step := time.Duration(stepMinutes) * time.Minute
	for t := start; !t.After(end); t = t.Add(step) {
		pos := Position(lat, lng, t)
		if pos.AltitudeDeg > 0 {
			path.Positions = append(path.Positions, pos)
		}
	}
	return path, nil
}

// Events returns the named solar event times for one date at one location.
func Events(date time.Time, lat, lng float64) core.SolarEvents {
	times := suncalc.GetTimes(date, lat, lng)
	return core.SolarEvents{
		Sunrise:    times[suncalc.Sunrise].Value,
		SolarNoon:  times[suncalc.SolarNoon].Value,
		Sunset:     times[suncalc.Sunset].Value,
		GoldenHour: times[suncalc.GoldenHour].Value,
		Dawn:       times[suncalc.Dawn].Value,
		Dusk:       times[suncalc.Dusk].Value,
	}
}

// SeasonalDates returns the solstices and equinoxes for a year, in UTC.
func SeasonalDates(year int) core.SeasonalDates {
	return core.SeasonalDates{
		MarchEquinox:     julian.JDToTime(solstice.March(year)),
		JuneSolstice:     julian.JDToTime(solstice.June(year)),
		SeptemberEquinox: julian.JDToTime(solstice.September(year)),
		DecemberSolstice: julian.JDToTime(solstice.December(year)),
	}
}

// Direction converts a sun position into a unit direction vector pointing
// from the ground toward the sun, in the local east/north/up frame.
func Direction(pos core.SunPosition) core.Position3D {
	az := pos.AzimuthDeg * math.Pi / 180
	alt := pos.AltitudeDeg * math.Pi / 180
	return core.Position3D{
		X: math.Sin(az) * math.Cos(alt), // east
		Y: math.Cos(az) * math.Cos(alt), // north
		Z: math.Sin(alt),                // up
	}
}
