// pkg/core/sun.go
package core

import "time"

// SunPosition is the sun's place in the sky at one instant.
// Azimuth is degrees clockwise from true north (0=N, 90=E, 180=S, 270=W).
// Altitude is degrees above the local horizon; negative before sunrise.
type SunPosition struct {
	AzimuthDeg  float64   `json:"azimuthDeg"`
	AltitudeDeg float64   `json:"altitudeDeg"`
	Time        time.Time `json:"time"`
}

// SunPath is a time-uniform sequence of daylight sun positions
// (altitude > 0 only). Regenerable from the same (location, date, step)
// inputs; never mutated in place.
type SunPath struct {
	Positions   []SunPosition `json:"positions"`
	StepMinutes int           `json:"stepMinutes"`
}

// Duration returns the total daylight time the path represents.
func (p SunPath) Duration() time.Duration {
	return time.Duration(len(p.Positions)*p.StepMinutes) * time.Minute
}

// SolarEvents are the named event times for one date at one location.
type SolarEvents struct {
	Sunrise    time.Time `json:"sunrise"`
	SolarNoon  time.Time `json:"solarNoon"`
	Sunset     time.Time `json:"sunset"`
	GoldenHour time.Time `json:"goldenHour"`
	Dawn       time.Time `json:"dawn"` // civil dawn, sun 6 degrees below horizon
	Dusk       time.Time `json:"dusk"` // civil dusk
}

// SeasonalDates are the solstices and equinoxes for one year.
type SeasonalDates struct {
	MarchEquinox     time.Time `json:"marchEquinox"`
	JuneSolstice     time.Time `json:"juneSolstice"`
	SeptemberEquinox time.Time `json:"septemberEquinox"`
	DecemberSolstice time.Time `json:"decemberSolstice"`
}
