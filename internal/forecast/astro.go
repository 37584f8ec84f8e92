package forecast

import (
	"math"
	"time"
)

// Almanac holds the ambient time/season/sun context for one forecast run.
// It is computed once per invocation so the algorithm functions stay pure
// and independently testable.
type Almanac struct {
	Now        time.Time
	Latitude   float64
	Longitude  float64
	Hemisphere Hemisphere
	Season     Season
	DayLength  float64 // hours of daylight at Now's date
	Sunrise    float64 // local solar hour, e.g. 6.25
	Sunset     float64
}

// NewAlmanac derives the season and sun position for the given time and
// location. now should already be in the station's local timezone.
func NewAlmanac(now time.Time, lat, lon float64) Almanac {
	hem := HemisphereForLatitude(lat)
	sunrise, sunset := sunTimes(now, lat)
	return Almanac{
		Now:        now,
		Latitude:   lat,
		Longitude:  lon,
		Hemisphere: hem,
		Season:     SeasonForMonth(now.Month(), hem),
		DayLength:  sunset - sunrise,
		Sunrise:    sunrise,
		Sunset:     sunset,
	}
}

// solarDeclination returns the sun's declination in radians for a day of year.
func solarDeclination(dayOfYear int) float64 {
	return -0.4093 * math.Cos(2*math.Pi*(float64(dayOfYear)+10)/365.25)
}

// sunTimes approximates local solar sunrise/sunset hours from latitude and
// date using the standard hour-angle formula. Good to ~15 minutes, which is
// plenty for day/night classification.
func sunTimes(t time.Time, lat float64) (sunrise, sunset float64) {
	decl := solarDeclination(t.YearDay())
	latRad := lat * math.Pi / 180

	cosH := -math.Tan(latRad) * math.Tan(decl)
	switch {
	case cosH <= -1:
		return 0, 24 // polar day
	case cosH >= 1:
		return 12, 12 // polar night
	}

	h := math.Acos(cosH) * 12 / math.Pi // half day length in hours
	return 12 - h, 12 + h
}

// IsNight reports whether the given time falls outside the almanac's
// sunrise/sunset window. Dates other than the almanac's own day reuse its
// sun times; over a multi-day horizon the drift is negligible.
func (a Almanac) IsNight(t time.Time) bool {
	hour := float64(t.Hour()) + float64(t.Minute())/60
	return hour < a.Sunrise || hour >= a.Sunset
}
