package forecast

import (
	"testing"
	"time"
)

func TestSeasonForMonth(t *testing.T) {
	tests := []struct {
		month time.Month
		hem   Hemisphere
		want  Season
	}{
		{time.January, Northern, Winter},
		{time.April, Northern, Spring},
		{time.July, Northern, Summer},
		{time.October, Northern, Autumn},
		{time.December, Northern, Winter},
		{time.January, Southern, Summer},
		{time.April, Southern, Autumn},
		{time.July, Southern, Winter},
		{time.October, Southern, Spring},
	}
	for _, tt := range tests {
		if got := SeasonForMonth(tt.month, tt.hem); got != tt.want {
			t.Errorf("SeasonForMonth(%v, %v) = %v, want %v", tt.month, tt.hem, got, tt.want)
		}
	}
}

func TestHemisphereForLatitude(t *testing.T) {
	if HemisphereForLatitude(48.1) != Northern {
		t.Error("48.1 should be northern")
	}
	if HemisphereForLatitude(-33.9) != Southern {
		t.Error("-33.9 should be southern")
	}
	if HemisphereForLatitude(0) != Northern {
		t.Error("the equator defaults northern")
	}
}

func TestSunTimes(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		lat       float64
		minDay    float64
		maxDay    float64
	}{
		{"midsummer munich", time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC), 48.1, 15, 17},
		{"midwinter munich", time.Date(2024, time.December, 21, 0, 0, 0, 0, time.UTC), 48.1, 7, 9.5},
		{"equinox anywhere", time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), 48.1, 11, 13},
		{"tropics stay near 12h", time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC), 5.0, 11.5, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sunrise, sunset := sunTimes(tt.date, tt.lat)
			day := sunset - sunrise
			if day < tt.minDay || day > tt.maxDay {
				t.Errorf("day length %.2fh outside [%.1f,%.1f]", day, tt.minDay, tt.maxDay)
			}
			if sunrise >= 12 || sunset <= 12 {
				t.Errorf("sunrise %.2f / sunset %.2f should straddle solar noon", sunrise, sunset)
			}
		})
	}
}

func TestSunTimes_Polar(t *testing.T) {
	midsummer := time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC)
	midwinter := time.Date(2024, time.December, 21, 0, 0, 0, 0, time.UTC)

	if sunrise, sunset := sunTimes(midsummer, 78.0); sunset-sunrise != 24 {
		t.Errorf("arctic midsummer day length = %.1f, want 24", sunset-sunrise)
	}
	if sunrise, sunset := sunTimes(midwinter, 78.0); sunset-sunrise != 0 {
		t.Errorf("arctic midwinter day length = %.1f, want 0", sunset-sunrise)
	}
}

func TestAlmanac_IsNight(t *testing.T) {
	alm := NewAlmanac(time.Date(2024, time.June, 21, 12, 0, 0, 0, time.UTC), 48.1, 11.6)
	tests := []struct {
		hour int
		want bool
	}{
		{12, false},
		{2, true},
		{23, true},
		{10, false},
	}
	for _, tt := range tests {
		at := time.Date(2024, time.June, 21, tt.hour, 0, 0, 0, time.UTC)
		if got := alm.IsNight(at); got != tt.want {
			t.Errorf("IsNight(%02d:00) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestNewAlmanac_SouthernSeason(t *testing.T) {
	alm := NewAlmanac(time.Date(2024, time.July, 10, 12, 0, 0, 0, time.UTC), -33.9, 151.2)
	if alm.Hemisphere != Southern {
		t.Fatalf("hemisphere = %v, want southern", alm.Hemisphere)
	}
	if alm.Season != Winter {
		t.Errorf("July in Sydney: season = %v, want winter", alm.Season)
	}
}
