package forecast

import "time"

// Hemisphere selects the sign of seasonal and wind-sector adjustments.
type Hemisphere int

const (
	Northern Hemisphere = iota
	Southern
)

func HemisphereForLatitude(lat float64) Hemisphere {
	if lat < 0 {
		return Southern
	}
	return Northern
}

// Season is the meteorological season, already adjusted for hemisphere.
type Season int

const (
	Winter Season = iota
	Spring
	Summer
	Autumn
)

func (s Season) String() string {
	switch s {
	case Winter:
		return "winter"
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	default:
		return "autumn"
	}
}

// SeasonForMonth maps a calendar month to the meteorological season,
// inverted for the southern hemisphere.
func SeasonForMonth(m time.Month, hem Hemisphere) Season {
	var s Season
	switch m {
	case time.December, time.January, time.February:
		s = Winter
	case time.March, time.April, time.May:
		s = Spring
	case time.June, time.July, time.August:
		s = Summer
	default:
		s = Autumn
	}
	if hem == Southern {
		switch s {
		case Winter:
			s = Summer
		case Summer:
			s = Winter
		case Spring:
			s = Autumn
		case Autumn:
			s = Spring
		}
	}
	return s
}

// PressureTrend is the qualitative direction of the barometer.
type PressureTrend int

const (
	TrendSteady PressureTrend = iota
	TrendRising
	TrendFalling
)

func (t PressureTrend) String() string {
	switch t {
	case TrendRising:
		return "rising"
	case TrendFalling:
		return "falling"
	default:
		return "steady"
	}
}

// ModelSource identifies which model produced a forecast entry.
type ModelSource int

const (
	SourcePersistence ModelSource = iota
	SourceWMOSimple
	SourceBlend
	SourceCombined
	SourceZambretti
	SourceNegretti
)

func (m ModelSource) String() string {
	switch m {
	case SourcePersistence:
		return "persistence"
	case SourceWMOSimple:
		return "wmo_simple"
	case SourceBlend:
		return "blend"
	case SourceCombined:
		return "combined"
	case SourceZambretti:
		return "zambretti"
	case SourceNegretti:
		return "negretti"
	default:
		return "unknown"
	}
}

// ExceptionalKind flags a result that hit an algorithmic boundary and was
// clamped rather than rejected.
type ExceptionalKind int

const (
	ExceptionalNone ExceptionalKind = iota
	ExceptionalHighPressureBreakdown
	ExceptionalStormRecovery
	ExceptionalOutOfRange
)

// Observation is an immutable snapshot of one station reading. Optional
// sensors are pointers; nil means the sensor is absent and the models fall
// back to humidity-derived estimates or zero effect.
type Observation struct {
	Pressure    float64 // station pressure, hPa
	Temperature float64 // °C
	Humidity    float64 // %
	WindDir     float64 // degrees, 0-360
	WindSpeed   float64 // m/s
	Elevation   float64 // m

	SolarRadiation *float64 // W/m²
	CloudCover     *float64 // %
	UVIndex        *float64
}

// Trends carries the rolling-window deltas computed by the store. The core
// consumes them as plain numbers and never maintains history itself.
type Trends struct {
	PressureChange3h float64 // hPa over 3h
	TempChange1h     float64 // °C over 1h
}

// Result is the tagged output of a single algorithm run. Text is looked up
// separately from NumericCode; the core operates on codes only.
type Result struct {
	NumericCode int     // shared condition code, 0-25
	Letter      byte    // algorithm-owned letter, 'A'-'Z'
	Confidence  float64 // 0-1
	Exceptional ExceptionalKind
	Source      ModelSource
}

// ModelWeights is the ensemble split between the two barometric algorithms.
// Invariant: Zambretti + Negretti == 1.0, both in [0,1].
type ModelWeights struct {
	Zambretti float64
	Negretti  float64
}

// HourlyEntry is one hour of the generated forecast sequence.
type HourlyEntry struct {
	Time          time.Time    `json:"datetime"`
	Code          int          `json:"condition_code"`
	Condition     Condition    `json:"condition"`
	Temperature   float64      `json:"temperature"`
	Pressure      float64      `json:"pressure"`
	PrecipProb    int          `json:"precipitation_probability"`
	Confidence    float64      `json:"confidence"`
	Source        ModelSource  `json:"-"`
	SourceName    string       `json:"source_model"`
	Weights       ModelWeights `json:"model_weights"`
	Exceptional   bool         `json:"exceptional,omitempty"`
}

// DailyEntry aggregates the hourly entries of one local calendar day.
type DailyEntry struct {
	Date       time.Time `json:"date"`
	TempHigh   float64   `json:"temp_high"`
	TempLow    float64   `json:"temp_low"`
	Condition  Condition `json:"condition"`
	PrecipProb int       `json:"precipitation_probability"`
}

func hourDuration(h int) time.Duration {
	return time.Duration(h) * time.Hour
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
