package forecast

import (
	"math"
	"time"
)

// Zambretti implements the Zambretti slide-rule formula: a base value z is
// derived from sea-level pressure and its 3h trend, nudged by wind, then
// looked up in a fixed 33-entry table.

const (
	zambrettiRiseThreshold = 1.0  // hPa over 3h
	zambrettiFallThreshold = -1.0 // hPa over 3h
)

type zambrettiEntry struct {
	Code   int
	Letter byte
}

// zambrettiTable maps every z in [1,33] to its letter and shared numeric
// code. Completeness over 1..33 is a correctness invariant verified in
// tests; index 0 is unused.
var zambrettiTable = [34]zambrettiEntry{
	// falling barometer (1-9)
	1:  {0, 'A'},  // settled fine
	2:  {1, 'B'},  // fine weather
	3:  {3, 'D'},  // fine, becoming less settled
	4:  {7, 'H'},  // fairly fine, showery later
	5:  {14, 'O'}, // showery, becoming more unsettled
	6:  {17, 'R'}, // unsettled, rain later
	7:  {20, 'U'}, // rain at times, worse later
	8:  {21, 'V'}, // rain at times, becoming very unsettled
	9:  {23, 'X'}, // very unsettled, rain
	// steady barometer (10-19)
	10: {0, 'A'},
	11: {1, 'B'},
	12: {4, 'E'},  // fine, possibly showers
	13: {10, 'K'}, // fairly fine, showers likely
	14: {13, 'N'}, // showery, bright intervals
	15: {15, 'P'}, // changeable, some rain
	16: {18, 'S'}, // unsettled, rain at times
	17: {22, 'W'}, // rain at frequent intervals
	18: {23, 'X'},
	19: {25, 'Z'}, // stormy, much rain
	// rising barometer (20-33)
	20: {0, 'A'},
	21: {1, 'B'},
	22: {2, 'C'},  // becoming fine
	23: {5, 'F'},  // fairly fine, improving
	24: {6, 'G'},  // fairly fine, possibly showers early
	25: {8, 'I'},  // showery early, improving
	26: {9, 'J'},  // changeable, mending
	27: {11, 'L'}, // rather unsettled, clearing later
	28: {12, 'M'}, // unsettled, probably improving
	29: {16, 'Q'}, // unsettled, short fine intervals
	30: {19, 'T'}, // very unsettled, finer at times
	31: {24, 'Y'}, // stormy, possibly improving
	32: {25, 'Z'},
	33: {25, 'Z'},
}

// zambrettiBearingFactor holds per-sector wind adjustments in z units for
// the northern hemisphere, N first, clockwise. Southerly winds worsen the
// outlook, northerlies improve it. The southern hemisphere uses the table
// rotated by 180°.
var zambrettiBearingFactor = [16]float64{
	-1.0, // N
	-0.5, // NNE
	-0.5, // NE
	0,    // ENE
	0,    // E
	0.5,  // ESE
	1.0,  // SE
	1.5,  // SSE
	1.5,  // S
	1.0,  // SSW
	0.5,  // SW
	0.5,  // WSW
	0,    // W
	0,    // WNW
	-0.5, // NW
	-0.5, // NNW
}

// windSpeedFactor scales the bearing adjustment by how hard the wind blows.
// Calm air carries no advective signal.
var windSpeedBands = []struct {
	Below  float64 // m/s, exclusive upper bound
	Factor float64
}{
	{1.5, 0},
	{5.5, 0.5},
	{8.0, 1.0},
	{math.Inf(1), 1.5},
}

func windSpeedFactor(speed float64) float64 {
	for _, b := range windSpeedBands {
		if speed < b.Below {
			return b.Factor
		}
	}
	return 0
}

// windSector maps a bearing in degrees to one of 16 compass sectors.
// Returns -1 for out-of-domain bearings, in which case the wind term is
// not computable and callers substitute zero.
func windSector(bearing float64) int {
	if bearing < 0 || bearing > 360 {
		return -1
	}
	return int(math.Mod(bearing+11.25, 360) / 22.5)
}

func zambrettiWindAdjustment(bearing, speed float64, hem Hemisphere) float64 {
	sector := windSector(bearing)
	if sector < 0 || speed < 0 {
		return 0
	}
	if hem == Southern {
		sector = (sector + 8) % 16
	}
	return zambrettiBearingFactor[sector] * windSpeedFactor(speed)
}

// summerHalfYear reports whether the month falls in the warm half of the
// year (March-October in the north, inverted in the south), which shifts
// the steady and rising formulas by one step.
func summerHalfYear(m time.Month, hem Hemisphere) bool {
	north := m >= time.March && m <= time.October
	if hem == Southern {
		return !north
	}
	return north
}

// PressureTrendZambretti classifies the 3h change with the ±1.0 hPa
// thresholds the Zambretti formula expects.
func PressureTrendZambretti(change3h float64) PressureTrend {
	switch {
	case change3h <= zambrettiFallThreshold:
		return TrendFalling
	case change3h >= zambrettiRiseThreshold:
		return TrendRising
	default:
		return TrendSteady
	}
}

// Zambretti runs the formula against one observation. It never fails:
// out-of-range z values clamp to the table boundary and flag the result
// exceptional.
func Zambretti(obs Observation, tr Trends, month time.Month, hem Hemisphere) Result {
	p := obs.Pressure
	summer := summerHalfYear(month, hem)

	var z float64
	switch PressureTrendZambretti(tr.PressureChange3h) {
	case TrendFalling:
		z = 127 - 0.12*p
	case TrendRising:
		z = 185 - 0.16*p
		if summer {
			z++
		}
	default:
		z = 144 - 0.13*p
		if !summer {
			z--
		}
	}
	z = math.Round(z)
	z += zambrettiWindAdjustment(obs.WindDir, obs.WindSpeed, hem)

	zi := int(math.Round(z))
	exceptional := ExceptionalNone
	switch {
	case zi < 1:
		zi = 3
		exceptional = ExceptionalHighPressureBreakdown
	case zi > 33:
		zi = 33
		exceptional = ExceptionalStormRecovery
	}

	entry := zambrettiTable[zi]
	conf := 0.90
	if exceptional != ExceptionalNone {
		conf = 0.75
	}
	return Result{
		NumericCode: entry.Code,
		Letter:      entry.Letter,
		Confidence:  conf,
		Exceptional: exceptional,
		Source:      SourceZambretti,
	}
}
