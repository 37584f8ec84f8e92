package forecast

import "math"

// Negretti implements the Negretti & Zambra slide-rule method: the reading
// is adjusted for wind and season inside a fixed 950-1050 hPa working
// range, then bucketed into 22 positions against one of three trend tables.

const (
	negrettiRangeLow  = 950.0
	negrettiRangeHigh = 1050.0
	negrettiRange     = negrettiRangeHigh - negrettiRangeLow

	// The Negretti method wants a sustained trend before it commits to a
	// rising or falling table, hence the wider threshold than Zambretti's.
	negrettiTrendThreshold = 1.6 // hPa over 3h

	negrettiSeasonalShift = 0.07 // fraction of the working range

	negrettiBuckets = 22
)

// negrettiWindOffset holds per-sector pressure offsets as a percentage of
// the working range, northern hemisphere, N first, clockwise. Positive
// offsets push the adjusted reading toward the settled end. The southern
// hemisphere uses the table rotated by 180°.
var negrettiWindOffset = [16]float64{
	6.0,   // N
	5.0,   // NNE
	5.0,   // NE
	2.0,   // ENE
	-0.5,  // E
	-2.0,  // ESE
	-5.0,  // SE
	-8.5,  // SSE
	-12.0, // S
	-10.0, // SSW
	-6.0,  // SW
	-4.5,  // WSW
	-3.0,  // W
	-0.5,  // WNW
	1.5,   // NW
	3.0,   // NNW
}

// The three 22-entry tables map a bucket (0 = settled end of the range,
// 21 = stormy end) to the shared numeric code. Exhaustive coverage of
// bucket 0..21 for all three trends is verified in tests.
var (
	negrettiRising = [negrettiBuckets]int{
		0, 0, 0, 0, 0, 1, 1, 2, 5, 6, 8,
		9, 11, 13, 15, 16, 19, 24, 24, 25, 25, 25,
	}
	negrettiSteady = [negrettiBuckets]int{
		0, 0, 0, 0, 0, 0, 1, 1, 4, 10, 13,
		15, 18, 22, 23, 23, 25, 25, 25, 25, 25, 25,
	}
	negrettiFalling = [negrettiBuckets]int{
		0, 0, 0, 1, 1, 1, 3, 7, 14, 17, 20,
		21, 23, 23, 25, 25, 25, 25, 25, 25, 25, 25,
	}
)

// negrettiLetters maps the shared numeric code to the historic Negretti &
// Zambra lettering. This is deliberately a different alphabet mapping from
// Zambretti's table; the two are not interchangeable.
var negrettiLetters = [26]byte{
	'A', 'B', 'B', 'C', 'C', 'D', 'D', 'E', 'E', 'F',
	'F', 'G', 'G', 'H', 'H', 'J', 'J', 'K', 'K', 'L',
	'L', 'M', 'M', 'N', 'P', 'Q',
}

// PressureTrendNegretti classifies the 3h change with the ±1.6 hPa
// thresholds of the Negretti method.
func PressureTrendNegretti(change3h float64) PressureTrend {
	switch {
	case change3h <= -negrettiTrendThreshold:
		return TrendFalling
	case change3h >= negrettiTrendThreshold:
		return TrendRising
	default:
		return TrendSteady
	}
}

// windActive reports whether there is enough wind for the bearing offset
// to mean anything.
func windActive(speed float64) bool {
	return speed >= 0.5
}

// Negretti runs the method against one observation. Out-of-range buckets
// clamp to the table boundary and flag the result exceptional; invalid
// wind bearings simply contribute no offset.
func Negretti(obs Observation, tr Trends, season Season, hem Hemisphere) Result {
	p := clampF(obs.Pressure, negrettiRangeLow, negrettiRangeHigh)

	if windActive(obs.WindSpeed) {
		if sector := windSector(obs.WindDir); sector >= 0 {
			if hem == Southern {
				sector = (sector + 8) % 16
			}
			p += negrettiWindOffset[sector] / 100 * negrettiRange
		}
	}

	trend := PressureTrendNegretti(tr.PressureChange3h)

	// Seasonal shift: in the warm half of the year a rising glass is more
	// optimistic and a falling one more pessimistic than the raw reading
	// suggests; the cold half inverts the correction.
	if trend != TrendSteady {
		shift := negrettiSeasonalShift * negrettiRange
		warm := season == Summer || season == Spring
		if trend == TrendRising {
			if warm {
				p += shift
			} else {
				p -= shift
			}
		} else {
			if warm {
				p -= shift
			} else {
				p += shift
			}
		}
	}

	bucket := int(math.Floor((negrettiRangeHigh - p) * negrettiBuckets / negrettiRange))
	if bucket == negrettiBuckets && p >= negrettiRangeLow {
		bucket = negrettiBuckets - 1 // reading exactly at the bottom of the range
	}
	exceptional := ExceptionalNone
	if bucket < 0 || bucket > negrettiBuckets-1 {
		bucket = clampI(bucket, 0, negrettiBuckets-1)
		exceptional = ExceptionalOutOfRange
	}

	var code int
	switch trend {
	case TrendRising:
		code = negrettiRising[bucket]
	case TrendFalling:
		code = negrettiFalling[bucket]
	default:
		code = negrettiSteady[bucket]
	}

	conf := 0.90
	if exceptional != ExceptionalNone {
		conf = 0.75
	}
	return Result{
		NumericCode: code,
		Letter:      negrettiLetters[code],
		Confidence:  conf,
		Exceptional: exceptional,
		Source:      SourceNegretti,
	}
}
