package forecast

import "math"

// Two cheap reference models anchor the short end of the horizon: pure
// persistence for the current hour, and a WMO-style trend nudge for the
// next few.

const (
	persistenceFloor = 0.60
	wmoFloor         = 0.70
	wmoStrongTrend   = 3.0 // hPa over 3h
	wmoBoost         = 0.03
)

// persistenceConfidence holds the fixed schedule for h=0..3; beyond that
// confidence drops 0.05 per hour to the floor.
var persistenceConfidence = [4]float64{0.98, 0.95, 0.90, 0.85}

// Persistence returns the current condition code unchanged for any
// horizon. It is only trustworthy for the first hours, which its
// confidence schedule encodes.
func Persistence(currentCode, hoursAhead int) Result {
	conf := persistenceFloor
	if hoursAhead < 0 {
		hoursAhead = 0
	}
	if hoursAhead < len(persistenceConfidence) {
		conf = persistenceConfidence[hoursAhead]
	} else {
		conf = persistenceConfidence[3] - 0.05*float64(hoursAhead-3)
		if conf < persistenceFloor {
			conf = persistenceFloor
		}
	}
	return Result{
		NumericCode: clampI(currentCode, 0, 25),
		Letter:      'A' + byte(clampI(currentCode, 0, 25)),
		Confidence:  roundConfidence(conf),
		Source:      SourcePersistence,
	}
}

// roundConfidence keeps the published schedules exact: the raw arithmetic
// accumulates float error (0.95+0.03 is not quite 0.98).
func roundConfidence(c float64) float64 {
	return math.Round(c*100) / 100
}

// wmoTrendAdjustment maps the 3h pressure change to a condition-code step:
// a rising glass clears the sky, a falling one degrades it.
func wmoTrendAdjustment(change3h float64) int {
	switch {
	case change3h >= 3:
		return -3
	case change3h >= 1:
		return -2
	case change3h <= -3:
		return 3
	case change3h <= -1:
		return 2
	default:
		return 0
	}
}

// WMOSimple nudges the current code along the severity scale in
// proportion to the pressure trend. Strong trends earn a small confidence
// boost since the barometric signal is then unambiguous.
func WMOSimple(currentCode int, change3h float64, hoursAhead int) Result {
	adjusted := clampI(clampI(currentCode, 0, 25)+3*wmoTrendAdjustment(change3h), 0, 25)

	var conf float64
	switch {
	case hoursAhead <= 1:
		conf = 0.95
	case hoursAhead == 2:
		conf = 0.92
	case hoursAhead == 3:
		conf = 0.90
	default:
		conf = 0.90 - 0.05*float64(hoursAhead-3)
		if conf < wmoFloor {
			conf = wmoFloor
		}
	}
	if change3h >= wmoStrongTrend || change3h <= -wmoStrongTrend {
		conf += wmoBoost
	}

	return Result{
		NumericCode: adjusted,
		Letter:      'A' + byte(adjusted),
		Confidence:  roundConfidence(conf),
		Source:      SourceWMOSimple,
	}
}
