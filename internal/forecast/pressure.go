package forecast

import "math"

// PressureModel extrapolates the barometer from its 3h trend with
// geometric damping, so a momentary plunge cannot run away over a day.

const (
	pressureDampingDefault = 0.95
	pressureMinHPa         = 910.0
	pressureMaxHPa         = 1085.0
	pressureMaxDriftPerDay = 20.0 // hPa of accumulated change per 24h of horizon
)

type PressureModel struct {
	Current   float64
	Change3h  float64
	Damping   float64 // per-hour decay of the extrapolated rate
}

func NewPressureModel(current, change3h float64) PressureModel {
	return PressureModel{Current: current, Change3h: change3h, Damping: pressureDampingDefault}
}

// Predict returns the expected pressure hoursAhead from now, clamped to
// the physically plausible [910,1085] hPa envelope. Predict(0) is exactly
// the current reading.
func (m PressureModel) Predict(hoursAhead int) float64 {
	if hoursAhead <= 0 {
		return m.Current
	}

	hourlyRate := m.Change3h / 3
	damping := m.Damping
	if damping <= 0 || damping > 1 {
		damping = pressureDampingDefault
	}

	var total float64
	for i := 0; i < hoursAhead; i++ {
		total += hourlyRate * math.Pow(damping, float64(i))
	}

	cap := pressureMaxDriftPerDay * float64(hoursAhead) / 24
	if math.Abs(total) > cap {
		total = math.Copysign(cap, total)
	}

	return clampF(m.Current+total, pressureMinHPa, pressureMaxHPa)
}

// Trend classifies the direction of the predicted change with a ±1 hPa
// dead band.
func (m PressureModel) Trend(hoursAhead int) PressureTrend {
	diff := m.Predict(hoursAhead) - m.Current
	switch {
	case diff > 1.0:
		return TrendRising
	case diff < -1.0:
		return TrendFalling
	default:
		return TrendSteady
	}
}
