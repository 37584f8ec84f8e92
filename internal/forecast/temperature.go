package forecast

import "math"

// TemperatureModel extrapolates temperature from the 1h trend, bounded by
// a diurnal cycle, solar warming and nighttime radiative cooling. A naive
// linear extrapolation diverges within hours; shaping it with the diurnal
// wave and damping keeps multi-hour predictions physically plausible while
// staying reactive to the observed trend.

const (
	tempDamping     = 0.85 // per-hour decay of the linear trend term
	tempMinC        = -40.0
	tempMaxC        = 50.0
	diurnalPeakHour = 14.0
	diurnalMinHour  = 4.0

	// Wind mixing above this speed prevents a surface inversion from
	// forming, killing radiative cooling.
	radiativeWindCutoff = 8.0 // m/s
	radiativeMaxCooling = 2.5 // °C at the target hour under ideal conditions

	solarFullScale   = 800.0 // W/m² treated as full insolation
	solarMaxWarming  = 1.8   // °C under full sun and clear sky
)

// seasonalAmplitude is the base half-amplitude of the diurnal wave per
// season, before day-length scaling.
var seasonalAmplitude = [4]float64{
	Winter: 3.0,
	Spring: 5.0,
	Summer: 6.5,
	Autumn: 5.0,
}

type TemperatureModel struct {
	obs Observation
	tr  Trends
	alm Almanac

	// AmplitudeOverride, when non-nil, replaces the derived diurnal
	// half-amplitude.
	AmplitudeOverride *float64
}

func NewTemperatureModel(obs Observation, tr Trends, alm Almanac) TemperatureModel {
	return TemperatureModel{obs: obs, tr: tr, alm: alm}
}

// diurnalPhase maps an hour of day to [-1,1]: +1 at the afternoon peak
// (~14:00), -1 at the pre-dawn minimum (~04:00). The warm-up and cool-down
// halves use separate half-cosines because the real cycle is asymmetric.
func diurnalPhase(hour float64) float64 {
	h := math.Mod(hour+24, 24)
	if h >= diurnalMinHour && h < diurnalPeakHour {
		// warming: 10 hours from minimum to peak
		return -math.Cos(math.Pi * (h - diurnalMinHour) / (diurnalPeakHour - diurnalMinHour))
	}
	// cooling: 14 hours from peak back to minimum
	elapsed := h - diurnalPeakHour
	if elapsed < 0 {
		elapsed += 24
	}
	return math.Cos(math.Pi * elapsed / (24 - (diurnalPeakHour - diurnalMinHour)))
}

// amplitude derives the diurnal half-amplitude from season and day length.
// Hemisphere inversion is already baked into the almanac's season.
func (m TemperatureModel) amplitude() float64 {
	if m.AmplitudeOverride != nil {
		return *m.AmplitudeOverride
	}
	base := seasonalAmplitude[m.alm.Season]
	factor := clampF(m.alm.DayLength/12, 0.5, 1.3)
	return base * factor
}

// cloudCover returns the effective cloud fraction in percent, preferring
// the sensor, then a humidity-derived estimate, then a neutral default
// when humidity is out of domain.
func (m TemperatureModel) cloudCover() float64 {
	if m.obs.CloudCover != nil {
		return clampF(*m.obs.CloudCover, 0, 100)
	}
	if m.obs.Humidity > 0 && m.obs.Humidity <= 100 {
		return clampF((m.obs.Humidity-35)*1.6, 0, 100)
	}
	return 50
}

// trendComponent accumulates the observed 1h rate with geometric damping,
// the same shape as the pressure model uses.
func (m TemperatureModel) trendComponent(hoursAhead int) float64 {
	var total float64
	for i := 0; i < hoursAhead; i++ {
		total += m.tr.TempChange1h * math.Pow(tempDamping, float64(i))
	}
	return total
}

// solarComponent is the warming above the diurnal baseline due to measured
// insolation, reduced by cloud and zero at night. With no solar sensor the
// term is zero-effect; the diurnal wave already carries the average cycle.
func (m TemperatureModel) solarComponent(at float64, night bool) float64 {
	if night || m.obs.SolarRadiation == nil {
		return 0
	}
	solar := clampF(*m.obs.SolarRadiation, 0, 1500)
	cloud := m.cloudCover()
	return solarMaxWarming * (solar / solarFullScale) * (1 - cloud/100)
}

// radiativeComponent is the extra nighttime cooling under clear, dry, calm
// conditions. Cloud cover or wind mixing suppress it toward zero.
func (m TemperatureModel) radiativeComponent(night bool) float64 {
	if !night {
		return 0
	}
	clearness := 1 - m.cloudCover()/100
	dryness := 1.0
	if m.obs.Humidity > 0 && m.obs.Humidity <= 100 {
		dryness = clampF((100-m.obs.Humidity)/60, 0, 1)
	}
	calmness := clampF(1-m.obs.WindSpeed/radiativeWindCutoff, 0, 1)
	return -radiativeMaxCooling * clearness * dryness * calmness
}

// Predict returns the expected temperature hoursAhead from the almanac's
// now, clamped to [-40,50] °C. Predict(0) is exactly the current reading.
func (m TemperatureModel) Predict(hoursAhead int) float64 {
	if hoursAhead <= 0 {
		return m.obs.Temperature
	}

	nowHour := float64(m.alm.Now.Hour()) + float64(m.alm.Now.Minute())/60
	targetHour := nowHour + float64(hoursAhead)

	amp := m.amplitude()
	diurnal := amp * (diurnalPhase(targetHour) - diurnalPhase(nowHour))

	target := m.alm.Now.Add(hourDuration(hoursAhead))
	night := m.alm.IsNight(target)

	t := m.obs.Temperature +
		m.trendComponent(hoursAhead) +
		diurnal +
		m.solarComponent(targetHour, night) +
		m.radiativeComponent(night)

	return clampF(t, tempMinC, tempMaxC)
}

// DailyRange samples the prediction across the window and returns the
// expected (min, max).
func (m TemperatureModel) DailyRange(hoursAhead int) (min, max float64) {
	if hoursAhead <= 0 {
		hoursAhead = 24
	}
	min = m.obs.Temperature
	max = m.obs.Temperature
	for h := 1; h <= hoursAhead; h++ {
		t := m.Predict(h)
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	return min, max
}
