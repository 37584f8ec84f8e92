package forecast

import (
	"math"
	"time"
)

// Orchestrator stitches the models into hourly and daily sequences. Model
// selection per hour is a stateless function of the horizon: persistence
// owns the current hour, the WMO trend nudge the next three, then a linear
// hand-over to the combined ensemble which owns everything from h=7 out.

const (
	blendStartHour = 4
	blendEndHour   = 6
	combinedHour   = 7
)

type Orchestrator struct {
	obs Observation
	tr  Trends
	alm Almanac

	currentCode int

	pressure    PressureModel
	temperature TemperatureModel
	zambretti   Result
	negretti    Result
}

// NewOrchestrator prepares one forecast run. currentCode is the condition
// code describing the present weather; pass a negative value to derive it
// from the barometric ensemble at h=0.
func NewOrchestrator(obs Observation, tr Trends, alm Almanac, currentCode int) *Orchestrator {
	o := &Orchestrator{
		obs:         obs,
		tr:          tr,
		alm:         alm,
		pressure:    NewPressureModel(obs.Pressure, tr.PressureChange3h),
		temperature: NewTemperatureModel(obs, tr, alm),
		zambretti:   Zambretti(obs, tr, alm.Now.Month(), alm.Hemisphere),
		negretti:    Negretti(obs, tr, alm.Season, alm.Hemisphere),
	}
	if currentCode < 0 {
		w := Weights(obs.Pressure, tr.PressureChange3h, 0)
		currentCode = Combine(o.zambretti, o.negretti, w, obs.Pressure, tr.PressureChange3h).NumericCode
	}
	o.currentCode = clampI(currentCode, 0, 25)
	return o
}

// combinedAt evaluates the time-decayed ensemble for one horizon.
func (o *Orchestrator) combinedAt(h int) CombinedResult {
	w := Weights(o.obs.Pressure, o.tr.PressureChange3h, h)
	return Combine(o.zambretti, o.negretti, w, o.pressure.Predict(h), o.tr.PressureChange3h)
}

// hourAt selects the model for one horizon and assembles the entry.
func (o *Orchestrator) hourAt(h int) HourlyEntry {
	comb := o.combinedAt(h)

	var (
		code        int
		conf        float64
		source      ModelSource
		precip      int
		exceptional bool
	)

	switch {
	case h <= 0:
		r := Persistence(o.currentCode, 0)
		code, conf, source = r.NumericCode, r.Confidence, r.Source
		precip = RainProbability(r.Letter, o.obs.Pressure, o.tr.PressureChange3h)
	case h < blendStartHour:
		r := WMOSimple(o.currentCode, o.tr.PressureChange3h, h)
		code, conf, source = r.NumericCode, r.Confidence, r.Source
		precip = RainProbability(r.Letter, o.pressure.Predict(h), o.tr.PressureChange3h)
	case h <= blendEndHour:
		// Linear hand-over: mostly WMO at h=4, mostly combined at h=6.
		r := WMOSimple(o.currentCode, o.tr.PressureChange3h, h)
		wmoWeight := (float64(blendEndHour-h) + 0.5) / float64(blendEndHour-blendStartHour+1)
		combWeight := 1 - wmoWeight
		code = clampI(int(math.Round(float64(r.NumericCode)*wmoWeight+float64(comb.NumericCode)*combWeight)), 0, 25)
		conf = r.Confidence*wmoWeight + comb.Confidence*combWeight
		wmoPrecip := RainProbability(r.Letter, o.pressure.Predict(h), o.tr.PressureChange3h)
		precip = clampI(int(math.Round(float64(wmoPrecip)*wmoWeight+float64(comb.RainProb)*combWeight)), 0, 100)
		source = SourceBlend
	default:
		code, conf, source = comb.NumericCode, comb.Confidence, comb.Source
		precip = comb.RainProb
		exceptional = comb.Exceptional != ExceptionalNone
	}

	at := o.alm.Now.Add(hourDuration(h))
	night := o.alm.IsNight(at)

	temp := o.temperature.Predict(h) + conditionTempBias(code, night)
	temp = clampF(temp, tempMinC, tempMaxC)

	cond := localizeCondition(ConditionForCode(code), night, temp, o.obs.Humidity, o.obs.WindSpeed)

	return HourlyEntry{
		Time:        at,
		Code:        code,
		Condition:   cond,
		Temperature: round1(temp),
		Pressure:    round1(o.pressure.Predict(h)),
		PrecipProb:  precip,
		Confidence:  round2(conf),
		Source:      source,
		SourceName:  source.String(),
		Weights:     comb.Weights,
		Exceptional: exceptional,
	}
}

// Hourly generates entries for h=0..hours inclusive. Each hour is
// independent; identical inputs produce identical output.
func (o *Orchestrator) Hourly(hours int) []HourlyEntry {
	if hours < 0 {
		hours = 0
	}
	entries := make([]HourlyEntry, 0, hours+1)
	for h := 0; h <= hours; h++ {
		entries = append(entries, o.hourAt(h))
	}
	return entries
}

// Daily aggregates hourly entries into per-day summaries for the given
// number of days ahead (including the remainder of today).
func (o *Orchestrator) Daily(days int) []DailyEntry {
	if days <= 0 {
		days = 1
	}
	hourly := o.Hourly(days * 24)

	var out []DailyEntry
	var cur *DailyEntry
	var conditions map[Condition]int
	var precipSum, precipCount int

	flush := func() {
		if cur == nil {
			return
		}
		cur.Condition = dominantCondition(conditions)
		if precipCount > 0 {
			cur.PrecipProb = int(math.Round(float64(precipSum) / float64(precipCount)))
		}
		out = append(out, *cur)
	}

	for _, e := range hourly {
		y, m, d := e.Time.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, e.Time.Location())
		if cur == nil || !cur.Date.Equal(day) {
			flush()
			cur = &DailyEntry{Date: day, TempHigh: e.Temperature, TempLow: e.Temperature}
			conditions = make(map[Condition]int)
			precipSum, precipCount = 0, 0
		}
		if e.Temperature > cur.TempHigh {
			cur.TempHigh = e.Temperature
		}
		if e.Temperature < cur.TempLow {
			cur.TempLow = e.Temperature
		}
		// Count day conditions against their daytime tag so a day is not
		// labelled clear-night just because nights are long.
		c := e.Condition
		if c == ConditionClearNight {
			c = ConditionSunny
		}
		conditions[c]++
		precipSum += e.PrecipProb
		precipCount++
	}
	flush()
	return out
}

// conditionSeverity orders tags for tie-breaking in daily aggregation.
var conditionSeverity = map[Condition]int{
	ConditionSunny:          0,
	ConditionClearNight:     0,
	ConditionPartlyCloudy:   1,
	ConditionFog:            2,
	ConditionCloudy:         3,
	ConditionRainy:          4,
	ConditionSnowyRainy:     5,
	ConditionSnowy:          6,
	ConditionPouring:        7,
	ConditionLightningRainy: 8,
}

func dominantCondition(counts map[Condition]int) Condition {
	best := ConditionPartlyCloudy
	bestCount := -1
	for c, n := range counts {
		if n > bestCount || (n == bestCount && conditionSeverity[c] > conditionSeverity[best]) {
			best, bestCount = c, n
		}
	}
	return best
}

// conditionTempBias shifts the extrapolated temperature by the selected
// condition: sunshine warms the day, rain and storm cool it.
func conditionTempBias(code int, night bool) float64 {
	switch {
	case code <= 1: // settled / fine
		if night {
			return 0
		}
		return 1.0
	case code <= 6: // fair
		if night {
			return 0
		}
		return 0.5
	case code >= 24: // stormy
		return -1.0
	case ConditionForCode(code) == ConditionRainy || ConditionForCode(code) == ConditionPouring:
		return -0.5
	default:
		return 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
