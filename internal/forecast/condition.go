package forecast

// Condition is the closed set of condition tags exposed to consumers.
type Condition string

const (
	ConditionSunny          Condition = "sunny"
	ConditionClearNight     Condition = "clear-night"
	ConditionPartlyCloudy   Condition = "partlycloudy"
	ConditionCloudy         Condition = "cloudy"
	ConditionRainy          Condition = "rainy"
	ConditionPouring        Condition = "pouring"
	ConditionLightningRainy Condition = "lightning-rainy"
	ConditionSnowy          Condition = "snowy"
	ConditionSnowyRainy     Condition = "snowy-rainy"
	ConditionFog            Condition = "fog"
)

// conditionByCode is the single lookup from the shared numeric code to a
// condition tag. Completeness over 0..25 is a correctness invariant
// verified in tests.
var conditionByCode = [26]Condition{
	0:  ConditionSunny,          // settled fine
	1:  ConditionSunny,          // fine weather
	2:  ConditionPartlyCloudy,   // becoming fine
	3:  ConditionPartlyCloudy,   // fine, becoming less settled
	4:  ConditionPartlyCloudy,   // fine, possibly showers
	5:  ConditionPartlyCloudy,   // fairly fine, improving
	6:  ConditionPartlyCloudy,   // fairly fine, possibly showers early
	7:  ConditionCloudy,         // fairly fine, showery later
	8:  ConditionRainy,          // showery early, improving
	9:  ConditionCloudy,         // changeable, mending
	10: ConditionRainy,          // fairly fine, showers likely
	11: ConditionCloudy,         // rather unsettled, clearing later
	12: ConditionCloudy,         // unsettled, probably improving
	13: ConditionRainy,          // showery, bright intervals
	14: ConditionRainy,          // showery, becoming more unsettled
	15: ConditionRainy,          // changeable, some rain
	16: ConditionCloudy,         // unsettled, short fine intervals
	17: ConditionRainy,          // unsettled, rain later
	18: ConditionRainy,          // unsettled, rain at times
	19: ConditionCloudy,         // very unsettled, finer at times
	20: ConditionRainy,          // rain at times, worse later
	21: ConditionRainy,          // rain at times, becoming very unsettled
	22: ConditionPouring,        // rain at frequent intervals
	23: ConditionPouring,        // very unsettled, rain
	24: ConditionLightningRainy, // stormy, possibly improving
	25: ConditionLightningRainy, // stormy, much rain
}

// ConditionForCode maps a numeric code to its tag. An unmapped code is a
// programming error but still returns a safe low-severity default instead
// of panicking.
func ConditionForCode(code int) Condition {
	if code < 0 || code >= len(conditionByCode) {
		return ConditionPartlyCloudy
	}
	c := conditionByCode[code]
	if c == "" {
		return ConditionPartlyCloudy
	}
	return c
}

const (
	snowTempC      = 0.0
	sleetTempC     = 2.0
	fogHumidityPct = 97.0
	fogWindMax     = 2.0 // m/s
)

// localizeCondition applies the situational substitutions: sunny becomes
// clear-night after sunset, rain becomes snow or sleet near freezing, and
// a saturated calm night reads as fog.
func localizeCondition(c Condition, night bool, temperature, humidity, windSpeed float64) Condition {
	if night && c == ConditionSunny {
		c = ConditionClearNight
	}

	switch c {
	case ConditionRainy, ConditionPouring:
		if temperature <= snowTempC {
			return ConditionSnowy
		}
		if temperature <= sleetTempC {
			return ConditionSnowyRainy
		}
	case ConditionClearNight, ConditionSunny, ConditionPartlyCloudy:
		if night && humidity >= fogHumidityPct && humidity <= 100 && windSpeed <= fogWindMax {
			return ConditionFog
		}
	}
	return c
}
