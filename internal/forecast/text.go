package forecast

// Human-readable forecast text lives entirely outside the computation: the
// core trades in numeric codes, and this table translates them per locale.

// forecastTexts maps a locale to the 26 texts keyed by the shared numeric
// code. Every locale must cover every code; tests check this exhaustively.
var forecastTexts = map[string][26]string{
	"en": {
		"Settled fine",
		"Fine weather",
		"Becoming fine",
		"Fine, becoming less settled",
		"Fine, possible showers",
		"Fairly fine, improving",
		"Fairly fine, possible showers early",
		"Fairly fine, showery later",
		"Showery early, improving",
		"Changeable, mending",
		"Fairly fine, showers likely",
		"Rather unsettled, clearing later",
		"Unsettled, probably improving",
		"Showery, bright intervals",
		"Showery, becoming more unsettled",
		"Changeable, some rain",
		"Unsettled, short fine intervals",
		"Unsettled, rain later",
		"Unsettled, rain at times",
		"Very unsettled, finer at times",
		"Rain at times, worse later",
		"Rain at times, becoming very unsettled",
		"Rain at frequent intervals",
		"Very unsettled, rain",
		"Stormy, possibly improving",
		"Stormy, much rain",
	},
	"de": {
		"Beständig schön",
		"Schönes Wetter",
		"Aufheiternd",
		"Schön, wird unbeständiger",
		"Schön, Schauer möglich",
		"Recht schön, bessernd",
		"Recht schön, anfangs Schauer möglich",
		"Recht schön, später Schauer",
		"Anfangs Schauer, bessernd",
		"Wechselhaft, bessernd",
		"Recht schön, Schauer wahrscheinlich",
		"Eher unbeständig, später aufklarend",
		"Unbeständig, vermutlich bessernd",
		"Schauer, heitere Abschnitte",
		"Schauer, wird unbeständiger",
		"Wechselhaft, etwas Regen",
		"Unbeständig, kurze schöne Abschnitte",
		"Unbeständig, später Regen",
		"Unbeständig, zeitweise Regen",
		"Sehr unbeständig, zeitweise freundlicher",
		"Zeitweise Regen, Verschlechterung",
		"Zeitweise Regen, sehr unbeständig werdend",
		"Häufiger Regen",
		"Sehr unbeständig, Regen",
		"Stürmisch, möglicherweise bessernd",
		"Stürmisch, viel Regen",
	},
	"es": {
		"Estable y despejado",
		"Buen tiempo",
		"Mejorando",
		"Bueno, volviéndose inestable",
		"Bueno, posibles chubascos",
		"Bastante bueno, mejorando",
		"Bastante bueno, posibles chubascos al principio",
		"Bastante bueno, chubascos más tarde",
		"Chubascos al principio, mejorando",
		"Variable, mejorando",
		"Bastante bueno, chubascos probables",
		"Algo inestable, despejando más tarde",
		"Inestable, probablemente mejorando",
		"Chubascos, intervalos despejados",
		"Chubascos, volviéndose más inestable",
		"Variable, algo de lluvia",
		"Inestable, breves intervalos buenos",
		"Inestable, lluvia más tarde",
		"Inestable, lluvia a ratos",
		"Muy inestable, mejor a ratos",
		"Lluvia a ratos, empeorando",
		"Lluvia a ratos, muy inestable",
		"Lluvia frecuente",
		"Muy inestable, lluvia",
		"Tormentoso, posible mejora",
		"Tormentoso, mucha lluvia",
	},
}

// exceptionalPrefixes annotate results that were clamped at an algorithmic
// boundary.
var exceptionalPrefixes = map[string]map[ExceptionalKind]string{
	"en": {
		ExceptionalHighPressureBreakdown: "Exceptional weather (high-pressure breakdown): ",
		ExceptionalStormRecovery:         "Exceptional weather (storm recovery): ",
		ExceptionalOutOfRange:            "Exceptional weather: ",
	},
	"de": {
		ExceptionalHighPressureBreakdown: "Ausnahmewetter (Hochdruckzusammenbruch): ",
		ExceptionalStormRecovery:         "Ausnahmewetter (nach Sturm): ",
		ExceptionalOutOfRange:            "Ausnahmewetter: ",
	},
	"es": {
		ExceptionalHighPressureBreakdown: "Tiempo excepcional (colapso de altas presiones): ",
		ExceptionalStormRecovery:         "Tiempo excepcional (tras tormenta): ",
		ExceptionalOutOfRange:            "Tiempo excepcional: ",
	},
}

const defaultLocale = "en"

// Text returns the forecast text for a result in the given locale, falling
// back to English for unknown locales and to a safe default for unmapped
// codes.
func Text(r Result, locale string) string {
	table, ok := forecastTexts[locale]
	if !ok {
		locale = defaultLocale
		table = forecastTexts[defaultLocale]
	}

	var text string
	if r.NumericCode >= 0 && r.NumericCode < len(table) {
		text = table[r.NumericCode]
	}
	if text == "" {
		text = table[2] // "Becoming fine": low-severity default
	}

	if r.Exceptional != ExceptionalNone {
		if prefix, ok := exceptionalPrefixes[locale][r.Exceptional]; ok {
			return prefix + text
		}
	}
	return text
}

// Locales lists the locales the text table covers.
func Locales() []string {
	out := make([]string, 0, len(forecastTexts))
	for l := range forecastTexts {
		out = append(out, l)
	}
	return out
}
