package forecast

import "math"

// The combined model blends Zambretti and Negretti dynamically: Negretti
// is the stable-regime specialist and dominates inside an anticyclone,
// Zambretti takes over as the barometer accelerates, and the split relaxes
// toward 50/50 as the forecast horizon grows.

const (
	anticycloneThreshold = 1030.0 // hPa
	weightDecayHours     = 12.0   // e-folding time of the horizon decay
	consensusTolerance   = 1      // numeric-code distance treated as agreement
	dominantWeight       = 0.6
)

// weightBand maps an upper bound on |Δ3h| to a base Zambretti weight.
type weightBand struct {
	Below  float64
	Weight float64
}

var (
	// Inside an anticyclone the barometer barely moves; keep trusting the
	// stable-regime specialist even as the change grows.
	anticycloneWeightBands = []weightBand{
		{0.5, 0.10},
		{1.5, 0.20},
		{math.Inf(1), 0.30},
	}
	// Elsewhere, favour Zambretti as the change accelerates.
	defaultWeightBands = []weightBand{
		{0.5, 0.10},
		{1.5, 0.45},
		{3.0, 0.65},
		{math.Inf(1), 0.75},
	}
)

// BaseZambrettiWeight returns the regime-specific Zambretti weight before
// any horizon decay is applied.
func BaseZambrettiWeight(pressure, change3h float64) float64 {
	bands := defaultWeightBands
	if pressure > anticycloneThreshold {
		bands = anticycloneWeightBands
	}
	abs := math.Abs(change3h)
	for _, b := range bands {
		if abs < b.Below {
			return b.Weight
		}
	}
	return bands[len(bands)-1].Weight
}

// Weights returns the ensemble split at the given horizon. At hoursAhead=0
// the decay is exactly 1 and the base weight passes through unchanged; as
// the horizon grows the split blends exponentially toward 50/50.
func Weights(pressure, change3h float64, hoursAhead int) ModelWeights {
	base := BaseZambrettiWeight(pressure, change3h)
	decay := 1.0
	if hoursAhead > 0 {
		decay = math.Exp(-float64(hoursAhead) / weightDecayHours)
	}
	zw := base*decay + 0.5*(1-decay)
	return ModelWeights{Zambretti: zw, Negretti: 1 - zw}
}

// CombinedResult is the ensemble output for one horizon.
type CombinedResult struct {
	Result
	Weights   ModelWeights
	Consensus bool
	RainProb  int
}

// Combine selects between the two algorithm results and produces the
// weighted rain probability. On consensus (codes within 1) Zambretti's
// result wins for its more descriptive text; otherwise the dominant-weight
// model is chosen, defaulting to Negretti.
func Combine(z, n Result, w ModelWeights, futurePressure, change3h float64) CombinedResult {
	consensus := absInt(z.NumericCode-n.NumericCode) <= consensusTolerance

	selected := n
	switch {
	case consensus:
		selected = z
	case w.Zambretti >= dominantWeight:
		selected = z
	case w.Negretti >= dominantWeight:
		selected = n
	}

	rain := float64(RainProbability(z.Letter, futurePressure, change3h))*w.Zambretti +
		float64(RainProbability(n.Letter, futurePressure, change3h))*w.Negretti

	out := selected
	out.Source = SourceCombined
	// Confidence reflects how lopsided the split is and whether the
	// algorithms agree.
	out.Confidence = math.Max(w.Zambretti, w.Negretti)
	if consensus {
		out.Confidence = math.Max(out.Confidence, 0.85)
	}

	return CombinedResult{
		Result:    out,
		Weights:   w,
		Consensus: consensus,
		RainProb:  clampI(int(math.Round(rain)), 0, 100),
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
