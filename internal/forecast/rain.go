package forecast

// Rain probability is looked up per forecast letter and then graded by the
// absolute pressure level and by how fast the barometer is moving. All
// adjustments are ordered band tables so they can be tested as data.

// rainBaseByLetter holds the base precipitation probability (percent) for
// each letter A-Z, from settled fine (~5%) through stormy (~95%).
var rainBaseByLetter = [26]int{
	5,  // A
	10, // B
	15, // C
	15, // D
	20, // E
	20, // F
	25, // G
	30, // H
	30, // I
	35, // J
	40, // K
	40, // L
	45, // M
	50, // N
	55, // O
	60, // P
	60, // Q
	65, // R
	70, // S
	70, // T
	75, // U
	80, // V
	85, // W
	85, // X
	90, // Y
	95, // Z
}

type rainBand struct {
	Below      float64 // exclusive upper bound on the input
	Adjustment int
}

// rainPressureBands grades by the absolute (future) pressure: deep lows
// rain more, strong highs rain less.
var rainPressureBands = []rainBand{
	{990, 25},
	{1000, 15},
	{1010, 5},
	{1020, 0},
	{1030, -8},
}

const rainPressureAboveBands = -15 // above the last band boundary

// rainChangeBands grades by the signed 3h pressure change: a crashing
// barometer adds probability, a surging one removes it.
var rainChangeBands = []rainBand{
	{-6, 20},
	{-3, 12},
	{-1, 6},
	{1, 0},
	{3, -6},
	{6, -12},
}

const rainChangeAboveBands = -20

func bandLookup(v float64, bands []rainBand, above int) int {
	for _, b := range bands {
		if v < b.Below {
			return b.Adjustment
		}
	}
	return above
}

// RainProbability returns the precipitation probability in [0,100] for a
// forecast letter, given the predicted pressure and its 3h change.
// Unmapped letters fall back to a mid-range default rather than failing.
func RainProbability(letter byte, futurePressure, change3h float64) int {
	base := 50
	if letter >= 'A' && letter <= 'Z' {
		base = rainBaseByLetter[letter-'A']
	}
	base += bandLookup(futurePressure, rainPressureBands, rainPressureAboveBands)
	base += bandLookup(change3h, rainChangeBands, rainChangeAboveBands)
	return clampI(base, 0, 100)
}
