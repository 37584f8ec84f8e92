package forecast

import (
	"math"
	"testing"
	"time"
)

func TestWeights_SumToOne(t *testing.T) {
	for _, p := range []float64{950, 1000, 1013, 1031, 1050} {
		for _, change := range []float64{-8, -3, -1, -0.2, 0, 0.2, 1, 3, 8} {
			for _, h := range []int{0, 1, 6, 12, 24, 96} {
				w := Weights(p, change, h)
				if sum := w.Zambretti + w.Negretti; math.Abs(sum-1.0) > 1e-6 {
					t.Fatalf("weights sum %.9f for p=%.0f change=%.1f h=%d", sum, p, change, h)
				}
				if w.Zambretti < 0 || w.Zambretti > 1 {
					t.Fatalf("zambretti weight %.4f out of [0,1]", w.Zambretti)
				}
			}
		}
	}
}

func TestWeights_NoDecayAtZeroHorizon(t *testing.T) {
	for _, p := range []float64{1000, 1037} {
		for _, change := range []float64{-5, 0.2, 2} {
			base := BaseZambrettiWeight(p, change)
			w := Weights(p, change, 0)
			if w.Zambretti != base {
				t.Errorf("h=0 weight %.4f != base %.4f (p=%.0f change=%.1f)", w.Zambretti, base, p, change)
			}
		}
	}
}

func TestWeights_DecayTowardEvenSplit(t *testing.T) {
	w := Weights(1037.0, 0.2, 1000)
	if math.Abs(w.Zambretti-0.5) > 1e-6 {
		t.Errorf("long-horizon weight %.6f, want ~0.5", w.Zambretti)
	}
}

func TestWeights_StableAnticyclone(t *testing.T) {
	// P=1037, Δ=0.2: the anticyclone regime pins the base weight at 0.10
	// and the horizon decay pulls it toward 0.5.
	if base := BaseZambrettiWeight(1037.0, 0.2); base != 0.10 {
		t.Fatalf("base weight = %.2f, want 0.10", base)
	}
	if w := Weights(1037.0, 0.2, 12); math.Abs(w.Zambretti-0.35) > 0.02 {
		t.Errorf("h=12 weight = %.4f, want 0.35±0.02", w.Zambretti)
	}
	if w := Weights(1037.0, 0.2, 24); math.Abs(w.Zambretti-0.46) > 0.02 {
		t.Errorf("h=24 weight = %.4f, want ~0.46", w.Zambretti)
	}
}

func TestWeights_RapidFall(t *testing.T) {
	if base := BaseZambrettiWeight(1015.0, -5.0); base != 0.75 {
		t.Errorf("base weight = %.2f, want 0.75", base)
	}
}

func TestBaseZambrettiWeight_Bands(t *testing.T) {
	tests := []struct {
		name     string
		pressure float64
		change3h float64
		want     float64
	}{
		{"anticyclone quiet", 1035, 0.3, 0.10},
		{"anticyclone moving", 1035, -1.0, 0.20},
		{"anticyclone fast", 1035, -4.0, 0.30},
		{"normal quiet", 1010, 0.3, 0.10},
		{"normal moderate", 1010, 1.0, 0.45},
		{"normal strong", 1010, -2.0, 0.65},
		{"normal rapid", 1010, 4.0, 0.75},
		{"boundary is not anticyclone", 1030, 4.0, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseZambrettiWeight(tt.pressure, tt.change3h); got != tt.want {
				t.Errorf("BaseZambrettiWeight(%.0f, %.1f) = %.2f, want %.2f", tt.pressure, tt.change3h, got, tt.want)
			}
		})
	}
}

func TestCombine_Consensus(t *testing.T) {
	z := Result{NumericCode: 10, Letter: 'K', Source: SourceZambretti}
	n := Result{NumericCode: 11, Letter: 'G', Source: SourceNegretti}
	w := ModelWeights{Zambretti: 0.3, Negretti: 0.7}

	got := Combine(z, n, w, 1005, -1)
	if !got.Consensus {
		t.Fatal("codes 10 and 11 should be consensus")
	}
	// On consensus Zambretti's result wins regardless of weights.
	if got.NumericCode != z.NumericCode || got.Letter != z.Letter {
		t.Errorf("selected code %d letter %c, want Zambretti's", got.NumericCode, got.Letter)
	}
	if got.Source != SourceCombined {
		t.Errorf("Source = %v, want combined", got.Source)
	}
}

func TestCombine_DominantWeight(t *testing.T) {
	z := Result{NumericCode: 5, Letter: 'F', Source: SourceZambretti}
	n := Result{NumericCode: 20, Letter: 'L', Source: SourceNegretti}

	tests := []struct {
		name string
		w    ModelWeights
		want int
	}{
		{"zambretti dominant", ModelWeights{Zambretti: 0.75, Negretti: 0.25}, 5},
		{"negretti dominant", ModelWeights{Zambretti: 0.25, Negretti: 0.75}, 20},
		{"no dominance defaults to negretti", ModelWeights{Zambretti: 0.55, Negretti: 0.45}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Combine(z, n, tt.w, 1000, -3)
			if got.Consensus {
				t.Fatal("codes 5 and 20 must not be consensus")
			}
			if got.NumericCode != tt.want {
				t.Errorf("selected code %d, want %d", got.NumericCode, tt.want)
			}
		})
	}
}

func TestCombine_RainIsWeightedAverage(t *testing.T) {
	z := Result{NumericCode: 0, Letter: 'A'}
	n := Result{NumericCode: 25, Letter: 'Q'}
	w := ModelWeights{Zambretti: 0.5, Negretti: 0.5}

	got := Combine(z, n, w, 1013, 0)
	zRain := RainProbability('A', 1013, 0)
	nRain := RainProbability('Q', 1013, 0)
	want := int(math.Round(float64(zRain)*0.5 + float64(nRain)*0.5))
	if got.RainProb != want {
		t.Errorf("RainProb = %d, want %d", got.RainProb, want)
	}
}

func TestCombine_RapidFallDisagreement(t *testing.T) {
	// The §8 calibration scenario end to end: a rapid fall at normal
	// pressure favours Zambretti; if the algorithms disagree by more than
	// one code there is no consensus and Zambretti's answer is used.
	obs := Observation{Pressure: 1015.0}
	tr := Trends{PressureChange3h: -5.0}
	z := Zambretti(obs, tr, time.October, Northern)
	n := Negretti(obs, tr, Autumn, Northern)
	w := Weights(obs.Pressure, tr.PressureChange3h, 0)

	got := Combine(z, n, w, obs.Pressure, tr.PressureChange3h)
	if absInt(z.NumericCode-n.NumericCode) > 1 {
		if got.Consensus {
			t.Error("expected no consensus for diverging codes")
		}
		if got.NumericCode != z.NumericCode {
			t.Errorf("selected %d, want Zambretti's %d at weight 0.75", got.NumericCode, z.NumericCode)
		}
	}
}
