package scale

import (
	"math"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"2", 2},
		{"0.5", 0.5},
		{".25", 0.25},
		{"1/2", 0.5},
		{"1 1/2", 1.5},
		{"1-2", 1.5},
		{"2 to 3", 2.5},
		{"1½", 1.5},
		{"¾", 0.75},
		{"", 0},
		{"to taste", 0},
		{"1/0", 0},
		{"a few", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseQuantity(tt.text)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseQuantity(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{2, "2"},
		{1.5, "1 1/2"},
		{0.3333, "1/3"},
		{0.5, "1/2"},
		{0.25, "1/4"},
		{0.75, "3/4"},
		{2.0 / 3.0, "2/3"},
		{0.125, "1/8"},
		{0.0625, "1/16"},
		{0.03, "1/16"},
		{0.001, "1/16"},
		{3.25, "3 1/4"},
		{0.9999, "1"},
		{2.995, "3"},
		{0, "0"},
		{-1, "0"},
		{math.NaN(), "0"},
	}

	for _, tt := range tests {
		if got := FormatQuantity(tt.value); got != tt.want {
			t.Errorf("FormatQuantity(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatQuantityIsStable(t *testing.T) {
	values := []float64{0.3333, 1.5, 2.7, 12.0 / 7.0}
	for _, v := range values {
		first := FormatQuantity(v)
		for i := 0; i < 5; i++ {
			if got := FormatQuantity(v); got != first {
				t.Fatalf("FormatQuantity(%v) changed from %q to %q", v, first, got)
			}
		}
	}
}

func TestApproximateRespectsDenominatorBound(t *testing.T) {
	for _, x := range []float64{0.1, 0.37, 0.61, 0.999, 0.05} {
		_, den := approximate(x, maxDenominator)
		if den < 1 || den > maxDenominator {
			t.Errorf("approximate(%v) denominator = %d, want 1..%d", x, den, maxDenominator)
		}
	}
}
