package types

import (
	"testing"
)

func TestRatioPercent(t *testing.T) {
	tests := []struct {
		name string
		num  string
		den  string
		want string
	}{
		{"negative variance", "-8", "100", "-8"},
		{"positive variance", "25", "1000", "2.5"},
		{"zero numerator", "0", "500", "0"},
		{"zero denominator", "50", "0", "0"},
		{"both zero", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatioPercent(MustTonnage(tt.num), MustTonnage(tt.den))
			want := MustTonnage(tt.want)
			if !got.Equal(want) {
				t.Errorf("RatioPercent(%s, %s) = %s, want %s", tt.num, tt.den, got, want)
			}
		})
	}
}

func TestSumTonnages(t *testing.T) {
	values := []Tonnage{
		MustTonnage("120.5"),
		MustTonnage("80.25"),
		MustTonnage("-0.75"),
	}
	got := SumTonnages(values)
	if want := MustTonnage("200"); !got.Equal(want) {
		t.Errorf("SumTonnages = %s, want %s", got, want)
	}
}

func TestSumTonnages_Empty(t *testing.T) {
	if got := SumTonnages(nil); !got.IsZero() {
		t.Errorf("SumTonnages(nil) = %s, want 0", got)
	}
}

func TestSumTonnages_ExactAccumulation(t *testing.T) {
	// 0.1 summed ten times must be exactly 1, not a float approximation.
	values := make([]Tonnage, 10)
	for i := range values {
		values[i] = MustTonnage("0.1")
	}
	if got := SumTonnages(values); !got.Equal(MustTonnage("1")) {
		t.Errorf("SumTonnages(0.1 x10) = %s, want 1", got)
	}
}
